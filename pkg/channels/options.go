package channels

import (
	"fmt"

	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/ahwlsqja/channel-optin/pkg/signer"
)

// Result statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Success messages reported by the public entry points
const (
	MessageSubscribed   = "successfully opted into channel"
	MessageUnsubscribed = "successfully opted out channel"
)

// Options describes one subscribe or unsubscribe request
type Options struct {
	Signer         signer.Signer
	ChannelAddress string
	UserAddress    string

	// VerifyingContractAddress overrides the environment's communicator contract
	VerifyingContractAddress string

	// Env defaults to environment.Prod when empty
	Env environment.Env

	OnSuccess func()
	OnError   func(err error)
}

// Result is the outcome of an operation. Status is StatusSuccess or StatusError.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the operation succeeded
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// SubmissionError is returned when the backend answers with a non-2xx status
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("submission failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("submission failed with status %d: %s", e.StatusCode, e.Body)
}

// Request is the JSON body posted to the channel endpoint
type Request struct {
	VerificationProof string         `json:"verificationProof"`
	Message           map[string]any `json:"message"`
}
