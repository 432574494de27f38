package errors

import (
	"fmt"
	"net/http"
)

// Error codes
const (
	// 4xx Client Errors
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidAddress   = "INVALID_ADDRESS"
	CodeUnsupportedChain = "UNSUPPORTED_CHAIN"
	CodeInvalidProof     = "INVALID_PROOF"
	CodeProofReplayed    = "PROOF_REPLAYED"

	// 5xx Server Errors
	CodeInternal    = "INTERNAL_ERROR"
	CodeStoreError  = "STORE_ERROR"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError represents a structured application error
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// Error constructors

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// InvalidAddress keeps the client-facing "Invalid Channel CAIP!" wording
func InvalidAddress(message, input string) *AppError {
	return &AppError{
		Code:       CodeInvalidAddress,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: map[string]any{
			"input": input,
		},
	}
}

func UnsupportedChain(env, chainID string) *AppError {
	return &AppError{
		Code:       CodeUnsupportedChain,
		Message:    fmt.Sprintf("Chain %s is not served in environment %s", chainID, env),
		StatusCode: http.StatusBadRequest,
		Details: map[string]any{
			"env":      env,
			"chain_id": chainID,
		},
	}
}

func InvalidProof() *AppError {
	return &AppError{
		Code:       CodeInvalidProof,
		Message:    "Verification proof rejected",
		StatusCode: http.StatusUnauthorized,
	}
}

func ProofReplayed() *AppError {
	return &AppError{
		Code:       CodeProofReplayed,
		Message:    "Verification proof already used",
		StatusCode: http.StatusConflict,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func StoreError(err error) *AppError {
	return &AppError{
		Code:       CodeStoreError,
		Message:    "Proof store error occurred",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

func Unavailable(message string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}
