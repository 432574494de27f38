package optin

import (
	"time"

	"github.com/ahwlsqja/channel-optin/pkg/eip712"
)

// ============================================================================
// Request DTOs
// ============================================================================

// SubscriptionRequest is the body posted by channels.Client
type SubscriptionRequest struct {
	// VerificationProof: 0x prefix + 130 hex chars (65 bytes)
	VerificationProof string              `json:"verificationProof" binding:"required,len=132"`
	Message           SubscriptionMessage `json:"message"`
}

// SubscriptionMessage carries the signed fields with CAIP addresses
// substituted for the bare ones that were signed
type SubscriptionMessage struct {
	Channel      string `json:"channel" binding:"required,max=256"`
	Subscriber   string `json:"subscriber,omitempty" binding:"omitempty,max=256"`
	Unsubscriber string `json:"unsubscriber,omitempty" binding:"omitempty,max=256"`
	Action       string `json:"action" binding:"required,oneof=Subscribe Unsubscribe"`
}

// User returns the user field the action's schema names
func (m SubscriptionMessage) User(action eip712.Action) string {
	if action == eip712.ActionUnsubscribe {
		return m.Unsubscriber
	}
	return m.Subscriber
}

// ============================================================================
// Response DTOs
// ============================================================================

// SubscriptionResponse acknowledges a verified request
type SubscriptionResponse struct {
	ReceiptID  string    `json:"receipt_id"`
	Action     string    `json:"action"`
	Channel    string    `json:"channel"`
	User       string    `json:"user"`
	ChainID    int64     `json:"chain_id"`
	VerifiedAt time.Time `json:"verified_at"`
}
