package models

import "time"

// VerificationAttempt represents one audited verification lookup
type VerificationAttempt struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	CertificateID    string    `json:"certificate_id,omitempty"` // empty when no record matched
	Method           string    `json:"method"`
	Success          bool      `json:"success"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	ActorFingerprint string    `json:"actor_fingerprint,omitempty"`
}

// Verification method constants
const (
	MethodNumber = "number"
	MethodQR     = "qr"
)

// Failure reason constants
const (
	FailureNotFound     = "not found"
	FailureTampered     = "fingerprint mismatch"
	FailureStoreError   = "store error"
	FailureStoreTimeout = "store timeout"
)
