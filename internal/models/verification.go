package models

import "time"

// Verification session statuses.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationExpired  = "expired"
)

// Verification failure codes, returned as result values (callers branch on the
// code, these are not transport errors).
const (
	VerifyErrNoSession   = "no_session"
	VerifyErrExpired     = "expired"
	VerifyErrMaxAttempts = "max_attempts"
	VerifyErrWrongPin    = "wrong_pin"
)

// VerificationSession is one SMS PIN verification flow for a profile. The PIN
// is stored as a bcrypt hash and never leaves the service after dispatch.
// Sessions are superseded, not deleted: lookups take the newest per profile.
type VerificationSession struct {
	ID        string    `json:"id" bson:"_id"`
	Phone     string    `json:"phone" bson:"phone"`
	PinHash   string    `json:"-" bson:"pin_hash"`
	ProfileID string    `json:"profile_id" bson:"profile_id"`
	Status    string    `json:"status" bson:"status"`
	Attempts  int       `json:"attempts" bson:"attempts"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// CreateSessionRequest starts a verification flow.
type CreateSessionRequest struct {
	Phone     string `json:"phone"`
	ProfileID string `json:"profile_id"`
}

// CreateSessionResult is returned after a session is created and the PIN
// dispatched.
type CreateSessionResult struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyPinRequest is one PIN attempt.
type VerifyPinRequest struct {
	ProfileID string `json:"profile_id"`
	Pin       string `json:"pin"`
}

// VerifyResult is the structured outcome of a PIN attempt. AttemptsRemaining is
// only set for wrong_pin.
type VerifyResult struct {
	Success           bool   `json:"success"`
	ErrorCode         string `json:"error,omitempty"`
	AttemptsRemaining *int   `json:"attempts_remaining,omitempty"`
}
