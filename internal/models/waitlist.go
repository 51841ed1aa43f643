package models

import "time"

// Waitlist acquisition sources.
const (
	WaitlistSourceWebsite  = "website"
	WaitlistSourceNfcShare = "nfc_share"
	WaitlistSourceReferral = "referral"
)

// WaitlistEntry is one pre-launch signup. Email is stored lower-cased and is
// unique across the register.
type WaitlistEntry struct {
	ID         string    `json:"id" bson:"_id"`
	Email      string    `json:"email" bson:"email"`
	Name       string    `json:"name,omitempty" bson:"name,omitempty"`
	Source     string    `json:"source,omitempty" bson:"source,omitempty"`
	ReferredBy string    `json:"referred_by,omitempty" bson:"referred_by,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// JoinWaitlistRequest is a signup from the landing page or an NFC share recipient.
type JoinWaitlistRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Source     string `json:"source,omitempty"`
	ReferredBy string `json:"referred_by,omitempty"`
}

// JoinWaitlistResult reports the entry the email resolved to. Joining twice is
// not an error; the second call gets the original id with AlreadyExists set.
type JoinWaitlistResult struct {
	ID            string `json:"id"`
	AlreadyExists bool   `json:"already_exists"`
}
