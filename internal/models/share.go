package models

import "time"

// GeoPoint is the location attached to a share event, when the client sends one.
type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// ShareEvent records one NFC tap. Events are append-only: after creation only
// the two viral-tracking flags ever change.
type ShareEvent struct {
	ID                 string `json:"id" bson:"_id"`
	SharerProfileID    string `json:"sharer_profile_id" bson:"sharer_profile_id"`
	RecipientProfileID string `json:"recipient_profile_id,omitempty" bson:"recipient_profile_id,omitempty"`
	// RecipientIdentifier is a phone number or temp ID used when the recipient
	// is not (yet) a member.
	RecipientIdentifier string `json:"recipient_identifier,omitempty" bson:"recipient_identifier,omitempty"`

	// Context at the time of the tap
	PrivacyMode string    `json:"privacy_mode" bson:"privacy_mode"`
	WasVerified bool      `json:"was_verified" bson:"was_verified"`
	Location    *GeoPoint `json:"location,omitempty" bson:"location,omitempty"`
	EventTag    string    `json:"event_tag,omitempty" bson:"event_tag,omitempty"`

	// Viral tracking
	RecipientJoined      bool `json:"recipient_joined" bson:"recipient_joined"`
	ConnectBackRequested bool `json:"connect_back_requested" bson:"connect_back_requested"`

	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// LogShareRequest is the input for recording a tap. The tracking flags are
// server-owned and always start false regardless of what the client sends.
type LogShareRequest struct {
	SharerProfileID     string    `json:"sharer_profile_id"`
	RecipientProfileID  string    `json:"recipient_profile_id,omitempty"`
	RecipientIdentifier string    `json:"recipient_identifier,omitempty"`
	PrivacyMode         string    `json:"privacy_mode"`
	WasVerified         bool      `json:"was_verified"`
	Location            *GeoPoint `json:"location,omitempty"`
	EventTag            string    `json:"event_tag,omitempty"`
}
