package models

import "time"

// Privacy modes controlling what a tap reveals.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
	PrivacyEvent   = "event"
)

// Membership tiers.
const (
	TierFounding  = "founding"
	TierExecutive = "executive"
	TierStandard  = "standard"
)

// SocialLink is one entry in a profile's social links list.
type SocialLink struct {
	Platform string `json:"platform" bson:"platform"` // "instagram", "twitter", "linkedin", ...
	URL      string `json:"url" bson:"url"`
}

// Profile is a Steel member profile. Slug is globally unique and backs the
// public profile URL (steel.app/p/{slug}).
type Profile struct {
	ID        string `json:"id" bson:"_id"`
	Name      string `json:"name" bson:"name"`
	Slug      string `json:"slug" bson:"slug"`
	Title     string `json:"title,omitempty" bson:"title,omitempty"`
	Company   string `json:"company,omitempty" bson:"company,omitempty"`
	Bio       string `json:"bio,omitempty" bson:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`

	// Contact (private by default, revealed per privacy mode)
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`

	Socials []SocialLink `json:"socials" bson:"socials"`

	// Membership
	Tier     string `json:"tier" bson:"tier"`
	MemberID string `json:"member_id" bson:"member_id"` // e.g. "STL-000001"

	// Privacy settings
	PrivacyMode string `json:"privacy_mode" bson:"privacy_mode"`
	RequirePin  bool   `json:"require_pin" bson:"require_pin"`

	// NFC tag binding
	NfcTagID string `json:"nfc_tag_id,omitempty" bson:"nfc_tag_id,omitempty"`

	// External auth
	AuthProvider string `json:"auth_provider,omitempty" bson:"auth_provider,omitempty"` // "phone" | "apple" | "google"
	AuthID       string `json:"auth_id,omitempty" bson:"auth_id,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// CreateProfileRequest carries the fields accepted at registration.
// Socials, avatar and NFC tag are never set at creation time.
type CreateProfileRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Title        string `json:"title,omitempty"`
	Company      string `json:"company,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Tier         string `json:"tier"`
	MemberID     string `json:"member_id"`
	PrivacyMode  string `json:"privacy_mode"`
	RequirePin   bool   `json:"require_pin"`
	AuthProvider string `json:"auth_provider,omitempty"`
	AuthID       string `json:"auth_id,omitempty"`
}

// UpdateProfileRequest is a partial update: nil fields are left untouched.
type UpdateProfileRequest struct {
	Name        *string       `json:"name"`
	Title       *string       `json:"title"`
	Company     *string       `json:"company"`
	Bio         *string       `json:"bio"`
	Email       *string       `json:"email"`
	Phone       *string       `json:"phone"`
	AvatarURL   *string       `json:"avatar_url"`
	PrivacyMode *string       `json:"privacy_mode"`
	RequirePin  *bool         `json:"require_pin"`
	Socials     *[]SocialLink `json:"socials"`
}
