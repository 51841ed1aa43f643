package models

import "time"

// Connection statuses. Connected and blocked are terminal.
const (
	ConnectionPending   = "pending"
	ConnectionConnected = "connected"
	ConnectionBlocked   = "blocked"
)

// Connection links two profiles. The relationship is undirected; ProfileA/ProfileB
// is just the storage order, so at most one record exists per unordered pair no
// matter which side initiated.
type Connection struct {
	ID          string     `json:"id" bson:"_id"`
	ProfileA    string     `json:"profile_a" bson:"profile_a"`
	ProfileB    string     `json:"profile_b" bson:"profile_b"`
	Status      string     `json:"status" bson:"status"`
	InitiatedBy string     `json:"initiated_by" bson:"initiated_by"`
	ConnectedAt *time.Time `json:"connected_at,omitempty" bson:"connected_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// ConnectRequest asks for a connection between two profiles (after an NFC share).
type ConnectRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}
