package model

import "time"

// Notification is an ephemeral message shown to the operator
type Notification struct {
	ID        string    `json:"id"` // Time-ordered identifier
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Role identifies the speaker of a conversation turn
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Turn is one entry of the legal-assistant transcript
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
