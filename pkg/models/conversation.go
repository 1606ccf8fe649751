package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation sender types.
const (
	SenderCustomer = "CUSTOMER"
	SenderSupport  = "SUPPORT"
)

// Conversation is a single message in an issue's conversation thread.
type Conversation struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	IssueID    uuid.UUID `db:"issue_id"    json:"issue_id"`
	Message    string    `db:"message"     json:"message"`
	SenderType string    `db:"sender_type" json:"sender_type"`
	SenderID   *string   `db:"sender_id"   json:"sender_id,omitempty"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}
