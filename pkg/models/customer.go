package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents an organization or person filing support issues.
// TotalIssues is a derived counter maintained by history computation,
// not an authoritative value.
type Customer struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	Email       string    `db:"email"        json:"email"`
	Name        string    `db:"name"         json:"name"`
	Company     *string   `db:"company"      json:"company,omitempty"`
	VIP         bool      `db:"vip"          json:"vip"`
	TotalIssues int       `db:"total_issues" json:"total_issues"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}
