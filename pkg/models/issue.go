// Package models contains shared data models used across the TriageDesk codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity tiers produced by the deterministic keyword scorer.
const (
	SeverityLow    = "LOW"
	SeverityNormal = "NORMAL"
	SeverityHigh   = "HIGH"
)

// Issue lifecycle statuses.
const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN_PROGRESS"
	StatusResolved   = "RESOLVED"
	StatusClosed     = "CLOSED"
)

// IsTerminal reports whether status ends an issue's lifecycle.
func IsTerminal(status string) bool {
	return status == StatusResolved || status == StatusClosed
}

// ValidStatus reports whether status is one of the four lifecycle states.
func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Issue represents a customer support issue.
// ResolutionHours is set exactly once, at the first transition into a
// terminal status, and is derived as resolved_at - created_at.
type Issue struct {
	ID              uuid.UUID  `db:"id"               json:"id"`
	CustomerID      uuid.UUID  `db:"customer_id"      json:"customer_id"`
	Title           string     `db:"title"            json:"title"`
	Description     string     `db:"description"      json:"description"`
	Category        *string    `db:"category"         json:"category,omitempty"`
	Severity        string     `db:"severity"         json:"severity"`
	Status          string     `db:"status"           json:"status"`
	AssignedTo      *string    `db:"assigned_to"      json:"assigned_to,omitempty"`
	Resolution      *string    `db:"resolution"       json:"resolution,omitempty"`
	ResolutionHours *float64   `db:"resolution_hours" json:"resolution_hours,omitempty"`
	Confidence      float64    `db:"confidence"       json:"confidence"`
	CreatedAt       time.Time  `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"       json:"updated_at"`
	ResolvedAt      *time.Time `db:"resolved_at"      json:"resolved_at,omitempty"`
}

// IssueInput is the payload for creating and analyzing a new issue.
type IssueInput struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    *string   `json:"category,omitempty"`
}

// CriticalIssue is an issue needing immediate attention, joined with the
// owning customer. Lists are ordered VIP first, then oldest first.
type CriticalIssue struct {
	IssueID      uuid.UUID `json:"issue_id"`
	Title        string    `json:"title"`
	Severity     string    `json:"severity"`
	Status       string    `json:"status"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	VIP          bool      `json:"vip"`
	AgeHours     float64   `json:"age_hours"`
	CreatedAt    time.Time `json:"created_at"`
}

// IssueStatistics is a system-wide rollup of issue counts and outcomes.
type IssueStatistics struct {
	TotalIssues        int     `json:"total_issues"`
	OpenIssues         int     `json:"open_issues"`
	InProgressIssues   int     `json:"in_progress_issues"`
	ResolvedIssues     int     `json:"resolved_issues"`
	ClosedIssues       int     `json:"closed_issues"`
	HighSeverity       int     `json:"high_severity_issues"`
	NormalSeverity     int     `json:"normal_severity_issues"`
	LowSeverity        int     `json:"low_severity_issues"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
	ResolutionRate     float64 `json:"resolution_rate"`
}
