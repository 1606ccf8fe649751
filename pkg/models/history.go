package models

import (
	"time"

	"github.com/google/uuid"
)

// IssueSummary is a compact view of a recent issue inside a history snapshot.
type IssueSummary struct {
	IssueID         uuid.UUID `json:"issue_id"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	Severity        string    `json:"severity"`
	ResolutionHours *float64  `json:"resolution_hours,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistorySnapshot is the derived 30-day view of a customer's issue history.
// It is cached, never persisted separately, and recomputed on cache miss.
// Satisfaction has no defined signal source yet and stays nil.
type HistorySnapshot struct {
	CustomerID     uuid.UUID      `json:"customer_id"`
	TotalIssues    int            `json:"total_issues"`
	ResolvedIssues int            `json:"resolved_issues"`
	CriticalIssues int            `json:"critical_issues"`
	AvgResolution  float64        `json:"avg_resolution_hours"`
	VIP            bool           `json:"vip"`
	RecentIssues   []IssueSummary `json:"recent_issues"`
	Patterns       []string       `json:"issue_patterns"`
	Satisfaction   *float64       `json:"customer_satisfaction,omitempty"`
}
