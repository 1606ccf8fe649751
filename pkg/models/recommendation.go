package models

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation message types.
const (
	MessageGreeting = "greeting"
	MessageSolution = "solution"
	MessageFollowUp = "follow-up"
)

// Recommendation is a generated message template for a support agent.
// Persisted durably; UsedCount is incremented when an agent uses it.
type Recommendation struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	IssueID    uuid.UUID `db:"issue_id"    json:"issue_id"`
	Template   string    `db:"template"    json:"template"`
	Type       string    `db:"type"        json:"type"`
	Tone       string    `db:"tone"        json:"tone"`
	Confidence float64   `db:"confidence"  json:"confidence"`
	Reasoning  string    `db:"reasoning"   json:"reasoning"`
	UsedCount  int       `db:"used_count"  json:"used_count"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// RecommendationSet is the full output of one recommendation request.
// Confidences is parallel to Recommendations: same length, same order
// (greetings, then solutions, then follow-ups).
type RecommendationSet struct {
	IssueID         uuid.UUID        `json:"issue_id"`
	Recommendations []Recommendation `json:"recommendations"`
	Confidences     []float64        `json:"confidence_scores"`
	Reasoning       string           `json:"reasoning"`
}

// RecommendationAnalytics summarizes recommendation usage across all issues.
type RecommendationAnalytics struct {
	Total         int     `json:"total_recommendations"`
	Used          int     `json:"used_recommendations"`
	UsageRate     float64 `json:"usage_rate"`
	AvgConfidence float64 `json:"avg_confidence_score"`
	Greetings     int     `json:"greeting_count"`
	Solutions     int     `json:"solution_count"`
	FollowUps     int     `json:"follow_up_count"`
}
