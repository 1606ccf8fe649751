package models

import "github.com/google/uuid"

// SimilarityMatch is one ranked candidate from the lexical similarity engine.
// Ephemeral: computed per call, only persisted inside the AnalysisResult
// that embeds it.
type SimilarityMatch struct {
	IssueID         uuid.UUID `json:"issue_id"`
	Score           float64   `json:"similarity_score"`
	Resolution      *string   `json:"resolution,omitempty"`
	ResolutionHours *float64  `json:"resolution_hours,omitempty"`
}

// AnalysisResult is the output of one issue analysis call. Each call produces
// a new cache entry under a timestamp-qualified key; entries are never
// overwritten.
type AnalysisResult struct {
	IssueID        uuid.UUID         `json:"issue_id"`
	Severity       string            `json:"severity_assessment"`
	Confidence     float64           `json:"confidence_score"`
	History        HistorySnapshot   `json:"customer_history"`
	SimilarIssues  []SimilarityMatch `json:"similar_issues"`
	CriticalFlags  []string          `json:"critical_flags"`
	Actions        []string          `json:"recommended_actions"`
	ProcessingSecs float64           `json:"processing_time"`
}
