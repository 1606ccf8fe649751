package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Key convention: entity:id, composite segments joined with ":".

func CustomerHistoryKey(customerID uuid.UUID) string {
	return fmt.Sprintf("customer_history:%s", customerID)
}

func AnalysisKey(issueID uuid.UUID, unixTS int64) string {
	return fmt.Sprintf("analysis:%s:%d", issueID, unixTS)
}

// AnalysisPattern matches every cached analysis for an issue regardless of
// the timestamp qualifier.
func AnalysisPattern(issueID uuid.UUID) string {
	return fmt.Sprintf("analysis:%s:*", issueID)
}

func IssueKey(issueID uuid.UUID) string {
	return fmt.Sprintf("issue:%s", issueID)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
