// Package severity assigns a severity tier to an issue using deterministic
// keyword scoring. It is intentionally free of any model call so triage
// keeps working when the generation provider is down.
package severity

import (
	"fmt"
	"strings"

	"github.com/supportlabs/triagedesk/pkg/models"
)

// criticalKeywords signal an outage or data-risk situation. Matching is
// presence-only: repeating a keyword does not raise the score.
var criticalKeywords = []string{
	"urgent", "critical", "emergency", "down", "broken", "failed",
	"error", "crash", "not working", "cannot access", "blocked",
	"security", "breach", "hack", "data loss", "outage",
}

// elevatedKeywords signal friction that is not an emergency on its own.
var elevatedKeywords = []string{
	"important", "priority", "issue", "problem", "trouble",
	"difficulty", "challenge", "concern", "matter", "situation",
}

// Assessment is the scorer output: a tier, a confidence for that tier,
// and a human-readable trace of the signals that fired.
type Assessment struct {
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Score assesses the severity of an issue from its text, the customer's
// VIP flag, and the number of recent critical issues on the account.
func Score(title, description string, vip bool, recentCritical int) Assessment {
	text := strings.ToLower(title + " " + description)

	score := 0
	var reasons []string

	if n := countPresent(text, criticalKeywords); n > 0 {
		score += 3
		reasons = append(reasons, fmt.Sprintf("Contains %d critical keywords", n))
	}
	if n := countPresent(text, elevatedKeywords); n > 0 {
		score += 2
		reasons = append(reasons, fmt.Sprintf("Contains %d high-severity keywords", n))
	}
	if vip {
		score++
		reasons = append(reasons, "VIP customer")
	}
	if recentCritical > 0 {
		score++
		reasons = append(reasons, fmt.Sprintf("%d recent critical issues", recentCritical))
	}

	assessment := Assessment{Reasoning: strings.Join(reasons, "; ")}
	switch {
	case score >= 5:
		assessment.Severity = models.SeverityHigh
		assessment.Confidence = 0.9
	case score >= 3:
		assessment.Severity = models.SeverityNormal
		assessment.Confidence = 0.7
	default:
		assessment.Severity = models.SeverityLow
		assessment.Confidence = 0.5
	}
	return assessment
}

// countPresent counts how many distinct keywords occur in text at least once.
func countPresent(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
