package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supportlabs/triagedesk/pkg/models"
)

func TestScore_NoSignals(t *testing.T) {
	a := Score("Question about invoices", "Where can I find last month's invoice?", false, 0)
	assert.Equal(t, models.SeverityLow, a.Severity)
	assert.Equal(t, 0.5, a.Confidence)
	assert.Empty(t, a.Reasoning)
}

func TestScore_SingleCriticalKeyword(t *testing.T) {
	a := Score("Service down", "The API has been down since this morning", false, 0)
	assert.Equal(t, models.SeverityNormal, a.Severity)
	assert.Equal(t, 0.7, a.Confidence)
	assert.Equal(t, "Contains 1 critical keywords", a.Reasoning)
}

func TestScore_CriticalPlusElevatedIsHigh(t *testing.T) {
	a := Score("Urgent problem", "Payment processing is broken and this is an important issue", false, 0)
	assert.Equal(t, models.SeverityHigh, a.Severity)
	assert.Equal(t, 0.9, a.Confidence)
	assert.Equal(t, "Contains 2 critical keywords; Contains 3 high-severity keywords", a.Reasoning)
}

func TestScore_VIPAloneDoesNotEscalate(t *testing.T) {
	a := Score("Feature request", "Could we get dark mode in the dashboard?", true, 0)
	assert.Equal(t, models.SeverityLow, a.Severity)
	assert.Equal(t, "VIP customer", a.Reasoning)
}

func TestScore_VIPWithCriticalStaysNormal(t *testing.T) {
	// 3 (critical) + 1 (VIP) = 4, below the HIGH threshold of 5.
	a := Score("Export failed", "The nightly export failed again", true, 0)
	assert.Equal(t, models.SeverityNormal, a.Severity)
	assert.Equal(t, 0.7, a.Confidence)
	assert.Equal(t, "Contains 1 critical keywords; VIP customer", a.Reasoning)
}

func TestScore_RecentCriticalsPushToHigh(t *testing.T) {
	// 3 (critical) + 1 (VIP) + 1 (recent criticals) = 5.
	a := Score("Login error", "Getting an error on every login attempt", true, 2)
	assert.Equal(t, models.SeverityHigh, a.Severity)
	assert.Equal(t, 0.9, a.Confidence)
	assert.Equal(t, "Contains 1 critical keywords; VIP customer; 2 recent critical issues", a.Reasoning)
}

func TestScore_RepeatedKeywordCountsOnce(t *testing.T) {
	once := Score("down", "down", false, 0)
	many := Score("down down down", "down down down down", false, 0)
	assert.Equal(t, once.Severity, many.Severity)
	assert.Equal(t, once.Reasoning, many.Reasoning)
}

func TestScore_SubstringMatch(t *testing.T) {
	// Presence is substring based, so "breakdown" matches "down".
	a := Score("Network breakdown", "Connectivity dropped between regions", false, 0)
	assert.Equal(t, models.SeverityNormal, a.Severity)
	assert.Equal(t, "Contains 1 critical keywords", a.Reasoning)
}
