package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supportlabs/triagedesk/pkg/models"
)

type mockStats struct {
	stats *models.IssueStatistics
	err   error
}

func (m *mockStats) Statistics(_ context.Context) (*models.IssueStatistics, error) {
	return m.stats, m.err
}

type mockAnalytics struct {
	analytics *models.RecommendationAnalytics
	err       error
}

func (m *mockAnalytics) Analytics(_ context.Context) (*models.RecommendationAnalytics, error) {
	return m.analytics, m.err
}

func TestMetricsHandler_Success(t *testing.T) {
	stats := &mockStats{stats: &models.IssueStatistics{TotalIssues: 12, ResolutionRate: 75.0}}
	analytics := &mockAnalytics{analytics: &models.RecommendationAnalytics{Total: 30, UsageRate: 40.0}}

	rec := httptest.NewRecorder()
	NewMetricsHandler(stats, analytics)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := parseData(t, rec)

	issues := data["issues"].(map[string]any)
	assert.Equal(t, float64(12), issues["total_issues"])
	assert.Equal(t, 75.0, issues["resolution_rate"])

	recs := data["recommendations"].(map[string]any)
	assert.Equal(t, float64(30), recs["total_recommendations"])
	assert.Equal(t, 40.0, recs["usage_rate"])
}

func TestMetricsHandler_StatisticsError(t *testing.T) {
	stats := &mockStats{err: errors.New("query timeout")}
	analytics := &mockAnalytics{analytics: &models.RecommendationAnalytics{}}

	rec := httptest.NewRecorder()
	NewMetricsHandler(stats, analytics)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", parseErrCode(t, rec))
}

func TestMetricsHandler_AnalyticsError(t *testing.T) {
	stats := &mockStats{stats: &models.IssueStatistics{}}
	analytics := &mockAnalytics{err: errors.New("query timeout")}

	rec := httptest.NewRecorder()
	NewMetricsHandler(stats, analytics)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
