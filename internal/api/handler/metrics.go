package handler

import (
	"context"
	"net/http"

	"github.com/supportlabs/triagedesk/internal/api/response"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// StatisticsSource supplies the issue rollup for the metrics endpoint.
type StatisticsSource interface {
	Statistics(ctx context.Context) (*models.IssueStatistics, error)
}

// AnalyticsSource supplies the recommendation rollup for the metrics endpoint.
type AnalyticsSource interface {
	Analytics(ctx context.Context) (*models.RecommendationAnalytics, error)
}

// NewMetricsHandler returns the handler for GET /api/v1/metrics.
func NewMetricsHandler(stats StatisticsSource, analytics AnalyticsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueStats, err := stats.Statistics(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		recAnalytics, err := analytics.Analytics(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, map[string]any{
			"issues":          issueStats,
			"recommendations": recAnalytics,
		})
	}
}
