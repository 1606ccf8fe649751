package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/internal/api/response"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// Recommender defines the synthesizer surface the recommendation handlers
// depend on.
type Recommender interface {
	Generate(ctx context.Context, issueID uuid.UUID, conversationContext string) (*models.RecommendationSet, error)
	History(ctx context.Context, issueID uuid.UUID) ([]*models.Recommendation, error)
	MarkUsed(ctx context.Context, recommendationID uuid.UUID) error
	Popular(ctx context.Context, limit int) ([]*models.Recommendation, error)
}

// NewRecommendHandler returns the handler for
// POST /api/v1/issues/{issueID}/recommend.
func NewRecommendHandler(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, err := uuid.Parse(chi.URLParam(r, "issueID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "issueID must be a valid UUID", nil)
			return
		}

		var req struct {
			Context string `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		set, err := svc.Generate(r.Context(), issueID, req.Context)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, set)
	}
}

// NewRecommendationHistoryHandler returns the handler for
// GET /api/v1/issues/{issueID}/recommendations.
func NewRecommendationHistoryHandler(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, err := uuid.Parse(chi.URLParam(r, "issueID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "issueID must be a valid UUID", nil)
			return
		}

		recs, err := svc.History(r.Context(), issueID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, recs)
	}
}

// NewMarkUsedHandler returns the handler for
// POST /api/v1/recommendations/{recID}/used.
func NewMarkUsedHandler(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recID, err := uuid.Parse(chi.URLParam(r, "recID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "recID must be a valid UUID", nil)
			return
		}

		if err := svc.MarkUsed(r.Context(), recID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Recommendation not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, map[string]any{"recommendation_id": recID, "success": true})
	}
}

// NewPopularRecommendationsHandler returns the handler for
// GET /api/v1/recommendations/popular.
func NewPopularRecommendationsHandler(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := parsePositiveInt(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
				return
			}
			limit = parsed
		}

		recs, err := svc.Popular(r.Context(), limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, recs)
	}
}
