// Package handler contains the HTTP handlers for the triage API. Handlers
// validate input, call a service through a narrow interface, and translate
// errors into response envelopes.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/internal/api/response"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// TriageService defines the orchestrator surface the issue handlers depend on.
type TriageService interface {
	Analyze(ctx context.Context, input models.IssueInput) (*models.AnalysisResult, error)
	CreateIssue(ctx context.Context, input models.IssueInput) (*models.Issue, error)
	UpdateIssueStatus(ctx context.Context, issueID uuid.UUID, newStatus string) bool
	GetCustomerHistory(ctx context.Context, customerID uuid.UUID) (*models.HistorySnapshot, error)
	GetCriticalIssues(ctx context.Context) ([]*models.CriticalIssue, error)
	SearchIssues(ctx context.Context, filter store.IssueFilter) ([]*models.Issue, int, error)
}

type issueRequest struct {
	CustomerID  string  `json:"customer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
}

func decodeIssueInput(r *http.Request) (models.IssueInput, string) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.IssueInput{}, "Invalid JSON body"
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return models.IssueInput{}, "customer_id must be a valid UUID"
	}
	if req.Title == "" {
		return models.IssueInput{}, "title is required"
	}
	if req.Description == "" {
		return models.IssueInput{}, "description is required"
	}
	return models.IssueInput{
		CustomerID:  customerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}, ""
}

// NewCreateIssueHandler returns the handler for POST /api/v1/issues.
func NewCreateIssueHandler(svc TriageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, msg := decodeIssueInput(r)
		if msg != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
			return
		}

		issue, err := svc.CreateIssue(r.Context(), input)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.Created(w, issue)
	}
}

// NewAnalyzeHandler returns the handler for POST /api/v1/issues/analyze.
func NewAnalyzeHandler(svc TriageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, msg := decodeIssueInput(r)
		if msg != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
			return
		}

		result, err := svc.Analyze(r.Context(), input)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, result)
	}
}

// NewUpdateStatusHandler returns the handler for PUT /api/v1/issues/{issueID}/status.
func NewUpdateStatusHandler(svc TriageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, err := uuid.Parse(chi.URLParam(r, "issueID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "issueID must be a valid UUID", nil)
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if !models.ValidStatus(req.Status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"status must be one of OPEN, IN_PROGRESS, RESOLVED, CLOSED", nil)
			return
		}

		if !svc.UpdateIssueStatus(r.Context(), issueID, req.Status) {
			response.Error(w, http.StatusUnprocessableEntity, "UPDATE_FAILED",
				"The status update did not commit", nil)
			return
		}
		response.JSON(w, map[string]any{
			"issue_id": issueID,
			"status":   req.Status,
			"success":  true,
		})
	}
}

// NewCriticalIssuesHandler returns the handler for GET /api/v1/issues/critical.
func NewCriticalIssuesHandler(svc TriageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		critical, err := svc.GetCriticalIssues(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, critical)
	}
}

// NewSearchIssuesHandler returns the handler for GET /api/v1/issues.
func NewSearchIssuesHandler(svc TriageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, msg := parseIssueFilter(r)
		if msg != "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
			return
		}

		issues, total, err := svc.SearchIssues(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.Collection(w, issues, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

func parseIssueFilter(r *http.Request) (store.IssueFilter, string) {
	q := r.URL.Query()
	filter := store.IssueFilter{Page: 1, Limit: defaultPageLimit}

	if raw := q.Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, "customer_id must be a valid UUID"
		}
		filter.CustomerID = id
	}
	if raw := q.Get("severity"); raw != "" {
		filter.Severity = raw
	}
	if raw := q.Get("status"); raw != "" {
		if !models.ValidStatus(raw) {
			return filter, "status must be one of OPEN, IN_PROGRESS, RESOLVED, CLOSED"
		}
		filter.Status = raw
	}
	if raw := q.Get("category"); raw != "" {
		filter.Category = raw
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, "from must be a valid RFC3339 timestamp"
		}
		filter.From = ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, "to must be a valid RFC3339 timestamp"
		}
		filter.To = ts
	}
	if raw := q.Get("page"); raw != "" {
		page, err := parsePositiveInt(raw)
		if err != nil {
			return filter, "page must be a positive integer"
		}
		filter.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := parsePositiveInt(raw)
		if err != nil {
			return filter, "limit must be a positive integer"
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		filter.Limit = limit
	}
	return filter, ""
}

// NewCustomerHistoryHandler returns the handler for
// GET /api/v1/customers/{customerID}/history.
func NewCustomerHistoryHandler(svc TriageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := uuid.Parse(chi.URLParam(r, "customerID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "customerID must be a valid UUID", nil)
			return
		}

		snap, err := svc.GetCustomerHistory(r.Context(), customerID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, snap)
	}
}
