// Package api assembles the HTTP surface of the triage service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/supportlabs/triagedesk/internal/api/middleware"
	"github.com/supportlabs/triagedesk/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	CreateCustomerHandler http.HandlerFunc
	CustomerHistory       http.HandlerFunc

	CreateIssueHandler  http.HandlerFunc
	AnalyzeHandler      http.HandlerFunc
	UpdateStatusHandler http.HandlerFunc
	CriticalIssues      http.HandlerFunc
	SearchIssues        http.HandlerFunc

	AddConversation   http.HandlerFunc
	ListConversations http.HandlerFunc

	RecommendHandler      http.HandlerFunc
	RecommendationHistory http.HandlerFunc
	MarkUsedHandler       http.HandlerFunc
	PopularRecs           http.HandlerFunc

	MetricsHandler http.HandlerFunc
}

// NewRouter builds the Chi router with the middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Rate-limited routes
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/customers", orNotImplemented(deps.CreateCustomerHandler))
		r.Get("/api/v1/customers/{customerID}/history", orNotImplemented(deps.CustomerHistory))

		r.Post("/api/v1/issues", orNotImplemented(deps.CreateIssueHandler))
		r.Post("/api/v1/issues/analyze", orNotImplemented(deps.AnalyzeHandler))
		r.Get("/api/v1/issues", orNotImplemented(deps.SearchIssues))
		r.Get("/api/v1/issues/critical", orNotImplemented(deps.CriticalIssues))
		r.Put("/api/v1/issues/{issueID}/status", orNotImplemented(deps.UpdateStatusHandler))

		r.Post("/api/v1/issues/{issueID}/conversations", orNotImplemented(deps.AddConversation))
		r.Get("/api/v1/issues/{issueID}/conversations", orNotImplemented(deps.ListConversations))

		r.Post("/api/v1/issues/{issueID}/recommend", orNotImplemented(deps.RecommendHandler))
		r.Get("/api/v1/issues/{issueID}/recommendations", orNotImplemented(deps.RecommendationHistory))
		r.Post("/api/v1/recommendations/{recID}/used", orNotImplemented(deps.MarkUsedHandler))
		r.Get("/api/v1/recommendations/popular", orNotImplemented(deps.PopularRecs))

		r.Get("/api/v1/metrics", orNotImplemented(deps.MetricsHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
