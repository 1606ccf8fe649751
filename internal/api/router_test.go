package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportlabs/triagedesk/internal/api"
	mw "github.com/supportlabs/triagedesk/internal/api/middleware"
	"github.com/supportlabs/triagedesk/internal/cache"
)

// stubCache allows every request through the rate limiter.
type stubCache struct {
	cache.Cache
}

func (c *stubCache) Increment(_ context.Context, _ string, amount int64, _ time.Duration) int64 {
	return amount
}

func newTestRouter() http.Handler {
	return api.NewRouter(api.Dependencies{
		RateLimit: mw.NewRateLimit(&stubCache{}, 60),
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
	})
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RoutesRegistered(t *testing.T) {
	router := newTestRouter()

	// Every route without a wired handler answers 501, proving the route
	// exists and is distinguishable from a 404 or 405.
	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/customers"},
		{"GET", "/api/v1/customers/8ff8259b-43a6-4b91-b79a-f6bb2a6ed8a1/history"},
		{"POST", "/api/v1/issues"},
		{"POST", "/api/v1/issues/analyze"},
		{"GET", "/api/v1/issues"},
		{"GET", "/api/v1/issues/critical"},
		{"PUT", "/api/v1/issues/8ff8259b-43a6-4b91-b79a-f6bb2a6ed8a1/status"},
		{"POST", "/api/v1/issues/8ff8259b-43a6-4b91-b79a-f6bb2a6ed8a1/conversations"},
		{"GET", "/api/v1/issues/8ff8259b-43a6-4b91-b79a-f6bb2a6ed8a1/conversations"},
		{"POST", "/api/v1/issues/8ff8259b-43a6-4b91-b79a-f6bb2a6ed8a1/recommend"},
		{"GET", "/api/v1/issues/8ff8259b-43a6-4b91-b79a-f6bb2a6ed8a1/recommendations"},
		{"POST", "/api/v1/recommendations/8ff8259b-43a6-4b91-b79a-f6bb2a6ed8a1/used"},
		{"GET", "/api/v1/recommendations/popular"},
		{"GET", "/api/v1/metrics"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotImplemented, w.Code)

			var env struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
			assert.Equal(t, "NOT_IMPLEMENTED", env.Error.Code)
		})
	}
}

func TestRouter_UnknownRoute_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/does-not-exist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RateLimitHeadersPresent(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
}
