package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportlabs/triagedesk/internal/cache"
)

type fakeCache struct {
	cache.Cache
	counts map[string]int64
	down   bool
}

func (f *fakeCache) Increment(ctx context.Context, key string, amount int64, ttl time.Duration) int64 {
	if f.down {
		return 0
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key] += amount
	return f.counts[key]
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestLogger_PassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)

	Logger(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)

	Recovery(panicking).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
}

func TestRateLimit_UnderLimit(t *testing.T) {
	rl := NewRateLimit(&fakeCache{}, 2)
	handler := rl.Limit(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
	req.RemoteAddr = "10.0.0.1:52000"

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_OverLimit(t *testing.T) {
	rl := NewRateLimit(&fakeCache{}, 2)
	handler := rl.Limit(okHandler())

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
		req.RemoteAddr = "10.0.0.1:52000"
		handler.ServeHTTP(rec, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_SeparateClients(t *testing.T) {
	rl := NewRateLimit(&fakeCache{}, 1)
	handler := rl.Limit(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
	first.RemoteAddr = "10.0.0.1:52000"
	second := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
	second.RemoteAddr = "10.0.0.2:52000"

	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, first)
	recB := httptest.NewRecorder()
	handler.ServeHTTP(recB, second)

	assert.Equal(t, http.StatusOK, recA.Code)
	assert.Equal(t, http.StatusOK, recB.Code)
}

func TestRateLimit_FailsOpenWhenCacheDown(t *testing.T) {
	rl := NewRateLimit(&fakeCache{down: true}, 1)
	handler := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
		req.RemoteAddr = "10.0.0.1:52000"
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
