package cache_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/supportlabs/triagedesk/internal/cache"
)

func TestKeyBuilders(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	assert.Equal(t, "customer_history:550e8400-e29b-41d4-a716-446655440000", cache.CustomerHistoryKey(id))
	assert.Equal(t, "analysis:550e8400-e29b-41d4-a716-446655440000:1700000000", cache.AnalysisKey(id, 1700000000))
	assert.Equal(t, "analysis:550e8400-e29b-41d4-a716-446655440000:*", cache.AnalysisPattern(id))
	assert.Equal(t, "issue:550e8400-e29b-41d4-a716-446655440000", cache.IssueKey(id))
	assert.Equal(t, "ratelimit:10.0.0.1", cache.RateLimitKey("10.0.0.1"))
}
