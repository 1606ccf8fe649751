// Package history derives customer context from past issues: a cached
// 30-day snapshot used for severity scoring and recommendations, and a
// 7-day critical pattern scan used for escalation flags.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/internal/cache"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

const (
	snapshotWindow = 30 * 24 * time.Hour
	patternWindow  = 7 * 24 * time.Hour
	staleThreshold = 24 * time.Hour
	recentLimit    = 5
)

// Aggregator computes history snapshots and critical pattern flags.
type Aggregator struct {
	store store.Store
	cache cache.Cache
	ttl   time.Duration
}

func NewAggregator(s store.Store, c cache.Cache, ttl time.Duration) *Aggregator {
	return &Aggregator{store: s, cache: c, ttl: ttl}
}

// Snapshot returns the 30-day history view for a customer. Cache hits are
// returned as-is; misses recompute from the store and write back with the
// configured TTL. An unknown customer yields a zero-value snapshot rather
// than an error, so triage of a brand-new customer still proceeds.
func (a *Aggregator) Snapshot(ctx context.Context, customerID uuid.UUID) (*models.HistorySnapshot, error) {
	key := cache.CustomerHistoryKey(customerID)

	var cached models.HistorySnapshot
	if a.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	snap := &models.HistorySnapshot{
		CustomerID:   customerID,
		RecentIssues: []models.IssueSummary{},
		Patterns:     []string{},
	}

	customer, err := a.store.GetCustomer(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	snap.VIP = customer.VIP

	issues, err := a.store.ListCustomerIssuesSince(ctx, customerID, time.Now().UTC().Add(-snapshotWindow))
	if err != nil {
		return nil, fmt.Errorf("load customer issues: %w", err)
	}

	snap.TotalIssues = len(issues)

	var resolutionSum float64
	var resolutionCount int
	for _, issue := range issues {
		if models.IsTerminal(issue.Status) {
			snap.ResolvedIssues++
			if issue.ResolutionHours != nil {
				resolutionSum += *issue.ResolutionHours
				resolutionCount++
			}
		}
		if issue.Severity == models.SeverityHigh {
			snap.CriticalIssues++
		}
	}
	if resolutionCount > 0 {
		snap.AvgResolution = resolutionSum / float64(resolutionCount)
	}

	// Issues arrive oldest first; the snapshot carries the newest five.
	start := len(issues) - recentLimit
	if start < 0 {
		start = 0
	}
	for i := len(issues) - 1; i >= start; i-- {
		issue := issues[i]
		snap.RecentIssues = append(snap.RecentIssues, models.IssueSummary{
			IssueID:         issue.ID,
			Title:           issue.Title,
			Status:          issue.Status,
			Severity:        issue.Severity,
			ResolutionHours: issue.ResolutionHours,
			CreatedAt:       issue.CreatedAt,
		})
	}

	snap.Patterns = detectPatterns(issues)

	a.cache.SetJSON(ctx, key, snap, a.ttl)
	return snap, nil
}

// detectPatterns scans a chronologically ordered 30-day issue list for
// recurring behavior worth surfacing to an agent.
func detectPatterns(issues []*models.Issue) []string {
	patterns := []string{}

	counts := make(map[string]int)
	var order []string
	highCount := 0
	for _, issue := range issues {
		if issue.Category != nil {
			if counts[*issue.Category] == 0 {
				order = append(order, *issue.Category)
			}
			counts[*issue.Category]++
		}
		if issue.Severity == models.SeverityHigh {
			highCount++
		}
	}

	var repeated []string
	for _, category := range order {
		if counts[category] > 1 {
			repeated = append(repeated, category)
		}
	}
	if len(repeated) > 0 {
		patterns = append(patterns, "Repeated categories: "+strings.Join(repeated, ", "))
	}

	if highCount > 2 {
		patterns = append(patterns, "Multiple high-severity issues")
	}

	sorted := make([]*models.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	for i := 0; i+2 < len(sorted); i++ {
		first := sorted[i+1].CreatedAt.Sub(sorted[i].CreatedAt)
		second := sorted[i+2].CreatedAt.Sub(sorted[i+1].CreatedAt)
		if first < staleThreshold && second < staleThreshold {
			patterns = append(patterns, "Issues clustered in time")
			break
		}
	}

	return patterns
}

// DetectCriticalPatterns scans the last 7 days of a customer's issues for
// conditions that should escalate the current triage. Flags are ordered:
// volume, stale criticals, repeated categories.
func (a *Aggregator) DetectCriticalPatterns(ctx context.Context, customerID uuid.UUID) ([]string, error) {
	now := time.Now().UTC()
	issues, err := a.store.ListCustomerIssuesSince(ctx, customerID, now.Add(-patternWindow))
	if err != nil {
		return nil, fmt.Errorf("load customer issues: %w", err)
	}

	flags := []string{}

	if len(issues) >= 3 {
		flags = append(flags, "Multiple issues in short time period")
	}

	stale := 0
	counts := make(map[string]int)
	duplicate := false
	for _, issue := range issues {
		open := issue.Status == models.StatusOpen || issue.Status == models.StatusInProgress
		if open && issue.Severity == models.SeverityHigh && now.Sub(issue.CreatedAt) > staleThreshold {
			stale++
		}
		if issue.Category != nil {
			counts[*issue.Category]++
			if counts[*issue.Category] > 1 {
				duplicate = true
			}
		}
	}
	if stale > 0 {
		flags = append(flags, fmt.Sprintf("%d critical issues unresolved for >24h", stale))
	}
	if duplicate {
		flags = append(flags, "Repeated issue categories detected")
	}

	return flags, nil
}
