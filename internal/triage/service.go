// Package triage orchestrates the issue analysis pipeline: history
// aggregation, severity scoring, similarity search, critical pattern
// detection, and recommended-action generation.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/internal/cache"
	"github.com/supportlabs/triagedesk/internal/history"
	"github.com/supportlabs/triagedesk/internal/severity"
	"github.com/supportlabs/triagedesk/internal/similarity"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/internal/stream"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// Service runs analysis calls and the issue mutations around them.
type Service struct {
	store           store.Store
	cache           cache.Cache
	history         *history.Aggregator
	producer        *stream.Producer
	similarityLimit int
	analysisTTL     time.Duration
}

func NewService(st store.Store, ca cache.Cache, agg *history.Aggregator, producer *stream.Producer, similarityLimit int, analysisTTL time.Duration) *Service {
	return &Service{
		store:           st,
		cache:           ca,
		history:         agg,
		producer:        producer,
		similarityLimit: similarityLimit,
		analysisTTL:     analysisTTL,
	}
}

// Analyze runs the full pipeline for a new issue: it persists the issue
// with its assessed severity, then assembles and caches the analysis.
// Severity scoring and similarity search have no data dependency on each
// other and run concurrently. The analysis is cached under a
// timestamp-qualified key so each call produces a new entry; cache and
// stream writes are best-effort and never fail the call.
func (s *Service) Analyze(ctx context.Context, input models.IssueInput) (*models.AnalysisResult, error) {
	start := time.Now()

	snap, err := s.history.Snapshot(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("history snapshot: %w", err)
	}

	issueText := input.Title + " " + input.Description

	var (
		wg         sync.WaitGroup
		assessment severity.Assessment
		similar    []models.SimilarityMatch
		corpusErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		assessment = severity.Score(input.Title, input.Description, snap.VIP, snap.CriticalIssues)
	}()
	go func() {
		defer wg.Done()
		corpus, err := s.store.ListResolvedIssues(ctx)
		if err != nil {
			corpusErr = err
			return
		}
		similar = similarity.Rank(issueText, corpus, s.similarityLimit)
	}()
	wg.Wait()
	if corpusErr != nil {
		return nil, fmt.Errorf("load resolved issues: %w", corpusErr)
	}
	if similar == nil {
		similar = []models.SimilarityMatch{}
	}

	issue, err := s.persistIssue(ctx, input, assessment)
	if err != nil {
		return nil, err
	}

	flags, err := s.history.DetectCriticalPatterns(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("detect critical patterns: %w", err)
	}

	result := &models.AnalysisResult{
		IssueID:        issue.ID,
		Severity:       assessment.Severity,
		Confidence:     assessment.Confidence,
		History:        *snap,
		SimilarIssues:  similar,
		CriticalFlags:  flags,
		Actions:        recommendedActions(assessment, snap, similar, flags),
		ProcessingSecs: time.Since(start).Seconds(),
	}

	s.cache.SetJSON(ctx, cache.AnalysisKey(issue.ID, time.Now().Unix()), result, s.analysisTTL)

	if s.producer != nil {
		err := s.producer.PublishAnalysisCompleted(ctx, stream.AnalysisCompleted{
			IssueID:    issue.ID,
			CustomerID: input.CustomerID,
			Severity:   assessment.Severity,
			Flags:      flags,
		})
		if err != nil {
			slog.Warn("failed to publish analysis event", "issue_id", issue.ID, "error", err)
		}
	}

	slog.Info("issue analysis completed",
		"issue_id", issue.ID,
		"severity", assessment.Severity,
		"processing_secs", result.ProcessingSecs)
	return result, nil
}

// CreateIssue persists a new issue with a severity pre-assessment but
// without running the full analysis pipeline.
func (s *Service) CreateIssue(ctx context.Context, input models.IssueInput) (*models.Issue, error) {
	snap, err := s.history.Snapshot(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("history snapshot: %w", err)
	}
	assessment := severity.Score(input.Title, input.Description, snap.VIP, snap.CriticalIssues)
	return s.persistIssue(ctx, input, assessment)
}

func (s *Service) persistIssue(ctx context.Context, input models.IssueInput, assessment severity.Assessment) (*models.Issue, error) {
	now := time.Now().UTC()
	issue := &models.Issue{
		ID:          uuid.New(),
		CustomerID:  input.CustomerID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Severity:    assessment.Severity,
		Status:      models.StatusOpen,
		Confidence:  assessment.Confidence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateIssue(ctx, issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	s.cache.SetJSON(ctx, cache.IssueKey(issue.ID), issue, s.analysisTTL)
	return issue, nil
}

// recommendedActions merges severity, history, similarity, and pattern
// signals into a list of next steps for the support team.
func recommendedActions(assessment severity.Assessment, snap *models.HistorySnapshot, similar []models.SimilarityMatch, flags []string) []string {
	actions := []string{}

	if assessment.Severity == models.SeverityHigh {
		actions = append(actions, "Assign to senior support engineer", "Escalate to technical team")
		if snap.VIP {
			actions = append(actions, "Notify account manager")
		}
	}

	if slices.Contains(flags, "Multiple issues in short time period") {
		actions = append(actions, "Schedule customer success review")
	}
	if slices.Contains(flags, "Repeated issue categories detected") {
		actions = append(actions, "Provide proactive training on affected areas")
	}

	if avg, ok := avgResolutionHours(similar); ok && avg > 4 {
		actions = append(actions, "Prepare for extended resolution time")
	}

	if snap.TotalIssues > 10 {
		actions = append(actions, "Consider VIP status upgrade")
	}

	if len(actions) == 0 {
		actions = append(actions, "Standard support process")
	}
	return actions
}

// avgResolutionHours averages the recorded durations among the matches.
// ok is false when no match carries a duration.
func avgResolutionHours(similar []models.SimilarityMatch) (float64, bool) {
	var sum float64
	var n int
	for _, match := range similar {
		if match.ResolutionHours != nil {
			sum += *match.ResolutionHours
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// UpdateIssueStatus transitions an issue and invalidates the caches the
// mutation makes stale. Failures are logged, not raised; the returned flag
// tells the boundary layer whether the transition committed.
func (s *Service) UpdateIssueStatus(ctx context.Context, issueID uuid.UUID, newStatus string) bool {
	customerID, err := s.store.UpdateIssueStatus(ctx, issueID, newStatus)
	if err != nil {
		slog.Error("failed to update issue status", "issue_id", issueID, "status", newStatus, "error", err)
		return false
	}

	s.cache.Delete(ctx, cache.IssueKey(issueID))
	s.cache.Delete(ctx, cache.CustomerHistoryKey(customerID))
	s.cache.DeletePattern(ctx, cache.AnalysisPattern(issueID))
	return true
}

// GetCustomerHistory returns the cached or recomputed 30-day snapshot.
func (s *Service) GetCustomerHistory(ctx context.Context, customerID uuid.UUID) (*models.HistorySnapshot, error) {
	return s.history.Snapshot(ctx, customerID)
}

// GetCriticalIssues lists issues needing immediate attention, VIP
// customers first, then oldest first.
func (s *Service) GetCriticalIssues(ctx context.Context) ([]*models.CriticalIssue, error) {
	return s.store.ListCriticalIssues(ctx)
}

// Statistics returns the system-wide issue rollup.
func (s *Service) Statistics(ctx context.Context) (*models.IssueStatistics, error) {
	return s.store.IssueStatistics(ctx)
}

// SearchIssues returns a filtered, paginated issue listing with the total
// match count.
func (s *Service) SearchIssues(ctx context.Context, filter store.IssueFilter) ([]*models.Issue, int, error) {
	return s.store.SearchIssues(ctx, filter)
}
