// Package recommend synthesizes ranked message-template recommendations
// for support agents by combining generated candidates with customer and
// issue attributes.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/internal/similarity"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

const (
	systemPrompt   = "You are a helpful support assistant. Generate professional, empathetic message templates."
	baseConfidence = 0.85
	candidates     = 3

	greetingLimit = 2
	solutionLimit = 3
	followUpLimit = 2
)

var (
	positiveWords = []string{"thank", "great", "excellent"}
	negativeWords = []string{"frustrated", "angry", "disappointed"}
)

// Service generates, persists, and tracks recommendations.
type Service struct {
	store           store.Store
	gen             models.Generator
	similarityLimit int
}

func NewService(st store.Store, gen models.Generator, similarityLimit int) *Service {
	return &Service{store: st, gen: gen, similarityLimit: similarityLimit}
}

// Generate produces greeting, solution, and follow-up recommendations for an
// issue. The confidence slice is parallel to the recommendation slice in
// emission order so callers can zip them positionally. Every produced
// recommendation is persisted with a zero usage counter; a persistence
// failure is logged, never raised. An unavailable generation provider
// degrades to empty per-type lists rather than an error.
func (s *Service) Generate(ctx context.Context, issueID uuid.UUID, conversationContext string) (*models.RecommendationSet, error) {
	issue, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	customer, err := s.store.GetCustomer(ctx, issue.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	conversations, err := s.store.ListConversations(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}

	now := time.Now().UTC()
	recs := []models.Recommendation{}
	recs = append(recs, s.greetings(ctx, issue, customer, conversationContext)...)
	recs = append(recs, s.solutions(ctx, issue, conversations)...)
	recs = append(recs, s.followUps(ctx, issue, conversations)...)

	confidences := make([]float64, 0, len(recs))
	persisted := make([]*models.Recommendation, 0, len(recs))
	for i := range recs {
		recs[i].ID = uuid.New()
		recs[i].IssueID = issueID
		recs[i].CreatedAt = now
		confidences = append(confidences, recs[i].Confidence)
		persisted = append(persisted, &recs[i])
	}

	set := &models.RecommendationSet{
		IssueID:         issueID,
		Recommendations: recs,
		Confidences:     confidences,
		Reasoning:       reasoning(issue, customer, conversations, recs),
	}

	if len(persisted) > 0 {
		if err := s.store.CreateRecommendations(ctx, persisted); err != nil {
			slog.Warn("failed to store recommendations", "issue_id", issueID, "error", err)
		}
	}
	return set, nil
}

// greetings returns up to two greeting candidates, rewritten for VIP
// customers and high-severity issues.
func (s *Service) greetings(ctx context.Context, issue *models.Issue, customer *models.Customer, conversationContext string) []models.Recommendation {
	greetingContext := fmt.Sprintf("Issue: %s. Customer: %s. %s", issue.Title, customer.Name, conversationContext)
	recs := s.generate(ctx, models.MessageGreeting, "professional", greetingContext)

	for i := range recs {
		if customer.VIP {
			recs[i].Template = strings.Replace(recs[i].Template,
				"Thank you for reaching out",
				"Thank you for reaching out to our VIP support team", 1)
			recs[i].Confidence = min(0.95, recs[i].Confidence+0.1)
		}
		if issue.Severity == models.SeverityHigh {
			recs[i].Template = strings.Replace(recs[i].Template,
				"I'm here to help",
				"I understand this is urgent and I'm here to help immediately", 1)
		}
	}
	return truncate(recs, greetingLimit)
}

// solutions returns up to three solution candidates, annotated with a
// resolution-time note derived from the best-matching similar issue.
func (s *Service) solutions(ctx context.Context, issue *models.Issue, conversations []*models.Conversation) []models.Recommendation {
	similar := s.similarIssues(ctx, issue)

	conversationText := joinMessages(conversations)
	if len(conversationText) > 500 {
		conversationText = conversationText[:500]
	}

	solutionContext := fmt.Sprintf("Issue: %s. Description: %s. Conversation: %s. ",
		issue.Title, issue.Description, conversationText)
	if len(similar) > 0 {
		solutionContext += fmt.Sprintf("Similar resolved issues found: %d", len(similar))
	}

	recs := s.generate(ctx, models.MessageSolution, "helpful", solutionContext)

	if len(similar) > 0 {
		best := similar[0]
		for i := range recs {
			switch {
			case best.ResolutionHours != nil && *best.ResolutionHours < 2:
				recs[i].Template += " Based on similar cases, this should be resolved quickly."
			case best.ResolutionHours != nil && *best.ResolutionHours > 4:
				recs[i].Template += " This may require some time to resolve completely."
			}
		}
	}
	return truncate(recs, solutionLimit)
}

// followUps returns up to two follow-up candidates. Tone follows the
// conversation sentiment and the closing line follows the issue status.
func (s *Service) followUps(ctx context.Context, issue *models.Issue, conversations []*models.Conversation) []models.Recommendation {
	conversationText := strings.ToLower(joinMessages(conversations))

	tone := "professional"
	if containsAny(conversationText, positiveWords) {
		tone = "positive"
	} else if containsAny(conversationText, negativeWords) {
		tone = "empathetic"
	}

	followUpContext := fmt.Sprintf("Issue: %s. Conversation length: %d messages. Current status: %s. Tone: %s",
		issue.Title, len(conversations), issue.Status, tone)

	recs := s.generate(ctx, models.MessageFollowUp, tone, followUpContext)

	for i := range recs {
		switch issue.Status {
		case models.StatusResolved:
			recs[i].Template += " Is there anything else I can help you with?"
		case models.StatusInProgress:
			recs[i].Template += " I'll keep you updated on the progress."
		}
	}
	return truncate(recs, followUpLimit)
}

// generate performs one provider call for a message type. Any failure
// degrades to an empty candidate list.
func (s *Service) generate(ctx context.Context, messageType, tone, promptContext string) []models.Recommendation {
	if s.gen == nil || !s.gen.Available() {
		return nil
	}

	prompt := fmt.Sprintf("Generate a %s %s message for a support issue. Context: %s", tone, messageType, promptContext)
	texts, err := s.gen.Generate(ctx, models.GenerateRequest{
		System:     systemPrompt,
		Prompt:     prompt,
		Candidates: candidates,
	})
	if err != nil {
		slog.Warn("generation call failed", "type", messageType, "error", err)
		return nil
	}

	recs := make([]models.Recommendation, 0, len(texts))
	for _, text := range texts {
		recs = append(recs, models.Recommendation{
			Template:   text,
			Type:       messageType,
			Tone:       tone,
			Confidence: baseConfidence,
		})
	}
	return recs
}

// similarIssues ranks the resolved-issue corpus against the issue text.
// A store failure degrades to no matches.
func (s *Service) similarIssues(ctx context.Context, issue *models.Issue) []models.SimilarityMatch {
	corpus, err := s.store.ListResolvedIssues(ctx)
	if err != nil {
		slog.Warn("failed to load resolved issues", "error", err)
		return nil
	}
	filtered := corpus[:0]
	for _, candidate := range corpus {
		if candidate.ID != issue.ID {
			filtered = append(filtered, candidate)
		}
	}
	return similarity.Rank(issue.Title+" "+issue.Description, filtered, s.similarityLimit)
}

// reasoning derives the free-text summary attached to a recommendation set.
func reasoning(issue *models.Issue, customer *models.Customer, conversations []*models.Conversation, recs []models.Recommendation) string {
	var parts []string

	if customer.VIP {
		parts = append(parts, "VIP customer - enhanced service level")
	}
	if customer.TotalIssues > 10 {
		parts = append(parts, "Experienced customer - familiar with process")
	}
	if issue.Severity == models.SeverityHigh {
		parts = append(parts, "High severity issue - urgent attention required")
	}
	if len(conversations) > 5 {
		parts = append(parts, "Extended conversation - detailed context available")
	}

	highConfidence := 0
	for _, rec := range recs {
		if rec.Confidence > 0.8 {
			highConfidence++
		}
	}
	if highConfidence > 2 {
		parts = append(parts, "High confidence recommendations based on similar cases")
	}

	if len(parts) == 0 {
		parts = append(parts, "Standard support recommendations")
	}
	return strings.Join(parts, ". ") + "."
}

// History returns all persisted recommendations for an issue, newest first.
func (s *Service) History(ctx context.Context, issueID uuid.UUID) ([]*models.Recommendation, error) {
	return s.store.ListRecommendations(ctx, issueID)
}

// MarkUsed increments the usage counter of a recommendation.
func (s *Service) MarkUsed(ctx context.Context, recommendationID uuid.UUID) error {
	return s.store.IncrementRecommendationUsage(ctx, recommendationID)
}

// Popular returns the most used recommendations across all issues.
func (s *Service) Popular(ctx context.Context, limit int) ([]*models.Recommendation, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.ListPopularRecommendations(ctx, limit)
}

// Analytics summarizes recommendation usage.
func (s *Service) Analytics(ctx context.Context) (*models.RecommendationAnalytics, error) {
	return s.store.RecommendationAnalytics(ctx)
}

func joinMessages(conversations []*models.Conversation) string {
	messages := make([]string, 0, len(conversations))
	for _, conv := range conversations {
		messages = append(messages, conv.Message)
	}
	return strings.Join(messages, " ")
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func truncate(recs []models.Recommendation, limit int) []models.Recommendation {
	if len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
