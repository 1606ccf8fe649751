package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)

	CreateIssue(ctx context.Context, issue *models.Issue) error
	GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	ListCustomerIssuesSince(ctx context.Context, customerID uuid.UUID, since time.Time) ([]*models.Issue, error)
	// ListResolvedIssues returns the similarity-search corpus: every issue in
	// a terminal status, oldest first.
	ListResolvedIssues(ctx context.Context) ([]*models.Issue, error)
	// UpdateIssueStatus transactionally moves an issue to newStatus. On the
	// first transition into a terminal status it also sets resolved_at and
	// the resolution duration in hours. Returns the owning customer id so
	// the caller can invalidate caches after commit.
	UpdateIssueStatus(ctx context.Context, id uuid.UUID, newStatus string) (uuid.UUID, error)
	ListCriticalIssues(ctx context.Context) ([]*models.CriticalIssue, error)
	SearchIssues(ctx context.Context, filter IssueFilter) ([]*models.Issue, int, error)
	IssueStatistics(ctx context.Context) (*models.IssueStatistics, error)

	CreateConversation(ctx context.Context, conv *models.Conversation) error
	ListConversations(ctx context.Context, issueID uuid.UUID) ([]*models.Conversation, error)

	// CreateRecommendations persists a batch in a single transaction.
	CreateRecommendations(ctx context.Context, recs []*models.Recommendation) error
	ListRecommendations(ctx context.Context, issueID uuid.UUID) ([]*models.Recommendation, error)
	IncrementRecommendationUsage(ctx context.Context, id uuid.UUID) error
	ListPopularRecommendations(ctx context.Context, limit int) ([]*models.Recommendation, error)
	RecommendationAnalytics(ctx context.Context) (*models.RecommendationAnalytics, error)
}

// IssueFilter narrows an issue search. Zero values mean "no constraint".
type IssueFilter struct {
	CustomerID uuid.UUID
	Severity   string
	Status     string
	Category   string
	From       time.Time
	To         time.Time
	Page       int
	Limit      int
}
