package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Customers ---

func (s *PostgresStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO customers (id, email, name, company, vip, total_issues, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		customer.ID, customer.Email, customer.Name, customer.Company, customer.VIP,
		customer.TotalIssues, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, company, vip, total_issues, created_at, updated_at
		 FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Email, &c.Name, &c.Company, &c.VIP, &c.TotalIssues, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// --- Issues ---

const issueColumns = `id, customer_id, title, description, category, severity, status,
	assigned_to, resolution, resolution_hours, confidence, created_at, updated_at, resolved_at`

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var i models.Issue
	err := row.Scan(&i.ID, &i.CustomerID, &i.Title, &i.Description, &i.Category,
		&i.Severity, &i.Status, &i.AssignedTo, &i.Resolution, &i.ResolutionHours,
		&i.Confidence, &i.CreatedAt, &i.UpdatedAt, &i.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func collectIssues(rows pgx.Rows) ([]*models.Issue, error) {
	defer rows.Close()
	issues := []*models.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (s *PostgresStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO issues (id, customer_id, title, description, category, severity, status,
		   assigned_to, resolution, resolution_hours, confidence, created_at, updated_at, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		issue.ID, issue.CustomerID, issue.Title, issue.Description, issue.Category,
		issue.Severity, issue.Status, issue.AssignedTo, issue.Resolution, issue.ResolutionHours,
		issue.Confidence, issue.CreatedAt, issue.UpdatedAt, issue.ResolvedAt)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	issue, err := scanIssue(s.pool.QueryRow(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return issue, nil
}

func (s *PostgresStore) ListCustomerIssuesSince(ctx context.Context, customerID uuid.UUID, since time.Time) ([]*models.Issue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+issueColumns+` FROM issues
		 WHERE customer_id = $1 AND created_at >= $2
		 ORDER BY created_at ASC`, customerID, since)
	if err != nil {
		return nil, fmt.Errorf("list customer issues: %w", err)
	}
	return collectIssues(rows)
}

func (s *PostgresStore) ListResolvedIssues(ctx context.Context) ([]*models.Issue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+issueColumns+` FROM issues
		 WHERE status IN ('RESOLVED', 'CLOSED')
		 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list resolved issues: %w", err)
	}
	return collectIssues(rows)
}

func (s *PostgresStore) UpdateIssueStatus(ctx context.Context, id uuid.UUID, newStatus string) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback(ctx)

	var customerID uuid.UUID
	var oldStatus string
	var createdAt time.Time
	err = tx.QueryRow(ctx,
		`SELECT customer_id, status, created_at FROM issues WHERE id = $1 FOR UPDATE`, id,
	).Scan(&customerID, &oldStatus, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lock issue for status update: %w", err)
	}

	now := time.Now().UTC()
	if models.IsTerminal(newStatus) && !models.IsTerminal(oldStatus) {
		// First transition into a terminal status: record the resolution
		// timestamp and duration exactly once.
		hours := now.Sub(createdAt).Hours()
		_, err = tx.Exec(ctx,
			`UPDATE issues SET status = $2, updated_at = $3, resolved_at = $3, resolution_hours = $4
			 WHERE id = $1`, id, newStatus, now, hours)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE issues SET status = $2, updated_at = $3 WHERE id = $1`, id, newStatus, now)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("update issue status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit status update: %w", err)
	}
	return customerID, nil
}

func (s *PostgresStore) ListCriticalIssues(ctx context.Context) ([]*models.CriticalIssue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT i.id, i.title, i.severity, i.status, i.created_at, c.id, c.name, c.vip
		 FROM issues i
		 JOIN customers c ON c.id = i.customer_id
		 WHERE i.status IN ('OPEN', 'IN_PROGRESS')
		   AND (i.severity = 'HIGH' OR i.created_at <= NOW() - INTERVAL '24 hours')
		 ORDER BY c.vip DESC, i.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list critical issues: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	issues := []*models.CriticalIssue{}
	for rows.Next() {
		ci := &models.CriticalIssue{}
		if err := rows.Scan(&ci.IssueID, &ci.Title, &ci.Severity, &ci.Status, &ci.CreatedAt,
			&ci.CustomerID, &ci.CustomerName, &ci.VIP); err != nil {
			return nil, fmt.Errorf("scan critical issue: %w", err)
		}
		ci.AgeHours = now.Sub(ci.CreatedAt).Hours()
		issues = append(issues, ci)
	}
	return issues, rows.Err()
}

func (s *PostgresStore) SearchIssues(ctx context.Context, filter IssueFilter) ([]*models.Issue, int, error) {
	where := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CustomerID != uuid.Nil {
		where = append(where, "customer_id = "+arg(filter.CustomerID))
	}
	if filter.Severity != "" {
		where = append(where, "severity = "+arg(filter.Severity))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if !filter.From.IsZero() {
		where = append(where, "created_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "created_at <= "+arg(filter.To))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM issues"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := "SELECT " + issueColumns + " FROM issues" + clause +
		" ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search issues: %w", err)
	}
	issues, err := collectIssues(rows)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (s *PostgresStore) IssueStatistics(ctx context.Context) (*models.IssueStatistics, error) {
	var st models.IssueStatistics
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'OPEN'),
		        COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
		        COUNT(*) FILTER (WHERE status = 'RESOLVED'),
		        COUNT(*) FILTER (WHERE status = 'CLOSED'),
		        COUNT(*) FILTER (WHERE severity = 'HIGH'),
		        COUNT(*) FILTER (WHERE severity = 'NORMAL'),
		        COUNT(*) FILTER (WHERE severity = 'LOW'),
		        COALESCE(AVG(resolution_hours) FILTER (
		          WHERE status IN ('RESOLVED', 'CLOSED') AND resolution_hours IS NOT NULL), 0)
		 FROM issues`,
	).Scan(&st.TotalIssues, &st.OpenIssues, &st.InProgressIssues, &st.ResolvedIssues,
		&st.ClosedIssues, &st.HighSeverity, &st.NormalSeverity, &st.LowSeverity,
		&st.AvgResolutionHours)
	if err != nil {
		return nil, fmt.Errorf("issue statistics: %w", err)
	}
	if st.TotalIssues > 0 {
		st.ResolutionRate = float64(st.ResolvedIssues+st.ClosedIssues) / float64(st.TotalIssues) * 100
	}
	return &st, nil
}

// --- Conversations ---

func (s *PostgresStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, issue_id, message, sender_type, sender_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		conv.ID, conv.IssueID, conv.Message, conv.SenderType, conv.SenderID, conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListConversations(ctx context.Context, issueID uuid.UUID) ([]*models.Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, issue_id, message, sender_type, sender_id, created_at
		 FROM conversations WHERE issue_id = $1 ORDER BY created_at ASC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	convs := []*models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.IssueID, &c.Message, &c.SenderType, &c.SenderID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, &c)
	}
	return convs, rows.Err()
}

// --- Recommendations ---

func (s *PostgresStore) CreateRecommendations(ctx context.Context, recs []*models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin recommendation insert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		_, err := tx.Exec(ctx,
			`INSERT INTO recommendations (id, issue_id, template, type, tone, confidence, reasoning, used_count, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rec.ID, rec.IssueID, rec.Template, rec.Type, rec.Tone, rec.Confidence,
			rec.Reasoning, rec.UsedCount, rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit recommendations: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecommendations(ctx context.Context, issueID uuid.UUID) ([]*models.Recommendation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, issue_id, template, type, tone, confidence, reasoning, used_count, created_at
		 FROM recommendations WHERE issue_id = $1 ORDER BY created_at DESC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	return collectRecommendations(rows)
}

func (s *PostgresStore) IncrementRecommendationUsage(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE recommendations SET used_count = used_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment recommendation usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListPopularRecommendations(ctx context.Context, limit int) ([]*models.Recommendation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, issue_id, template, type, tone, confidence, reasoning, used_count, created_at
		 FROM recommendations WHERE used_count > 0 ORDER BY used_count DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular recommendations: %w", err)
	}
	return collectRecommendations(rows)
}

func (s *PostgresStore) RecommendationAnalytics(ctx context.Context) (*models.RecommendationAnalytics, error) {
	var a models.RecommendationAnalytics
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE used_count > 0),
		        COALESCE(AVG(confidence), 0),
		        COUNT(*) FILTER (WHERE type = 'greeting'),
		        COUNT(*) FILTER (WHERE type = 'solution'),
		        COUNT(*) FILTER (WHERE type = 'follow-up')
		 FROM recommendations`,
	).Scan(&a.Total, &a.Used, &a.AvgConfidence, &a.Greetings, &a.Solutions, &a.FollowUps)
	if err != nil {
		return nil, fmt.Errorf("recommendation analytics: %w", err)
	}
	if a.Total > 0 {
		a.UsageRate = float64(a.Used) / float64(a.Total) * 100
	}
	return &a, nil
}

func collectRecommendations(rows pgx.Rows) ([]*models.Recommendation, error) {
	defer rows.Close()
	recs := []*models.Recommendation{}
	for rows.Next() {
		var r models.Recommendation
		if err := rows.Scan(&r.ID, &r.IssueID, &r.Template, &r.Type, &r.Tone,
			&r.Confidence, &r.Reasoning, &r.UsedCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		recs = append(recs, &r)
	}
	return recs, rows.Err()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
