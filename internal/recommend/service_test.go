package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportlabs/triagedesk/internal/genai/mock"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// --- fakes ---

type fakeStore struct {
	store.Store
	issue         *models.Issue
	customer      *models.Customer
	conversations []*models.Conversation
	resolved      []*models.Issue
	created       []*models.Recommendation
	createErr     error
}

func (f *fakeStore) GetIssue(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	if f.issue == nil || f.issue.ID != id {
		return nil, store.ErrNotFound
	}
	return f.issue, nil
}

func (f *fakeStore) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if f.customer == nil {
		return nil, store.ErrNotFound
	}
	return f.customer, nil
}

func (f *fakeStore) ListConversations(ctx context.Context, issueID uuid.UUID) ([]*models.Conversation, error) {
	return f.conversations, nil
}

func (f *fakeStore) ListResolvedIssues(ctx context.Context) ([]*models.Issue, error) {
	return f.resolved, nil
}

func (f *fakeStore) CreateRecommendations(ctx context.Context, recs []*models.Recommendation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, recs...)
	return nil
}

// --- helpers ---

func baseFixture() *fakeStore {
	issueID := uuid.New()
	customerID := uuid.New()
	return &fakeStore{
		issue: &models.Issue{
			ID:          issueID,
			CustomerID:  customerID,
			Title:       "Dashboard loading slowly",
			Description: "The main dashboard takes a long time to load",
			Severity:    models.SeverityNormal,
			Status:      models.StatusOpen,
		},
		customer: &models.Customer{ID: customerID, Name: "Acme Corp"},
	}
}

// echoGenerator returns the same template for every candidate so rewrite
// assertions have a stable base text.
func echoGenerator(template string) *mock.MockGenerator {
	return &mock.MockGenerator{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, req models.GenerateRequest) ([]string, error) {
			texts := make([]string, 0, req.Candidates)
			for i := 0; i < req.Candidates; i++ {
				texts = append(texts, template)
			}
			return texts, nil
		},
	}
}

func conv(message string) *models.Conversation {
	return &models.Conversation{
		ID:         uuid.New(),
		Message:    message,
		SenderType: models.SenderCustomer,
		CreatedAt:  time.Now().UTC(),
	}
}

func byType(recs []models.Recommendation, messageType string) []models.Recommendation {
	var out []models.Recommendation
	for _, rec := range recs {
		if rec.Type == messageType {
			out = append(out, rec)
		}
	}
	return out
}

// --- Generate ---

func TestGenerate_UnknownIssue(t *testing.T) {
	svc := NewService(&fakeStore{}, mock.NewGenerator(), 5)

	_, err := svc.Generate(context.Background(), uuid.New(), "context")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGenerate_EmissionOrderAndCaps(t *testing.T) {
	st := baseFixture()
	svc := NewService(st, mock.NewGenerator(), 5)

	set, err := svc.Generate(context.Background(), st.issue.ID, "customer reported slowness")
	require.NoError(t, err)

	// Three candidates per call, capped at 2/3/2.
	require.Len(t, set.Recommendations, 7)
	assert.Len(t, byType(set.Recommendations, models.MessageGreeting), 2)
	assert.Len(t, byType(set.Recommendations, models.MessageSolution), 3)
	assert.Len(t, byType(set.Recommendations, models.MessageFollowUp), 2)

	// Greetings first, then solutions, then follow-ups.
	assert.Equal(t, models.MessageGreeting, set.Recommendations[0].Type)
	assert.Equal(t, models.MessageSolution, set.Recommendations[2].Type)
	assert.Equal(t, models.MessageFollowUp, set.Recommendations[5].Type)

	// Confidence slice zips positionally with the recommendation slice.
	require.Len(t, set.Confidences, len(set.Recommendations))
	for i, rec := range set.Recommendations {
		assert.Equal(t, rec.Confidence, set.Confidences[i])
	}

	// Everything persisted with a zero usage counter.
	require.Len(t, st.created, 7)
	for _, rec := range st.created {
		assert.Zero(t, rec.UsedCount)
		assert.Equal(t, st.issue.ID, rec.IssueID)
	}
}

func TestGenerate_VIPGreetingRewrite(t *testing.T) {
	st := baseFixture()
	st.customer.VIP = true
	gen := echoGenerator("Thank you for reaching out. I'm here to help.")
	svc := NewService(st, gen, 5)

	set, err := svc.Generate(context.Background(), st.issue.ID, "")
	require.NoError(t, err)

	greetings := byType(set.Recommendations, models.MessageGreeting)
	require.NotEmpty(t, greetings)
	assert.Equal(t, "Thank you for reaching out to our VIP support team. I'm here to help.", greetings[0].Template)
	assert.InDelta(t, 0.95, greetings[0].Confidence, 1e-9)
}

func TestGenerate_HighSeverityGreetingRewrite(t *testing.T) {
	st := baseFixture()
	st.issue.Severity = models.SeverityHigh
	gen := echoGenerator("Thank you for reaching out. I'm here to help.")
	svc := NewService(st, gen, 5)

	set, err := svc.Generate(context.Background(), st.issue.ID, "")
	require.NoError(t, err)

	greetings := byType(set.Recommendations, models.MessageGreeting)
	require.NotEmpty(t, greetings)
	assert.Equal(t,
		"Thank you for reaching out. I understand this is urgent and I'm here to help immediately.",
		greetings[0].Template)
	assert.InDelta(t, 0.85, greetings[0].Confidence, 1e-9)
}

func TestGenerate_SolutionResolutionNotes(t *testing.T) {
	fast := 1.5
	slow := 6.0

	cases := []struct {
		name   string
		hours  *float64
		suffix string
	}{
		{"fast resolution", &fast, " Based on similar cases, this should be resolved quickly."},
		{"slow resolution", &slow, " This may require some time to resolve completely."},
		{"no recorded duration", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := baseFixture()
			similar := &models.Issue{
				ID:              uuid.New(),
				Title:           st.issue.Title,
				Description:     st.issue.Description,
				Status:          models.StatusResolved,
				ResolutionHours: tc.hours,
			}
			st.resolved = []*models.Issue{similar}
			gen := echoGenerator("Try clearing the cache.")
			svc := NewService(st, gen, 5)

			set, err := svc.Generate(context.Background(), st.issue.ID, "")
			require.NoError(t, err)

			solutions := byType(set.Recommendations, models.MessageSolution)
			require.NotEmpty(t, solutions)
			assert.Equal(t, "Try clearing the cache."+tc.suffix, solutions[0].Template)
		})
	}
}

func TestGenerate_FollowUpToneSelection(t *testing.T) {
	cases := []struct {
		name     string
		messages []string
		tone     string
	}{
		{"positive", []string{"thank you so much"}, "positive"},
		{"empathetic", []string{"I am really frustrated with this"}, "empathetic"},
		{"default", []string{"still waiting for a fix"}, "professional"},
		{"positive wins over negative", []string{"thank you but I am angry"}, "positive"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := baseFixture()
			for _, m := range tc.messages {
				st.conversations = append(st.conversations, conv(m))
			}
			svc := NewService(st, mock.NewGenerator(), 5)

			set, err := svc.Generate(context.Background(), st.issue.ID, "")
			require.NoError(t, err)

			followUps := byType(set.Recommendations, models.MessageFollowUp)
			require.NotEmpty(t, followUps)
			assert.Equal(t, tc.tone, followUps[0].Tone)
		})
	}
}

func TestGenerate_FollowUpStatusClosingLines(t *testing.T) {
	cases := []struct {
		status string
		suffix string
	}{
		{models.StatusResolved, " Is there anything else I can help you with?"},
		{models.StatusInProgress, " I'll keep you updated on the progress."},
		{models.StatusOpen, ""},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			st := baseFixture()
			st.issue.Status = tc.status
			gen := echoGenerator("Checking in on your issue.")
			svc := NewService(st, gen, 5)

			set, err := svc.Generate(context.Background(), st.issue.ID, "")
			require.NoError(t, err)

			followUps := byType(set.Recommendations, models.MessageFollowUp)
			require.NotEmpty(t, followUps)
			assert.Equal(t, "Checking in on your issue."+tc.suffix, followUps[0].Template)
		})
	}
}

func TestGenerate_UnavailableProviderDegrades(t *testing.T) {
	st := baseFixture()
	gen := &mock.MockGenerator{Name_: "mock", Unavailable: true}
	svc := NewService(st, gen, 5)

	set, err := svc.Generate(context.Background(), st.issue.ID, "")
	require.NoError(t, err)
	assert.Empty(t, set.Recommendations)
	assert.Empty(t, set.Confidences)
	assert.Equal(t, "Standard support recommendations.", set.Reasoning)
	assert.Empty(t, st.created)
}

func TestGenerate_ProviderErrorDegrades(t *testing.T) {
	st := baseFixture()
	gen := mock.NewFailingGenerator(errors.New("upstream 500"))
	svc := NewService(st, gen, 5)

	set, err := svc.Generate(context.Background(), st.issue.ID, "")
	require.NoError(t, err)
	assert.Empty(t, set.Recommendations)
}

func TestGenerate_PersistenceFailureIsSilent(t *testing.T) {
	st := baseFixture()
	st.createErr = errors.New("disk full")
	svc := NewService(st, mock.NewGenerator(), 5)

	set, err := svc.Generate(context.Background(), st.issue.ID, "")
	require.NoError(t, err)
	assert.Len(t, set.Recommendations, 7)
}

// --- reasoning ---

func TestReasoning_AllSignals(t *testing.T) {
	issue := &models.Issue{Severity: models.SeverityHigh}
	customer := &models.Customer{VIP: true, TotalIssues: 12}
	conversations := make([]*models.Conversation, 6)
	recs := make([]models.Recommendation, 3)
	for i := range recs {
		recs[i].Confidence = 0.9
	}

	got := reasoning(issue, customer, conversations, recs)
	want := "VIP customer - enhanced service level. " +
		"Experienced customer - familiar with process. " +
		"High severity issue - urgent attention required. " +
		"Extended conversation - detailed context available. " +
		"High confidence recommendations based on similar cases."
	assert.Equal(t, want, got)
}

func TestReasoning_Fallback(t *testing.T) {
	issue := &models.Issue{Severity: models.SeverityLow}
	customer := &models.Customer{}

	got := reasoning(issue, customer, nil, nil)
	assert.Equal(t, "Standard support recommendations.", got)
}
