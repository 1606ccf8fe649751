package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/internal/api/response"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// ConversationStore defines the store surface the conversation handlers
// depend on.
type ConversationStore interface {
	GetIssue(ctx context.Context, issueID uuid.UUID) (*models.Issue, error)
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	ListConversations(ctx context.Context, issueID uuid.UUID) ([]*models.Conversation, error)
}

// NewAddConversationHandler returns the handler for
// POST /api/v1/issues/{issueID}/conversations.
func NewAddConversationHandler(st ConversationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, err := uuid.Parse(chi.URLParam(r, "issueID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "issueID must be a valid UUID", nil)
			return
		}

		var req struct {
			Message    string  `json:"message"`
			SenderType string  `json:"sender_type"`
			SenderID   *string `json:"sender_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Message == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "message is required", nil)
			return
		}
		if req.SenderType != models.SenderCustomer && req.SenderType != models.SenderSupport {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"sender_type must be one of CUSTOMER, SUPPORT", nil)
			return
		}

		if _, err := st.GetIssue(r.Context(), issueID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		conv := &models.Conversation{
			ID:         uuid.New(),
			IssueID:    issueID,
			Message:    req.Message,
			SenderType: req.SenderType,
			SenderID:   req.SenderID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := st.CreateConversation(r.Context(), conv); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.Created(w, conv)
	}
}

// NewListConversationsHandler returns the handler for
// GET /api/v1/issues/{issueID}/conversations.
func NewListConversationsHandler(st ConversationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, err := uuid.Parse(chi.URLParam(r, "issueID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "issueID must be a valid UUID", nil)
			return
		}

		convs, err := st.ListConversations(r.Context(), issueID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.JSON(w, convs)
	}
}
