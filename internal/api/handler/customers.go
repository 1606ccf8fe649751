package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supportlabs/triagedesk/internal/api/response"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// CustomerStore defines the store surface the customer handler depends on.
// Provisioning failures propagate; there is no safe default identity.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
}

// NewCreateCustomerHandler returns the handler for POST /api/v1/customers.
func NewCreateCustomerHandler(st CustomerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email   string  `json:"email"`
			Name    string  `json:"name"`
			Company *string `json:"company"`
			VIP     bool    `json:"vip"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "email must be a valid address", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		now := time.Now().UTC()
		customer := &models.Customer{
			ID:        uuid.New(),
			Email:     req.Email,
			Name:      req.Name,
			Company:   req.Company,
			VIP:       req.VIP,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := st.CreateCustomer(r.Context(), customer); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "DUPLICATE_EMAIL",
					"A customer with this email already exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		response.Created(w, customer)
	}
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
