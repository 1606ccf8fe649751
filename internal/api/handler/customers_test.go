package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportlabs/triagedesk/internal/store"
	"github.com/supportlabs/triagedesk/pkg/models"
)

type mockCustomerStore struct {
	createErr error
	created   *models.Customer
}

func (m *mockCustomerStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = customer
	return nil
}

func TestCreateCustomerHandler_Success(t *testing.T) {
	st := &mockCustomerStore{}

	body := map[string]any{
		"email":   "ops@acme.example",
		"name":    "Acme Operations",
		"company": "Acme Corp",
		"vip":     true,
	}
	rec := httptest.NewRecorder()
	NewCreateCustomerHandler(st)(rec, jsonReq(t, http.MethodPost, "/api/v1/customers", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, st.created)
	assert.Equal(t, "ops@acme.example", st.created.Email)
	assert.True(t, st.created.VIP)
	require.NotNil(t, st.created.Company)
	assert.Equal(t, "Acme Corp", *st.created.Company)

	data := parseData(t, rec)
	assert.Equal(t, st.created.ID.String(), data["id"])
}

func TestCreateCustomerHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"name": "Acme"}},
		{"invalid email", map[string]any{"email": "not-an-address", "name": "Acme"}},
		{"missing name", map[string]any{"email": "ops@acme.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockCustomerStore{}
			rec := httptest.NewRecorder()
			NewCreateCustomerHandler(st)(rec, jsonReq(t, http.MethodPost, "/api/v1/customers", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REQUEST", parseErrCode(t, rec))
			assert.Nil(t, st.created)
		})
	}
}

func TestCreateCustomerHandler_DuplicateEmail(t *testing.T) {
	st := &mockCustomerStore{createErr: store.ErrDuplicateKey}

	body := map[string]any{"email": "ops@acme.example", "name": "Acme"}
	rec := httptest.NewRecorder()
	NewCreateCustomerHandler(st)(rec, jsonReq(t, http.MethodPost, "/api/v1/customers", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", parseErrCode(t, rec))
}

func TestCreateCustomerHandler_StoreError(t *testing.T) {
	st := &mockCustomerStore{createErr: errors.New("connection refused")}

	body := map[string]any{"email": "ops@acme.example", "name": "Acme"}
	rec := httptest.NewRecorder()
	NewCreateCustomerHandler(st)(rec, jsonReq(t, http.MethodPost, "/api/v1/customers", body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
