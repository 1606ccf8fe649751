// Package mock provides a canned generator for tests and local development.
package mock

import (
	"context"
	"fmt"

	"github.com/supportlabs/triagedesk/pkg/models"
)

// MockGenerator satisfies models.Generator for testing.
type MockGenerator struct {
	Name_        string
	Unavailable  bool
	GenerateFunc func(ctx context.Context, req models.GenerateRequest) ([]string, error)
	Requests     []models.GenerateRequest
}

func (m *MockGenerator) Name() string { return m.Name_ }

func (m *MockGenerator) Available() bool { return !m.Unavailable }

func (m *MockGenerator) Generate(ctx context.Context, req models.GenerateRequest) ([]string, error) {
	m.Requests = append(m.Requests, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return nil, nil
}

// NewGenerator returns a MockGenerator that echoes numbered candidates.
func NewGenerator() *MockGenerator {
	return &MockGenerator{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, req models.GenerateRequest) ([]string, error) {
			n := req.Candidates
			if n <= 0 {
				n = 1
			}
			texts := make([]string, 0, n)
			for i := 0; i < n; i++ {
				texts = append(texts, fmt.Sprintf("Mock candidate %d for testing", i+1))
			}
			return texts, nil
		},
	}
}

// NewFailingGenerator returns a MockGenerator that always returns the given error.
func NewFailingGenerator(err error) *MockGenerator {
	return &MockGenerator{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ models.GenerateRequest) ([]string, error) {
			return nil, err
		},
	}
}

// Compile-time check that MockGenerator implements Generator.
var _ models.Generator = (*MockGenerator)(nil)
