// Package genai selects and constructs the text-generation provider used by
// the recommendation synthesizer.
package genai

import (
	"context"
	"fmt"

	"github.com/supportlabs/triagedesk/internal/config"
	"github.com/supportlabs/triagedesk/internal/genai/mock"
	"github.com/supportlabs/triagedesk/internal/genai/openai"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// NewGenerator constructs the generator named by config. Called once at
// server startup. Provider "none" yields a disabled generator so the rest
// of the pipeline runs without recommendations.
func NewGenerator(cfg config.GenConfig) (models.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewGenerator(cfg.OpenAI, cfg.Timeout), nil
	case "mock":
		return mock.NewGenerator(), nil
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q: must be one of none, openai, mock", cfg.Provider)
	}
}

// Disabled is a generator that never serves. Every Generate call fails with
// ErrUnavailable; callers should check Available first.
type Disabled struct{}

func (Disabled) Name() string    { return "none" }
func (Disabled) Available() bool { return false }

func (Disabled) Generate(_ context.Context, _ models.GenerateRequest) ([]string, error) {
	return nil, ErrUnavailable
}

var _ models.Generator = Disabled{}
