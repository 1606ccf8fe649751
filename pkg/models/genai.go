package models

import "context"

// GenerateRequest is one call to the text-generation provider. Candidates
// asks for that many alternative completions of the same prompt.
type GenerateRequest struct {
	System      string
	Prompt      string
	Candidates  int
	MaxTokens   int
	Temperature float64
}

// Generator produces candidate message texts from a prompt. Implementations
// live under internal/genai. Available reports whether the provider can
// serve requests at all; callers degrade gracefully when it returns false.
type Generator interface {
	Name() string
	Available() bool
	Generate(ctx context.Context, req GenerateRequest) ([]string, error)
}
