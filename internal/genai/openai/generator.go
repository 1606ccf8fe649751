// Package openai implements the text-generation provider on top of the
// OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/supportlabs/triagedesk/internal/config"
	"github.com/supportlabs/triagedesk/pkg/models"
)

// Generator calls the chat completions endpoint, asking for N alternative
// choices per request so one round trip yields all candidates.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	apiKey      string
}

func NewGenerator(cfg config.OpenAIConfig, timeout time.Duration) *Generator {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 300
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		timeout:     timeout,
		apiKey:      cfg.APIKey,
	}
}

func (g *Generator) Name() string { return "openai" }

func (g *Generator) Available() bool { return g.apiKey != "" }

func (g *Generator) Generate(ctx context.Context, req models.GenerateRequest) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	n := req.Candidates
	if n <= 0 {
		n = 1
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.maxTokens
	}
	temperature := g.temperature
	if req.Temperature != 0 {
		temperature = float32(req.Temperature)
	}

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		N:           n,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	texts := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

var _ models.Generator = (*Generator)(nil)
