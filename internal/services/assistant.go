package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash"
	assistantTimeout   = 30 * time.Second
	emptyReply         = "Couldn't process request."
)

// TextGenerator produces a completion for a single prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ TextGenerator = (*GeminiGenerator)(nil)

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return resp.Text(), nil
}

// CookingAssistant answers chat prompts. A nil generator means the assistant
// is not configured and every call fails with ErrServiceDisabled.
type CookingAssistant struct {
	gen    TextGenerator
	logger *slog.Logger
}

func NewCookingAssistant(gen TextGenerator, logger *slog.Logger) *CookingAssistant {
	return &CookingAssistant{gen: gen, logger: logger}
}

func (a *CookingAssistant) Enabled() bool {
	return a != nil && a.gen != nil
}

func (a *CookingAssistant) Chat(ctx context.Context, prompt string) (string, error) {
	if !a.Enabled() {
		return "", ErrServiceDisabled
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, assistantTimeout)
	defer cancel()

	reply, err := a.gen.GenerateText(ctx, prompt)
	if err != nil {
		a.logger.Error("assistant request failed", "error", err)
		return "", unexpected("Error fetching AI response", err)
	}
	if strings.TrimSpace(reply) == "" {
		return emptyReply, nil
	}
	return reply, nil
}
