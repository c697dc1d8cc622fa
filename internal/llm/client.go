package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ziadkadry99/promptforge/internal/provider"
)

// Completer is the provider-agnostic chat interface consumed by the rest of
// the system. Client is the production implementation; tests substitute
// their own.
type Completer interface {
	Complete(ctx context.Context, cfg provider.Config, apiKey string, req CompletionRequest) (string, error)
}

// Client normalizes the wire formats of all supported providers behind a
// single request/response shape. Callers never see provider-specific
// payloads; they hand over messages and get back plain text.
type Client struct {
	http   *http.Client
	logger *log.Logger
}

// NewClient creates a chat client. The http.Client carries no timeout of
// its own; callers bound each call through the context.
func NewClient(logger *log.Logger) *Client {
	return &Client{
		http:   &http.Client{},
		logger: logger,
	}
}

// Complete sends one chat completion round trip to the given provider and
// returns the response text. The API key is taken per call so concurrent
// sessions can use different credentials against the same client.
func (c *Client) Complete(ctx context.Context, cfg provider.Config, apiKey string, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = cfg.DefaultModel
	}
	req.Model = model

	c.logger.Info("chat request",
		"provider", cfg.ID,
		"model", model,
		"temperature", req.Temperature,
		"messages", len(req.Messages),
	)
	for i, msg := range req.Messages {
		c.logger.Debug("chat message", "index", i, "role", msg.Role, "content", msg.Content)
	}

	var (
		text string
		err  error
	)
	switch cfg.ID {
	case provider.OpenAI:
		text, err = c.completeOpenAI(ctx, cfg, apiKey, req)
	case provider.Anthropic:
		text, err = c.completeAnthropic(ctx, cfg, apiKey, req)
	case provider.Google:
		text, err = c.completeGoogle(ctx, cfg, apiKey, req)
	default:
		panic(fmt.Sprintf("llm: unknown provider %q", cfg.ID))
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", cfg.ID, ErrEmptyResponse)
	}

	c.logger.Info("chat response", "provider", cfg.ID, "preview", preview(text, 120))
	return text, nil
}

// preview truncates s for log output, cutting on a rune boundary.
func preview(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
