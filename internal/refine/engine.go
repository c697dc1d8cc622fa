package refine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ziadkadry99/promptforge/internal/credentials"
	"github.com/ziadkadry99/promptforge/internal/llm"
	"github.com/ziadkadry99/promptforge/internal/provider"
)

// CredentialSource resolves the active provider and API key. The engine
// only ever reads from it.
type CredentialSource interface {
	Active(ctx context.Context) (provider.Config, string, error)
}

// Options tunes the engine's model calls.
type Options struct {
	Temperature     float64
	MaxAnswerTokens int
	// ModelTimeout bounds each outbound model call. Zero means no bound
	// beyond the caller's context.
	ModelTimeout time.Duration
}

// Engine is the refinement orchestrator. Both operations are pure
// functions of their inputs plus one outbound model call; all conversation
// state is caller-supplied.
type Engine struct {
	creds  CredentialSource
	chat   llm.Completer
	logger *log.Logger
	opts   Options
}

// NewEngine creates a refinement engine.
func NewEngine(creds CredentialSource, chat llm.Completer, logger *log.Logger, opts Options) *Engine {
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if opts.MaxAnswerTokens == 0 {
		opts.MaxAnswerTokens = 2048
	}
	return &Engine{creds: creds, chat: chat, logger: logger, opts: opts}
}

// GenerateClarifyingQuestions assesses a prompt and produces up to three
// clarifying questions targeting its information gaps (Operation A).
// Returns credentials.ErrNotConfigured untouched when no provider is set
// up, so callers can route the user to setup rather than a generic error.
func (e *Engine) GenerateClarifyingQuestions(ctx context.Context, promptText, contextText, labelHint string) (*ClarificationResult, error) {
	if strings.TrimSpace(promptText) == "" {
		return nil, ErrEmptyPrompt
	}

	cfg, apiKey, err := e.creds.Active(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := e.withModelTimeout(ctx)
	defer cancel()

	content, err := e.chat.Complete(ctx, cfg, apiKey, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: clarifySystemPrompt},
			{Role: llm.RoleUser, Content: buildClarifyPrompt(promptText, contextText, labelHint)},
		},
		Temperature: e.opts.Temperature,
	})
	if err != nil {
		return nil, &ProviderError{Op: "clarification", Err: err}
	}

	result, err := parseClarification(content)
	if err != nil {
		return nil, &ProviderError{Op: "clarification", Err: err}
	}

	e.logger.Info("clarification assessed",
		"questions", len(result.Questions),
		"importance", result.ImportanceScore,
	)
	return result, nil
}

// GenerateFinalRefinedPrompt synthesizes one rewritten prompt from the
// original content, the label context, and the clarification transcript
// (Operation B). An empty transcript is valid and means "synthesize
// directly from the prompt and context".
func (e *Engine) GenerateFinalRefinedPrompt(ctx context.Context, promptText, contextText, labelHint string, transcript []llm.Message) (string, error) {
	if strings.TrimSpace(promptText) == "" {
		return "", ErrEmptyPrompt
	}
	for _, msg := range transcript {
		if msg.Role != llm.RoleUser && msg.Role != llm.RoleAssistant {
			return "", ErrBadTranscript
		}
	}

	cfg, apiKey, err := e.creds.Active(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := e.withModelTimeout(ctx)
	defer cancel()

	content, err := e.chat.Complete(ctx, cfg, apiKey, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: synthesizeSystemPrompt},
			{Role: llm.RoleUser, Content: buildSynthesizePrompt(promptText, contextText, labelHint, transcript)},
		},
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxAnswerTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return "", &ProviderError{Op: "synthesis", Err: ErrEmptyRefinement}
		}
		return "", &ProviderError{Op: "synthesis", Err: err}
	}

	refined := strings.TrimSpace(content)
	if refined == "" {
		return "", &ProviderError{Op: "synthesis", Err: ErrEmptyRefinement}
	}

	e.logger.Info("refinement synthesized", "answers", countAnswers(transcript))
	return refined, nil
}

func (e *Engine) withModelTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.ModelTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.opts.ModelTimeout)
}

// NotConfigured reports whether err means the user has not finished
// provider setup.
func NotConfigured(err error) bool {
	return errors.Is(err, credentials.ErrNotConfigured)
}

func countAnswers(transcript []llm.Message) int {
	n := 0
	for _, msg := range transcript {
		if msg.Role == llm.RoleUser {
			n++
		}
	}
	return n
}
