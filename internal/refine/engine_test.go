package refine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ziadkadry99/promptforge/internal/credentials"
	"github.com/ziadkadry99/promptforge/internal/llm"
	"github.com/ziadkadry99/promptforge/internal/provider"
)

// mockChat is a scripted chat client double. Each Complete call consumes
// the next response in order.
type mockChat struct {
	Requests  []llm.CompletionRequest
	Responses []string
	Err       error
}

func (m *mockChat) Complete(ctx context.Context, cfg provider.Config, apiKey string, req llm.CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", fmt.Errorf("mock: no scripted response left")
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return resp, nil
}

// mockCreds resolves a fixed provider, or reports not-configured.
type mockCreds struct {
	configured bool
}

func (m *mockCreds) Active(ctx context.Context) (provider.Config, string, error) {
	if !m.configured {
		return provider.Config{}, "", credentials.ErrNotConfigured
	}
	return provider.Lookup(provider.Anthropic), "sk-test", nil
}

func testEngine(chat llm.Completer, configured bool) *Engine {
	return NewEngine(&mockCreds{configured: configured}, chat, log.New(io.Discard), Options{})
}

const clarifyJSON = `{
  "importance_score": 4,
  "missing": ["topic", "audience"],
  "questions": ["What topic should the post cover?", "Who is the target audience?"]
}`

func TestQuestionsEmptyPromptRejected(t *testing.T) {
	chat := &mockChat{}
	engine := testEngine(chat, true)

	_, err := engine.GenerateClarifyingQuestions(context.Background(), "   ", "", "")
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if len(chat.Requests) != 0 {
		t.Error("no model call should be made for invalid input")
	}
}

func TestNotConfiguredDistinctFromProviderError(t *testing.T) {
	chat := &mockChat{}
	engine := testEngine(chat, false)
	ctx := context.Background()

	_, err := engine.GenerateClarifyingQuestions(ctx, "Write a blog post", "", "")
	if !NotConfigured(err) {
		t.Fatalf("operation A: expected not-configured, got %v", err)
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		t.Error("not-configured must not be wrapped as a provider error")
	}

	_, err = engine.GenerateFinalRefinedPrompt(ctx, "Write a blog post", "", "", nil)
	if !NotConfigured(err) {
		t.Fatalf("operation B: expected not-configured, got %v", err)
	}
	if len(chat.Requests) != 0 {
		t.Error("no model call should be made without credentials")
	}
}

func TestQuestionsParsesModelOutput(t *testing.T) {
	chat := &mockChat{Responses: []string{clarifyJSON}}
	engine := testEngine(chat, true)

	result, err := engine.GenerateClarifyingQuestions(context.Background(), "Write a blog post", "", "")
	if err != nil {
		t.Fatalf("GenerateClarifyingQuestions: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("questions = %v", result.Questions)
	}
	if result.ImportanceScore != 4 {
		t.Errorf("importance = %d", result.ImportanceScore)
	}
	if len(result.Missing) != 2 || result.Missing[0] != "topic" {
		t.Errorf("missing = %v", result.Missing)
	}

	// The request carries a system instruction plus one user turn.
	req := chat.Requests[0]
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleSystem {
		t.Error("first message should be the system instruction")
	}
	if !strings.Contains(req.Messages[1].Content, "Write a blog post") {
		t.Error("user turn missing the prompt text")
	}
}

func TestQuestionsTruncatedToThree(t *testing.T) {
	chat := &mockChat{Responses: []string{`{
		"importance_score": 3,
		"missing": ["a", "b", "c", "d", "e"],
		"questions": ["q1?", "q2?", "q3?", "q4?", "q5?"]
	}`}}
	engine := testEngine(chat, true)

	result, err := engine.GenerateClarifyingQuestions(context.Background(), "prompt", "", "")
	if err != nil {
		t.Fatalf("GenerateClarifyingQuestions: %v", err)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(result.Questions))
	}
	// Truncation is deterministic and order-preserving.
	for i, want := range []string{"q1?", "q2?", "q3?"} {
		if result.Questions[i] != want {
			t.Errorf("questions[%d] = %q, want %q", i, result.Questions[i], want)
		}
	}
}

func TestQuestionsImportanceClamped(t *testing.T) {
	for _, tt := range []struct {
		raw  int
		want int
	}{{0, 1}, {-2, 1}, {3, 3}, {9, 5}} {
		chat := &mockChat{Responses: []string{fmt.Sprintf(
			`{"importance_score": %d, "missing": [], "questions": []}`, tt.raw,
		)}}
		engine := testEngine(chat, true)
		result, err := engine.GenerateClarifyingQuestions(context.Background(), "prompt", "", "")
		if err != nil {
			t.Fatalf("raw %d: %v", tt.raw, err)
		}
		if result.ImportanceScore != tt.want {
			t.Errorf("raw %d: importance = %d, want %d", tt.raw, result.ImportanceScore, tt.want)
		}
	}
}

func TestLowImportanceStillHonorsQuestions(t *testing.T) {
	chat := &mockChat{Responses: []string{`{
		"importance_score": 1,
		"missing": ["deadline"],
		"questions": ["When is this due?"]
	}`}}
	engine := testEngine(chat, true)

	result, err := engine.GenerateClarifyingQuestions(context.Background(), "prompt", "", "")
	if err != nil {
		t.Fatalf("GenerateClarifyingQuestions: %v", err)
	}
	if len(result.Questions) != 1 {
		t.Error("low importance must not suppress proposed questions")
	}
}

func TestQuestionsToleratesMarkdownFences(t *testing.T) {
	chat := &mockChat{Responses: []string{"```json\n" + clarifyJSON + "\n```"}}
	engine := testEngine(chat, true)

	result, err := engine.GenerateClarifyingQuestions(context.Background(), "prompt", "", "")
	if err != nil {
		t.Fatalf("GenerateClarifyingQuestions: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Errorf("questions = %v", result.Questions)
	}
}

func TestQuestionsUnparseableOutputIsProviderError(t *testing.T) {
	chat := &mockChat{Responses: []string{"I cannot help with that."}}
	engine := testEngine(chat, true)

	_, err := engine.GenerateClarifyingQuestions(context.Background(), "prompt", "", "")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
}

func TestAuthErrorCausePreserved(t *testing.T) {
	cause := &llm.AuthError{Provider: provider.Anthropic, StatusCode: 401}
	chat := &mockChat{Err: cause}
	engine := testEngine(chat, true)

	_, err := engine.GenerateClarifyingQuestions(context.Background(), "prompt", "", "")

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	var authErr *llm.AuthError
	if !errors.As(err, &authErr) {
		t.Fatal("auth cause not inspectable through the wrapper")
	}
	if authErr.StatusCode != 401 {
		t.Errorf("status = %d", authErr.StatusCode)
	}
}

func TestZeroQuestionsThenDirectSynthesis(t *testing.T) {
	chat := &mockChat{Responses: []string{
		`{"importance_score": 2, "missing": [], "questions": []}`,
		"  Write a 500-word blog post about composting for beginners.  ",
	}}
	engine := testEngine(chat, true)
	ctx := context.Background()

	result, err := engine.GenerateClarifyingQuestions(ctx,
		"Write a 500-word blog post about composting for beginners, casual tone, include 3 tips", "", "")
	if err != nil {
		t.Fatalf("GenerateClarifyingQuestions: %v", err)
	}
	if len(result.Questions) != 0 {
		t.Fatalf("expected 0 questions, got %v", result.Questions)
	}

	refined, err := engine.GenerateFinalRefinedPrompt(ctx,
		"Write a 500-word blog post about composting for beginners, casual tone, include 3 tips", "", "", nil)
	if err != nil {
		t.Fatalf("GenerateFinalRefinedPrompt: %v", err)
	}
	if refined == "" {
		t.Fatal("expected non-empty refined text")
	}
	if strings.HasPrefix(refined, " ") || strings.HasSuffix(refined, " ") {
		t.Error("refined text should be trimmed")
	}
}

func TestFinalRendersTranscriptInOrder(t *testing.T) {
	chat := &mockChat{Responses: []string{"refined"}}
	engine := testEngine(chat, true)

	transcript := []llm.Message{
		{Role: llm.RoleAssistant, Content: "What topic?"},
		{Role: llm.RoleUser, Content: "Composting"},
		{Role: llm.RoleAssistant, Content: "Who is the audience?"},
	}
	_, err := engine.GenerateFinalRefinedPrompt(context.Background(), "Write a blog post", "writing: blog things", "writing", transcript)
	if err != nil {
		t.Fatalf("GenerateFinalRefinedPrompt: %v", err)
	}

	userTurn := chat.Requests[0].Messages[1].Content
	topicIdx := strings.Index(userTurn, "What topic?")
	answerIdx := strings.Index(userTurn, "Composting")
	audienceIdx := strings.Index(userTurn, "Who is the audience?")
	if topicIdx < 0 || answerIdx < 0 || audienceIdx < 0 {
		t.Fatalf("transcript not rendered: %q", userTurn)
	}
	if !(topicIdx < answerIdx && answerIdx < audienceIdx) {
		t.Error("question/answer pairs out of order")
	}
	// The deferred last question is rendered unanswered, not dropped.
	if !strings.Contains(userTurn, "(no answer provided)") {
		t.Error("deferred question should be marked unanswered")
	}
	if !strings.Contains(userTurn, "writing: blog things") {
		t.Error("label context missing from synthesis request")
	}
}

func TestFinalBadTranscriptRejected(t *testing.T) {
	chat := &mockChat{}
	engine := testEngine(chat, true)

	_, err := engine.GenerateFinalRefinedPrompt(context.Background(), "prompt", "", "", []llm.Message{
		{Role: llm.RoleSystem, Content: "sneaky"},
	})
	if !errors.Is(err, ErrBadTranscript) {
		t.Fatalf("expected ErrBadTranscript, got %v", err)
	}
	if len(chat.Requests) != 0 {
		t.Error("no model call should be made for invalid transcript")
	}
}

func TestFinalBlankResultIsEmptyRefinement(t *testing.T) {
	chat := &mockChat{Responses: []string{"   \n  "}}
	engine := testEngine(chat, true)

	_, err := engine.GenerateFinalRefinedPrompt(context.Background(), "prompt", "", "", nil)
	if !errors.Is(err, ErrEmptyRefinement) {
		t.Fatalf("expected ErrEmptyRefinement, got %v", err)
	}
}

func TestFinalEmptyResponseMapsToEmptyRefinement(t *testing.T) {
	chat := &mockChat{Err: fmt.Errorf("anthropic: %w", llm.ErrEmptyResponse)}
	engine := testEngine(chat, true)

	_, err := engine.GenerateFinalRefinedPrompt(context.Background(), "prompt", "", "", nil)
	if !errors.Is(err, ErrEmptyRefinement) {
		t.Fatalf("expected ErrEmptyRefinement, got %v", err)
	}
}
