package refine

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/promptforge/internal/llm"
)

const threeQuestionsJSON = `{
	"importance_score": 4,
	"missing": ["topic", "audience", "length"],
	"questions": ["What topic?", "Who is the audience?", "How long should it be?"]
}`

func TestSessionFastPath(t *testing.T) {
	chat := &mockChat{Responses: []string{
		`{"importance_score": 1, "missing": [], "questions": []}`,
		"refined prompt",
	}}
	session := NewSession(testEngine(chat, true), "Write a blog post", "", "")

	step, err := session.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !step.Done {
		t.Fatal("expected completion without questions")
	}
	if step.RefinedText != "refined prompt" {
		t.Errorf("refined = %q", step.RefinedText)
	}
	if session.State() != StateCompleted {
		t.Errorf("state = %s", session.State())
	}
	if len(session.Transcript()) != 0 {
		t.Error("fast path should leave an empty transcript")
	}
}

func TestSessionAnswerAllQuestions(t *testing.T) {
	chat := &mockChat{Responses: []string{threeQuestionsJSON, "refined prompt"}}
	session := NewSession(testEngine(chat, true), "Write a blog post", "", "")
	ctx := context.Background()

	step, err := session.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if step.Done || step.Question != "What topic?" || step.Total != 3 {
		t.Fatalf("first step = %+v", step)
	}
	if step.Clarification == nil || step.Clarification.ImportanceScore != 4 {
		t.Error("Start should surface the clarification result")
	}

	answers := []string{"Composting", "Beginners", "500 words"}
	for i, answer := range answers {
		step, err = session.Answer(ctx, answer)
		if err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
		if i < len(answers)-1 {
			if step.Done {
				t.Fatalf("completed early at answer %d", i)
			}
			if step.Index != i+1 {
				t.Errorf("step index = %d, want %d", step.Index, i+1)
			}
		}
	}
	if !step.Done || step.RefinedText != "refined prompt" {
		t.Fatalf("final step = %+v", step)
	}
	if session.State() != StateCompleted {
		t.Errorf("state = %s", session.State())
	}

	// Transcript shape: one assistant turn per question, each followed by
	// exactly one user turn, in order.
	transcript := session.Transcript()
	if len(transcript) != 6 {
		t.Fatalf("transcript length = %d", len(transcript))
	}
	for i := 0; i < 6; i += 2 {
		if transcript[i].Role != llm.RoleAssistant {
			t.Errorf("turn %d role = %s", i, transcript[i].Role)
		}
		if transcript[i+1].Role != llm.RoleUser {
			t.Errorf("turn %d role = %s", i+1, transcript[i+1].Role)
		}
	}
	if transcript[1].Content != "Composting" || transcript[5].Content != "500 words" {
		t.Error("answers out of order in transcript")
	}
}

func TestSessionDeferAllStillCompletes(t *testing.T) {
	chat := &mockChat{Responses: []string{threeQuestionsJSON, "refined anyway"}}
	session := NewSession(testEngine(chat, true), "Write a blog post", "", "")
	ctx := context.Background()

	step, err := session.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for !step.Done {
		step, err = session.Defer(ctx)
		if err != nil {
			t.Fatalf("Defer: %v", err)
		}
	}
	if step.RefinedText != "refined anyway" {
		t.Errorf("refined = %q", step.RefinedText)
	}

	// Deferred questions stay in the transcript with no user turn.
	transcript := session.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("transcript length = %d", len(transcript))
	}
	for i, msg := range transcript {
		if msg.Role != llm.RoleAssistant {
			t.Errorf("turn %d role = %s", i, msg.Role)
		}
	}
}

func TestSessionMixedAnswersAndDefers(t *testing.T) {
	chat := &mockChat{Responses: []string{threeQuestionsJSON, "refined"}}
	session := NewSession(testEngine(chat, true), "Write a blog post", "", "")
	ctx := context.Background()

	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := session.Answer(ctx, "Composting"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if _, err := session.Defer(ctx); err != nil {
		t.Fatalf("Defer: %v", err)
	}
	step, err := session.Answer(ctx, "500 words")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !step.Done {
		t.Fatal("expected completion after last answer")
	}

	roles := []llm.Role{}
	for _, msg := range session.Transcript() {
		roles = append(roles, msg.Role)
	}
	want := []llm.Role{llm.RoleAssistant, llm.RoleUser, llm.RoleAssistant, llm.RoleAssistant, llm.RoleUser}
	if len(roles) != len(want) {
		t.Fatalf("transcript roles = %v", roles)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("transcript roles = %v, want %v", roles, want)
		}
	}
}

func TestSessionRejectsEmptyAnswer(t *testing.T) {
	chat := &mockChat{Responses: []string{threeQuestionsJSON}}
	session := NewSession(testEngine(chat, true), "Write a blog post", "", "")
	ctx := context.Background()

	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := session.Answer(ctx, "   "); err == nil {
		t.Fatal("expected error for blank answer")
	}
	if session.State() != StateAwaitingAnswer {
		t.Errorf("state = %s, want %s", session.State(), StateAwaitingAnswer)
	}
	if len(session.Transcript()) != 1 {
		t.Error("blank answer must not be recorded")
	}
}

func TestSessionStartFailurePropagates(t *testing.T) {
	cause := errors.New("boom")
	chat := &mockChat{Err: cause}
	session := NewSession(testEngine(chat, true), "Write a blog post", "", "")

	_, err := session.Start(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if session.State() != StateFailed {
		t.Errorf("state = %s", session.State())
	}
	if !errors.Is(session.Err(), cause) {
		t.Errorf("Err() = %v", session.Err())
	}
}

func TestSessionCancelOutcomes(t *testing.T) {
	ctx := context.Background()

	// Before any question was shown.
	session := NewSession(testEngine(&mockChat{}, true), "p", "", "")
	if got := session.Cancel(); got != CloseFlow {
		t.Errorf("initializing cancel = %v, want CloseFlow", got)
	}
	if session.State() != StateCancelled {
		t.Errorf("state = %s", session.State())
	}

	// After a question was shown.
	chat := &mockChat{Responses: []string{threeQuestionsJSON}}
	session = NewSession(testEngine(chat, true), "p", "", "")
	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := session.Cancel(); got != ReturnToEditor {
		t.Errorf("mid-dialogue cancel = %v, want ReturnToEditor", got)
	}

	// After completion.
	chat = &mockChat{Responses: []string{
		`{"importance_score": 1, "missing": [], "questions": []}`,
		"refined",
	}}
	session = NewSession(testEngine(chat, true), "p", "", "")
	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := session.Cancel(); got != AlreadyFinished {
		t.Errorf("post-completion cancel = %v, want AlreadyFinished", got)
	}
	if session.State() != StateCompleted {
		t.Error("cancel after completion must not change state")
	}
}

func TestSessionCannotRestartOrAnswerTerminal(t *testing.T) {
	chat := &mockChat{Responses: []string{
		`{"importance_score": 1, "missing": [], "questions": []}`,
		"refined",
	}}
	session := NewSession(testEngine(chat, true), "p", "", "")
	ctx := context.Background()

	if _, err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := session.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	if _, err := session.Answer(ctx, "text"); err == nil {
		t.Error("Answer on a completed session should fail")
	}
	if _, err := session.Defer(ctx); err == nil {
		t.Error("Defer on a completed session should fail")
	}
}
