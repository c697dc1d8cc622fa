package refine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/promptforge/internal/llm"
)

// State identifies where a clarification session is in its lifecycle.
type State string

const (
	StateInitializing   State = "initializing"
	StateAwaitingAnswer State = "awaiting_answer"
	StateSynthesizing   State = "synthesizing"
	StateCompleted      State = "completed"
	StateFailed         State = "failed"
	StateCancelled      State = "cancelled"
)

// Step is what the session hands back after Start, Answer, or Defer:
// either the next question to show, or the final refined text.
type Step struct {
	// Done is true once the refined text is available.
	Done        bool
	RefinedText string
	// Question is the next question when Done is false.
	Question string
	Index    int
	Total    int
	// Clarification is set on the Step returned by Start when questions
	// were generated.
	Clarification *ClarificationResult
}

// Session drives one clarification dialogue: it runs Operation A, walks
// the user through the questions one at a time, owns the transcript, and
// hands the completed transcript to Operation B. A session serves a single
// logical flow of control and is not safe for concurrent use.
type Session struct {
	engine      *Engine
	promptText  string
	contextText string
	labelHint   string

	state      State
	questions  []string
	index      int
	transcript []llm.Message
	refined    string
	err        error
}

// NewSession creates a session for one prompt. Nothing happens until Start.
func NewSession(engine *Engine, promptText, contextText, labelHint string) *Session {
	return &Session{
		engine:      engine,
		promptText:  promptText,
		contextText: contextText,
		labelHint:   labelHint,
		state:       StateInitializing,
	}
}

// Start runs Operation A. When the prompt is already specific enough it
// synthesizes immediately with an empty transcript and completes without
// any user interaction.
func (s *Session) Start(ctx context.Context) (*Step, error) {
	if s.state != StateInitializing {
		return nil, fmt.Errorf("session already started (state %s)", s.state)
	}

	result, err := s.engine.GenerateClarifyingQuestions(ctx, s.promptText, s.contextText, s.labelHint)
	if err != nil {
		return nil, s.fail(err)
	}

	if len(result.Questions) == 0 {
		return s.synthesize(ctx)
	}

	s.questions = result.Questions
	s.transcript = append(s.transcript, llm.Message{Role: llm.RoleAssistant, Content: s.questions[0]})
	s.state = StateAwaitingAnswer
	return &Step{
		Question:      s.questions[0],
		Index:         0,
		Total:         len(s.questions),
		Clarification: result,
	}, nil
}

// Answer records a non-empty answer for the current question and advances.
func (s *Session) Answer(ctx context.Context, text string) (*Step, error) {
	if s.state != StateAwaitingAnswer {
		return nil, fmt.Errorf("not awaiting an answer (state %s)", s.state)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("answer must not be empty; use Defer to skip")
	}
	s.transcript = append(s.transcript, llm.Message{Role: llm.RoleUser, Content: strings.TrimSpace(text)})
	return s.advance(ctx)
}

// Defer skips the current question without an answer and advances. The
// question stays in the transcript; it simply has no user turn after it.
func (s *Session) Defer(ctx context.Context) (*Step, error) {
	if s.state != StateAwaitingAnswer {
		return nil, fmt.Errorf("not awaiting an answer (state %s)", s.state)
	}
	return s.advance(ctx)
}

func (s *Session) advance(ctx context.Context) (*Step, error) {
	if s.index < len(s.questions)-1 {
		s.index++
		s.transcript = append(s.transcript, llm.Message{Role: llm.RoleAssistant, Content: s.questions[s.index]})
		return &Step{
			Question: s.questions[s.index],
			Index:    s.index,
			Total:    len(s.questions),
		}, nil
	}
	return s.synthesize(ctx)
}

func (s *Session) synthesize(ctx context.Context) (*Step, error) {
	s.state = StateSynthesizing
	refined, err := s.engine.GenerateFinalRefinedPrompt(ctx, s.promptText, s.contextText, s.labelHint, s.Transcript())
	if err != nil {
		return nil, s.fail(err)
	}
	s.refined = refined
	s.state = StateCompleted
	return &Step{Done: true, RefinedText: refined}, nil
}

func (s *Session) fail(err error) error {
	s.state = StateFailed
	s.err = err
	return err
}

// CancelOutcome tells the caller what to do after abandonment.
type CancelOutcome int

const (
	// CloseFlow: no question was ever shown, so there is nothing to fall
	// back to; the caller should close the whole flow.
	CloseFlow CancelOutcome = iota
	// ReturnToEditor: at least one question was shown; the caller returns
	// to the prior editing context without synthesizing.
	ReturnToEditor
	// AlreadyFinished: the session was terminal before Cancel was called.
	AlreadyFinished
)

// Cancel abandons the session from any non-terminal state.
func (s *Session) Cancel() CancelOutcome {
	switch s.state {
	case StateCompleted, StateFailed, StateCancelled:
		return AlreadyFinished
	case StateInitializing:
		s.state = StateCancelled
		return CloseFlow
	default:
		s.state = StateCancelled
		return ReturnToEditor
	}
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// RefinedText returns the synthesized prompt once the session completed.
func (s *Session) RefinedText() string { return s.refined }

// Err returns the failure cause once the session failed.
func (s *Session) Err() error { return s.err }

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []llm.Message {
	out := make([]llm.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}
