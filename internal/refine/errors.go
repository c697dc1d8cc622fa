package refine

import (
	"errors"
	"fmt"
)

// ErrEmptyPrompt indicates the caller passed empty prompt text. This is a
// caller bug, not something a retry can fix.
var ErrEmptyPrompt = errors.New("prompt text is empty")

// ErrBadTranscript indicates a transcript turn with an unknown role.
var ErrBadTranscript = errors.New("transcript contains a non user/assistant turn")

// ErrEmptyRefinement indicates the model returned blank text for a final
// refinement. Treated as a provider-layer failure.
var ErrEmptyRefinement = errors.New("model returned an empty refinement")

// ProviderError wraps any provider-layer failure surfaced by a refinement
// operation. The cause stays inspectable through errors.Is/As so the UI
// boundary can distinguish auth failures, timeouts, and the rest.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("refinement %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
