package refine

// maxQuestions bounds the clarification dialogue so users actually finish
// it, no matter how many questions the model proposes.
const maxQuestions = 3

// ClarificationResult is the outcome of assessing a prompt for ambiguity.
// Questions is empty only when the prompt is judged specific enough to act
// on as-is; callers then synthesize immediately with an empty transcript.
type ClarificationResult struct {
	Questions []string `json:"questions"`
	Missing   []string `json:"missing"`
	// ImportanceScore (1-5) is the model's read of how high-stakes the
	// prompt is, derived from its content. Informational only; it never
	// gates the question count.
	ImportanceScore int `json:"importanceScore"`
}
