package refine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/promptforge/internal/llm"
)

const clarifySystemPrompt = `You are a prompt refinement assistant. The user will show you a prompt they intend to send to an AI model, possibly with category context. Your job is to decide whether the prompt needs clarification before it can produce a high-quality response.

You MUST respond with valid JSON matching this schema:
{
  "importance_score": 1-5,
  "missing": ["short name of each information gap"],
  "questions": ["one direct, answerable question per gap"]
}

Rules:
- Judge importance_score (1 = throwaway, 5 = high-stakes) from the prompt's own content only. Never infer importance from the category name; categories are user-chosen labels, not reliability signals.
- Identify at most 3 concrete pieces of missing information that would materially change the quality of a response.
- Phrase each one as a direct question the user can answer in a sentence.
- If the prompt is already specific enough to act on as-is, return an empty questions array.
- Keep "missing" and "questions" aligned: missing[i] names the gap that questions[i] addresses.`

const synthesizeSystemPrompt = `You are a prompt refinement assistant. Rewrite the user's prompt into a single improved prompt that incorporates the original content, the category context, and every clarification answer provided.

Rules:
- Preserve the user's original intent and voice; refine, do not replace wholesale.
- Fold each answered clarification into the prompt naturally, in the order given.
- Ignore questions that were left unanswered rather than inventing answers.
- Respond with the rewritten prompt text only. No preamble, no commentary, no markdown fences.`

// buildClarifyPrompt renders the user turn for Operation A.
func buildClarifyPrompt(promptText, contextText, labelHint string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Prompt\n%s\n", promptText)

	if contextText != "" {
		fmt.Fprintf(&b, "\n## Category Context\n%s\n", contextText)
	}
	if labelHint != "" {
		fmt.Fprintf(&b, "\n## Category\n%s\n", labelHint)
	}

	b.WriteString("\nAssess this prompt and respond with the JSON described in your instructions.")
	return b.String()
}

// buildSynthesizePrompt renders the user turn for Operation B, folding the
// clarification transcript in as ordered question/answer pairs. A question
// with no following user turn was deferred and is rendered unanswered.
func buildSynthesizePrompt(promptText, contextText, labelHint string, transcript []llm.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Original Prompt\n%s\n", promptText)

	if contextText != "" {
		fmt.Fprintf(&b, "\n## Category Context\n%s\n", contextText)
	}
	if labelHint != "" {
		fmt.Fprintf(&b, "\n## Category\n%s\n", labelHint)
	}

	if len(transcript) > 0 {
		b.WriteString("\n## Clarifications\n")
		for i := 0; i < len(transcript); i++ {
			msg := transcript[i]
			if msg.Role != llm.RoleAssistant {
				continue
			}
			fmt.Fprintf(&b, "Q: %s\n", msg.Content)
			if i+1 < len(transcript) && transcript[i+1].Role == llm.RoleUser {
				fmt.Fprintf(&b, "A: %s\n", transcript[i+1].Content)
				i++
			} else {
				b.WriteString("A: (no answer provided)\n")
			}
		}
	}

	b.WriteString("\nProduce the single rewritten prompt now.")
	return b.String()
}

// rawClarification mirrors the JSON shape requested from the model.
type rawClarification struct {
	ImportanceScore int      `json:"importance_score"`
	Missing         []string `json:"missing"`
	Questions       []string `json:"questions"`
}

// parseClarification extracts the structured assessment from model output,
// tolerating markdown fences around the JSON. The question count is
// truncated to maxQuestions deterministically, preserving order.
func parseClarification(content string) (*ClarificationResult, error) {
	jsonStr := content
	if idx := strings.Index(jsonStr, "{"); idx >= 0 {
		jsonStr = jsonStr[idx:]
	}
	if idx := strings.LastIndex(jsonStr, "}"); idx >= 0 {
		jsonStr = jsonStr[:idx+1]
	}

	var raw rawClarification
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("parsing clarification response: %w", err)
	}

	result := &ClarificationResult{
		ImportanceScore: clampImportance(raw.ImportanceScore),
	}
	for _, q := range raw.Questions {
		if strings.TrimSpace(q) == "" {
			continue
		}
		result.Questions = append(result.Questions, strings.TrimSpace(q))
		if len(result.Questions) == maxQuestions {
			break
		}
	}
	for _, m := range raw.Missing {
		if strings.TrimSpace(m) == "" {
			continue
		}
		result.Missing = append(result.Missing, strings.TrimSpace(m))
		if len(result.Missing) == maxQuestions {
			break
		}
	}
	return result, nil
}

func clampImportance(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}
