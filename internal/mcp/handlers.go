package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/promptforge/internal/library"
	"github.com/ziadkadry99/promptforge/internal/llm"
	"github.com/ziadkadry99/promptforge/internal/refine"
)

const notConfiguredMessage = "No LLM provider is configured. Run `promptforge keys set <provider>` and `promptforge keys select <provider>` first."

// handleListPrompts lists the prompt library.
func (s *Server) handleListPrompts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompts, err := s.lib.ListPrompts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list prompts failed: %v", err)), nil
	}
	if len(prompts) == 0 {
		return mcp.NewToolResultText("The prompt library is empty. Use save_prompt to add one."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d prompt(s):\n", len(prompts)))
	for _, p := range prompts {
		sb.WriteString(fmt.Sprintf("\n- %s", p.Name))
		if len(p.Labels) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", strings.Join(p.Labels, ", ")))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetPrompt returns one prompt's content.
func (s *Server) handleGetPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	p, err := s.lib.GetPrompt(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get prompt failed: %v", err)), nil
	}
	if p == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no prompt named %q", name)), nil
	}

	var sb strings.Builder
	sb.WriteString(p.Content)
	if p.OriginalContent != "" && p.OriginalContent != p.Content {
		sb.WriteString("\n\n--- Original (before refinement) ---\n")
		sb.WriteString(p.OriginalContent)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSavePrompt stores or replaces a prompt.
func (s *Server) handleSavePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("content must not be empty"), nil
	}

	if _, err := s.lib.SavePrompt(ctx, library.Prompt{Name: name, Content: content}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save prompt failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved prompt %q.", name)), nil
}

// handleRefinePrompt runs the two-step refinement over a stored prompt.
// The first call assesses the prompt; if it needs clarification the
// questions come back as text and the agent calls again with answers.
func (s *Server) handleRefinePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	answersText := request.GetString("answers", "")

	p, err := s.lib.GetPrompt(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get prompt failed: %v", err)), nil
	}
	if p == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no prompt named %q", name)), nil
	}

	contextText, labelHint, err := s.lib.ContextFor(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolve label context failed: %v", err)), nil
	}

	result, err := s.engine.GenerateClarifyingQuestions(ctx, p.Content, contextText, labelHint)
	if err != nil {
		return refineErrorResult(err), nil
	}

	var transcript []llm.Message
	if len(result.Questions) > 0 {
		if answersText == "" {
			return mcp.NewToolResultText(formatQuestions(result)), nil
		}
		transcript = pairTranscript(result.Questions, answersText)
	}

	refined, err := s.engine.GenerateFinalRefinedPrompt(ctx, p.Content, contextText, labelHint, transcript)
	if err != nil {
		return refineErrorResult(err), nil
	}

	if refined != p.Content {
		if err := refine.SaveRefined(ctx, s.lib, p.Name, p.Content, refined); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("save refined prompt failed: %v", err)), nil
		}
	}

	var sb strings.Builder
	if len(transcript) > 0 {
		// The question set is regenerated each call, so show the agent
		// exactly which questions its answers were paired with.
		sb.WriteString("Answers were paired with this round's questions:\n")
		sb.WriteString(formatPairing(transcript))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Refined and saved:\n\n")
	sb.WriteString(refined)
	return mcp.NewToolResultText(sb.String()), nil
}

// formatPairing renders the transcript as Q/A lines, marking skipped
// questions.
func formatPairing(transcript []llm.Message) string {
	var sb strings.Builder
	for i := 0; i < len(transcript); i++ {
		if transcript[i].Role != llm.RoleAssistant {
			continue
		}
		fmt.Fprintf(&sb, "Q: %s\n", transcript[i].Content)
		if i+1 < len(transcript) && transcript[i+1].Role == llm.RoleUser {
			fmt.Fprintf(&sb, "A: %s\n", transcript[i+1].Content)
			i++
		} else {
			sb.WriteString("A: (skipped)\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// pairTranscript builds the dialogue transcript from the questions and
// line-separated answers. A blank or missing line means the question was
// skipped; the question still appears with no answer turn.
func pairTranscript(questions []string, answersText string) []llm.Message {
	answers := strings.Split(answersText, "\n")
	var transcript []llm.Message
	for i, q := range questions {
		transcript = append(transcript, llm.Message{Role: llm.RoleAssistant, Content: q})
		if i < len(answers) {
			if a := strings.TrimSpace(answers[i]); a != "" {
				transcript = append(transcript, llm.Message{Role: llm.RoleUser, Content: a})
			}
		}
	}
	return transcript
}

func formatQuestions(result *refine.ClarificationResult) string {
	var sb strings.Builder
	sb.WriteString("The prompt needs clarification before refining")
	sb.WriteString(fmt.Sprintf(" (importance %d/5).\n", result.ImportanceScore))
	for i, q := range result.Questions {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, q))
	}
	sb.WriteString("\n\nCall refine_prompt again with the answers parameter: one answer per line, in order, blank line to skip.")
	return sb.String()
}

func refineErrorResult(err error) *mcp.CallToolResult {
	if refine.NotConfigured(err) {
		return mcp.NewToolResultError(notConfiguredMessage)
	}
	return mcp.NewToolResultError(fmt.Sprintf("refinement failed: %v", err))
}
