package mcp

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/promptforge/internal/credentials"
	"github.com/ziadkadry99/promptforge/internal/db"
	"github.com/ziadkadry99/promptforge/internal/library"
	"github.com/ziadkadry99/promptforge/internal/llm"
	"github.com/ziadkadry99/promptforge/internal/provider"
	"github.com/ziadkadry99/promptforge/internal/refine"
)

// scriptedChat returns canned responses in order.
type scriptedChat struct {
	responses []string
}

func (c *scriptedChat) Complete(_ context.Context, _ provider.Config, _ string, _ llm.CompletionRequest) (string, error) {
	if len(c.responses) == 0 {
		return "", io.EOF
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

type stubCreds struct{ configured bool }

func (s *stubCreds) Active(ctx context.Context) (provider.Config, string, error) {
	if !s.configured {
		return provider.Config{}, "", credentials.ErrNotConfigured
	}
	return provider.Lookup(provider.OpenAI), "sk-test", nil
}

func testMCPServer(t *testing.T, chat *scriptedChat, configured bool) (*Server, *library.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	lib := library.NewStore(database)
	engine := refine.NewEngine(&stubCreds{configured: configured}, chat, log.New(io.Discard), refine.Options{})
	return NewServer(lib, engine), lib
}

func callRequest(args map[string]any) mcplib.CallToolRequest {
	req := mcplib.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcplib.Tool
		wantName string
	}{
		{listPromptsTool, "list_prompts"},
		{getPromptTool, "get_prompt"},
		{savePromptTool, "save_prompt"},
		{refinePromptTool, "refine_prompt"},
	}
	for _, tt := range tests {
		if tt.tool.Name != tt.wantName {
			t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
		}
		if tt.tool.Description == "" {
			t.Errorf("%s: tool description should not be empty", tt.wantName)
		}
	}
}

func TestNewServer(t *testing.T) {
	srv, _ := testMCPServer(t, &scriptedChat{}, true)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleSaveGetList(t *testing.T) {
	srv, _ := testMCPServer(t, &scriptedChat{}, true)
	ctx := context.Background()

	result, err := srv.handleSavePrompt(ctx, callRequest(map[string]any{
		"name":    "blog",
		"content": "Write a blog post",
	}))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.IsError {
		t.Fatalf("save tool error: %v", result.Content)
	}

	result, err = srv.handleGetPrompt(ctx, callRequest(map[string]any{"name": "blog"}))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(resultText(t, result), "Write a blog post") {
		t.Errorf("get result = %q", resultText(t, result))
	}

	result, err = srv.handleListPrompts(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(resultText(t, result), "blog") {
		t.Errorf("list result = %q", resultText(t, result))
	}
}

func TestHandleGetPromptMissing(t *testing.T) {
	srv, _ := testMCPServer(t, &scriptedChat{}, true)

	result, err := srv.handleGetPrompt(context.Background(), callRequest(map[string]any{"name": "nope"}))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown prompt")
	}
}

func TestHandleRefinePromptDirect(t *testing.T) {
	chat := &scriptedChat{responses: []string{
		`{"importance_score": 1, "missing": [], "questions": []}`,
		"A refined blog post prompt.",
	}}
	srv, lib := testMCPServer(t, chat, true)
	ctx := context.Background()

	if _, err := lib.SavePrompt(ctx, library.Prompt{Name: "blog", Content: "Write a blog post"}); err != nil {
		t.Fatalf("seed prompt: %v", err)
	}

	result, err := srv.handleRefinePrompt(ctx, callRequest(map[string]any{"name": "blog"}))
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if result.IsError {
		t.Fatalf("refine tool error: %v", result.Content)
	}
	if !strings.Contains(resultText(t, result), "A refined blog post prompt.") {
		t.Errorf("result = %q", resultText(t, result))
	}

	p, err := lib.GetPrompt(ctx, "blog")
	if err != nil {
		t.Fatalf("get prompt: %v", err)
	}
	if p.Content != "A refined blog post prompt." {
		t.Errorf("content = %q", p.Content)
	}
	if p.OriginalContent != "Write a blog post" {
		t.Errorf("original = %q", p.OriginalContent)
	}
}

func TestHandleRefinePromptQuestionRound(t *testing.T) {
	questions := `{
		"importance_score": 4,
		"missing": ["topic", "audience"],
		"questions": ["What topic?", "Who is the audience?"]
	}`
	chat := &scriptedChat{responses: []string{questions}}
	srv, lib := testMCPServer(t, chat, true)
	ctx := context.Background()

	if _, err := lib.SavePrompt(ctx, library.Prompt{Name: "blog", Content: "Write a blog post"}); err != nil {
		t.Fatalf("seed prompt: %v", err)
	}

	// First round: questions come back, nothing is saved.
	result, err := srv.handleRefinePrompt(ctx, callRequest(map[string]any{"name": "blog"}))
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "What topic?") || !strings.Contains(text, "Who is the audience?") {
		t.Fatalf("questions missing from result: %q", text)
	}
	p, _ := lib.GetPrompt(ctx, "blog")
	if p.Content != "Write a blog post" {
		t.Error("prompt must not change before answers arrive")
	}

	// Second round with answers, the second question skipped.
	chat.responses = []string{questions, "Refined with answers."}
	result, err = srv.handleRefinePrompt(ctx, callRequest(map[string]any{
		"name":    "blog",
		"answers": "Composting\n",
	}))
	if err != nil {
		t.Fatalf("refine with answers: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %v", result.Content)
	}
	p, _ = lib.GetPrompt(ctx, "blog")
	if p.Content != "Refined with answers." {
		t.Errorf("content = %q", p.Content)
	}

	// Questions are regenerated on the answers call, so the result echoes
	// the pairing actually used.
	text = resultText(t, result)
	if !strings.Contains(text, "Q: What topic?") || !strings.Contains(text, "A: Composting") {
		t.Errorf("pairing not echoed: %q", text)
	}
	if !strings.Contains(text, "A: (skipped)") {
		t.Errorf("skipped question not marked: %q", text)
	}
}

func TestHandleRefinePromptNotConfigured(t *testing.T) {
	srv, lib := testMCPServer(t, &scriptedChat{}, false)
	ctx := context.Background()

	if _, err := lib.SavePrompt(ctx, library.Prompt{Name: "blog", Content: "Write a blog post"}); err != nil {
		t.Fatalf("seed prompt: %v", err)
	}

	result, err := srv.handleRefinePrompt(ctx, callRequest(map[string]any{"name": "blog"}))
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error without a configured provider")
	}
	if !strings.Contains(resultText(t, result), "promptforge keys") {
		t.Error("error should tell the agent how to configure a provider")
	}
}

func TestPairTranscript(t *testing.T) {
	questions := []string{"q1?", "q2?", "q3?"}
	transcript := pairTranscript(questions, "a1\n\na3")

	want := []llm.Role{llm.RoleAssistant, llm.RoleUser, llm.RoleAssistant, llm.RoleAssistant, llm.RoleUser}
	if len(transcript) != len(want) {
		t.Fatalf("transcript = %+v", transcript)
	}
	for i, role := range want {
		if transcript[i].Role != role {
			t.Fatalf("turn %d role = %s, want %s", i, transcript[i].Role, role)
		}
	}
	if transcript[4].Content != "a3" {
		t.Errorf("last answer = %q", transcript[4].Content)
	}
}
