package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listPromptsTool defines the list_prompts MCP tool.
var listPromptsTool = mcp.NewTool("list_prompts",
	mcp.WithDescription("List all saved prompts with their labels."),
)

// getPromptTool defines the get_prompt MCP tool.
var getPromptTool = mcp.NewTool("get_prompt",
	mcp.WithDescription("Get a saved prompt by name, including its pre-refinement original when one exists."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name of the prompt"),
	),
)

// savePromptTool defines the save_prompt MCP tool.
var savePromptTool = mcp.NewTool("save_prompt",
	mcp.WithDescription("Save a prompt under a name. Saving to an existing name replaces its content."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name to store the prompt under"),
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("The prompt text"),
	),
)

// refinePromptTool defines the refine_prompt MCP tool.
var refinePromptTool = mcp.NewTool("refine_prompt",
	mcp.WithDescription("Refine a saved prompt. Without answers this assesses the prompt and either refines it directly or returns clarifying questions. Call again with answers (one per line, blank line to skip a question) to complete the refinement. The question set is regenerated on every call and answers are paired positionally with the regenerated questions; the pairing used is echoed in the result."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name of the prompt to refine"),
	),
	mcp.WithString("answers",
		mcp.Description("Answers to a previous round of clarifying questions, one per line in question order"),
	),
)
