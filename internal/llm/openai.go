package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/promptforge/internal/provider"
)

// completeOpenAI sends the request through the OpenAI Chat Completions API.
// OpenAI takes a flat role-tagged message array with system turns inline,
// so messages map across one to one.
func (c *Client) completeOpenAI(ctx context.Context, cfg provider.Config, apiKey string, req CompletionRequest) (string, error) {
	sdkCfg := openai.DefaultConfig(apiKey)
	sdkCfg.BaseURL = cfg.APIBaseURL
	sdkCfg.HTTPClient = c.http
	client := openai.NewClientWithConfig(sdkCfg)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		apiReq.MaxTokens = req.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", statusError(cfg.ID, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
