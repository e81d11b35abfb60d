package gateway

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/reglens/reglens/internal/model"
	"github.com/reglens/reglens/internal/prompt"
)

// Capability is the opaque language-model boundary: given a prompt,
// return text, with retriable failure and variable latency. The gateway
// owns retry, caching and pacing; implementations own only the call.
type Capability interface {
	Call(ctx context.Context, promptText string) (string, error)
}

// OpenAICapability calls the chat completions API with a fixed
// temperature and seed, so identical queries are reproducible up to
// provider determinism guarantees.
type OpenAICapability struct {
	client *openai.Client
	config model.ModelConfig
}

// NewOpenAICapability creates the OpenAI-backed capability
func NewOpenAICapability(cfg model.ModelConfig) (*OpenAICapability, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAICapability{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Call issues one chat completion request
func (c *OpenAICapability) Call(ctx context.Context, promptText string) (string, error) {
	seed := c.config.Seed

	req := openai.ChatCompletionRequest{
		Model: c.config.Name,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System()},
			{Role: openai.ChatMessageRoleUser, Content: promptText},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		Seed:        &seed,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	return resp.Choices[0].Message.Content, nil
}
