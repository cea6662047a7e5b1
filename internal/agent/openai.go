package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-3.5-turbo"

// Model is a text completion capability.
type Model interface {
	Complete(ctx context.Context, prompt string, stop []string) (string, error)
}

// OpenAIModel implements Model with the OpenAI chat completions API.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates a model client. baseURL may be empty; when set it
// should be the scheme and host, the client appends /v1.
func NewOpenAIModel(apiKey, model, baseURL string) *OpenAIModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	}
	return newOpenAIModelWithClient(openai.NewClientWithConfig(cfg), model)
}

func newOpenAIModelWithClient(client *openai.Client, model string) *OpenAIModel {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIModel{client: client, model: model}
}

// Complete sends prompt as a single user message with deterministic sampling.
func (m *OpenAIModel) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// A literal 0 is dropped by omitempty and the API would apply its default.
		Temperature: math.SmallestNonzeroFloat32,
		Stop:        stop,
	})
	if err != nil {
		return "", fmt.Errorf("openai api call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai api call: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
