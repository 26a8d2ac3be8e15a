// Package llm provides LargeLanguageModel adapters for the providers LYRA
// can think with.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama3-8b-8192"

	// Replies stay short and voice-friendly.
	groqMaxTokens   = 180
	groqTemperature = 0.5
)

// GroqConfig holds configuration for the Groq adapter.
// Required fields:
// - APIKey: Your Groq API key
// Optional fields with defaults:
// - BaseURL: API base URL (default: "https://api.groq.com/openai/v1")
// - Model: chat model ID (default: "llama3-8b-8192")
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// GroqLLM implements LargeLanguageModel against Groq's OpenAI-compatible
// chat completions API.
type GroqLLM struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Ensure GroqLLM implements the LargeLanguageModel interface
var _ repositories.LargeLanguageModel = (*GroqLLM)(nil)

// NewGroqLLM creates a new Groq chat completion client.
func NewGroqLLM(config GroqConfig, logger *zap.Logger) (*GroqLLM, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultGroqModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = baseURL

	return &GroqLLM{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}, nil
}

// Complete sends the conversation and returns the model's reply.
func (g *GroqLLM) Complete(ctx context.Context, messages []repositories.ChatMessage) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: groqTemperature,
		MaxTokens:   groqMaxTokens,
		Messages:    toOpenAIMessages(messages),
	}

	response, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", repositories.ErrUnreadableReply
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", repositories.ErrUnreadableReply
	}

	g.logger.Debug("groq reply",
		zap.String("model", g.model),
		zap.Int("length", len(content)))

	return content, nil
}

func toOpenAIMessages(messages []repositories.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case repositories.SystemRole:
			role = openai.ChatMessageRoleSystem
		case repositories.AssistantRole:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
