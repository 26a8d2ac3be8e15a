package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/chaitudev/lyra/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiLLM implements the LargeLanguageModel interface using Google's
// Gemini API. It is the alternate provider for deployments without a Groq
// key.
type GeminiLLM struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Ensure GeminiLLM implements the LargeLanguageModel interface
var _ repositories.LargeLanguageModel = (*GeminiLLM)(nil)

// NewGeminiLLM creates a new Gemini LLM instance.
func NewGeminiLLM(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiLLM{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Complete sends the conversation and returns the model's reply.
func (g *GeminiLLM) Complete(ctx context.Context, messages []repositories.ChatMessage) (string, error) {
	var system string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case repositories.SystemRole:
			system = m.Content
		case repositories.AssistantRole:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(groqTemperature)),
		MaxOutputTokens: int32(groqMaxTokens),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", repositories.ErrUnreadableReply
	}

	var reply strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		reply.WriteString(part.Text)
	}

	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", repositories.ErrUnreadableReply
	}

	g.logger.Debug("gemini reply",
		zap.String("model", g.model),
		zap.Int("length", len(text)))

	return text, nil
}
