package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
)

// MockLLM is a canned-reply provider for development and tests.
type MockLLM struct {
	logger *zap.Logger
}

// NewMockLLM creates a mock provider.
func NewMockLLM(logger *zap.Logger) repositories.LargeLanguageModel {
	return &MockLLM{logger: logger}
}

// Complete echoes a short canned reply derived from the last user message.
func (m *MockLLM) Complete(ctx context.Context, messages []repositories.ChatMessage) (string, error) {
	var last string
	for _, msg := range messages {
		if msg.Role == repositories.UserRole {
			last = msg.Content
		}
	}

	m.logger.Info("mock completion", zap.String("user_message", last))

	if last == "" {
		return "I am listening.", nil
	}
	return "You said: " + last, nil
}
