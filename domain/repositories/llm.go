package repositories

import (
	"context"
	"errors"
)

// LargeLanguageModel abstracts any chat/LLM provider
type LargeLanguageModel interface {
	// Complete sends the conversation so far and returns the model's reply
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role defines the type of message sender
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
	SystemRole    Role = "system"
)

// ErrUnreadableReply signals that the provider answered but no usable reply
// could be extracted from its response.
var ErrUnreadableReply = errors.New("unreadable model reply")
