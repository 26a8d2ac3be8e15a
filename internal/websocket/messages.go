package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chaitudev/lyra/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeStateUpdate MessageType = "state_update"
	MessageTypeCommand     MessageType = "command"
	MessageTypeError       MessageType = "error"
)

// Command actions a connected UI may request.
const (
	CommandStart = "start"
	CommandStop  = "stop"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// StateUpdateMessage broadcasts the assistant's interaction state.
type StateUpdateMessage struct {
	BaseMessage
	Status            entities.Status `json:"status"`
	CurrentSpeaker    string          `json:"current_speaker"`
	Mode              string          `json:"mode"`
	RecognitionActive bool            `json:"recognition_active"`
}

// CommandMessage is an inbound request from a connected UI.
type CommandMessage struct {
	BaseMessage
	Action string `json:"action"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// CreateStateUpdate builds a state broadcast from the current state.
func CreateStateUpdate(state entities.InteractionState) *StateUpdateMessage {
	return &StateUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStateUpdate,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Status:            state.Status,
		CurrentSpeaker:    state.CurrentSpeaker,
		Mode:              state.Mode,
		RecognitionActive: state.RecognitionActive,
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}

// ParseCommand validates an incoming command message.
func ParseCommand(messageBytes []byte) (*CommandMessage, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}
	if base.Type != MessageTypeCommand {
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}

	var msg CommandMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		return nil, fmt.Errorf("invalid command message: %w", err)
	}
	if msg.Action != CommandStart && msg.Action != CommandStop {
		return nil, fmt.Errorf("action must be one of: start, stop")
	}
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().Format(time.RFC3339)
	}
	return &msg, nil
}
