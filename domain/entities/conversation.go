package entities

import (
	"errors"
	"strings"
	"time"
)

// Conversation behavior modes. Mode changes are owner-only.
const (
	ModeStudy  = "STUDY"
	ModeChill  = "CHILL"
	ModePublic = "PUBLIC"
)

// DefaultOwner is used when no owner name is configured.
const DefaultOwner = "Chaitu"

// AllowedMode reports whether mode is one of the supported behavior modes.
func AllowedMode(mode string) bool {
	switch mode {
	case ModeStudy, ModeChill, ModePublic:
		return true
	}
	return false
}

// NormalizeMode uppercases mode and falls back to CHILL when it is not a
// supported value.
func NormalizeMode(mode string) string {
	upper := strings.ToUpper(strings.TrimSpace(mode))
	if AllowedMode(upper) {
		return upper
	}
	return ModeChill
}

// ConversationRequest is one sanitized message sent to the backend.
// It is constructed fresh per send and never mutated afterwards.
type ConversationRequest struct {
	Message        string `json:"message"`
	CurrentSpeaker string `json:"currentSpeaker"`
	Mode           string `json:"mode"`
}

// ConversationResponse is the backend's reply. Absent optional fields mean
// "no change" to the corresponding session attribute.
type ConversationResponse struct {
	Reply          string `json:"reply,omitempty"`
	CurrentSpeaker string `json:"currentSpeaker,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Error          string `json:"error,omitempty"`
}

// LyraContext carries the session attributes the backend threads through a
// single conversational turn.
type LyraContext struct {
	CurrentSpeaker string
	Mode           string
}

// NewLyraContext builds a turn context, defaulting to the owner and CHILL.
func NewLyraContext(owner, speaker, mode string) LyraContext {
	if speaker == "" {
		speaker = owner
	}
	return LyraContext{
		CurrentSpeaker: speaker,
		Mode:           NormalizeMode(mode),
	}
}

// IsOwner reports whether the context's current speaker is the owner.
func (c LyraContext) IsOwner(owner string) bool {
	return strings.EqualFold(strings.TrimSpace(c.CurrentSpeaker), strings.TrimSpace(owner))
}

// Exchange is one completed request/reply pair kept in history.
type Exchange struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Speaker   string    `json:"speaker"`
	Mode      string    `json:"mode"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
}

// Validate checks the fields history storage depends on.
func (e *Exchange) Validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if e.Message == "" {
		return errors.New("message is required")
	}
	return nil
}
