package entities

// Status is the coarse user-facing state of the interaction.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusListening Status = "listening"
	StatusThinking  Status = "thinking"
	StatusError     Status = "error"
)

// Valid reports whether s is one of the four interaction statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusListening, StatusThinking, StatusError:
		return true
	}
	return false
}

// InteractionState is the single session-wide state the UI projects.
// It is owned by the interaction machine; nothing else mutates it.
type InteractionState struct {
	Status            Status `json:"status"`
	CurrentSpeaker    string `json:"current_speaker"`
	Mode              string `json:"mode"`
	RecognitionActive bool   `json:"recognition_active"`
}

// NewInteractionState returns the startup state: idle, owner speaking,
// chill mode, recognition off.
func NewInteractionState(owner string) InteractionState {
	return InteractionState{
		Status:         StatusIdle,
		CurrentSpeaker: owner,
		Mode:           ModeChill,
	}
}
