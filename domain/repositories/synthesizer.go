package repositories

import "context"

// Voice describes one synthesis voice offered by the engine.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// Utterance is a single unit of text submitted for audible speech output.
type Utterance struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	VoiceID  string  `json:"voice_id,omitempty"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
}

// Synthesizer abstracts a text-to-speech engine.
//
// Implementations guarantee at most one active utterance: Speak on a busy
// engine is preceded by Cancel by the caller, and Cancel on an idle engine
// is a no-op.
type Synthesizer interface {
	// Voices returns the engine's current voice inventory. Engines may
	// populate the list asynchronously, so callers should re-query rather
	// than cache an empty result.
	Voices(ctx context.Context) ([]Voice, error)
	// Speak submits an utterance for playback. It returns once the
	// utterance has been accepted; playback completion is not reported.
	Speak(ctx context.Context, utterance Utterance) error
	// Cancel stops the utterance currently speaking or queued, if any.
	Cancel()
}
