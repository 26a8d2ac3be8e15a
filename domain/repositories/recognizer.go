package repositories

import "context"

// RecognitionEventKind identifies a lifecycle event of a recognition attempt.
type RecognitionEventKind string

const (
	// RecognitionStarted fires when the engine begins capturing audio.
	RecognitionStarted RecognitionEventKind = "started"
	// RecognitionResult carries the final, single-best transcript.
	RecognitionResult RecognitionEventKind = "result"
	// RecognitionError reports an engine failure; Err is set.
	RecognitionError RecognitionEventKind = "error"
	// RecognitionEnded fires once per attempt, after any result or error.
	RecognitionEnded RecognitionEventKind = "ended"
)

// RecognitionEvent is a single lifecycle event emitted by a Recognizer.
type RecognitionEvent struct {
	Kind       RecognitionEventKind
	Transcript string
	Err        error
}

// RecognitionConfig configures a recognition attempt. Only final results and
// the single best alternative are ever delivered.
type RecognitionConfig struct {
	Language   string `json:"language"`
	SampleRate int    `json:"sample_rate"`
}

// Recognizer abstracts a speech recognition engine. One Start captures one
// utterance; the engine reports progress through the Events channel in
// arrival order: started, then at most one result or error, then ended.
type Recognizer interface {
	// Start begins a single recognition attempt. It returns an error only
	// when the attempt cannot begin at all (engine unavailable, already
	// running); failures after that surface as RecognitionError events.
	Start(ctx context.Context) error
	// Stop aborts the attempt in progress, if any. The engine still emits
	// a terminal ended event.
	Stop()
	// Events returns the lifecycle event stream.
	Events() <-chan RecognitionEvent
}
