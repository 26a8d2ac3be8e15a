package stt

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
)

// ScriptedRecognizer replays a fixed sequence of transcripts, one per
// Start. Used for development without a microphone and in tests.
type ScriptedRecognizer struct {
	logger *zap.Logger
	events chan repositories.RecognitionEvent

	mu          sync.Mutex
	transcripts []string
	next        int
	running     bool
}

// Ensure ScriptedRecognizer implements the Recognizer interface
var _ repositories.Recognizer = (*ScriptedRecognizer)(nil)

// NewScriptedRecognizer creates a recognizer that yields the given
// transcripts in order, then empty transcripts forever.
func NewScriptedRecognizer(transcripts []string, logger *zap.Logger) *ScriptedRecognizer {
	return &ScriptedRecognizer{
		logger:      logger,
		events:      make(chan repositories.RecognitionEvent, 16),
		transcripts: transcripts,
	}
}

// Events returns the lifecycle event stream.
func (s *ScriptedRecognizer) Events() <-chan repositories.RecognitionEvent {
	return s.events
}

// Start emits one started/result/ended sequence from the script.
func (s *ScriptedRecognizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("recognition already in progress")
	}
	s.running = true

	transcript := ""
	if s.next < len(s.transcripts) {
		transcript = s.transcripts[s.next]
		s.next++
	}
	s.mu.Unlock()

	s.logger.Debug("scripted recognition", zap.String("transcript", transcript))

	go func() {
		s.events <- repositories.RecognitionEvent{Kind: repositories.RecognitionStarted}
		s.events <- repositories.RecognitionEvent{
			Kind:       repositories.RecognitionResult,
			Transcript: transcript,
		}
		s.events <- repositories.RecognitionEvent{Kind: repositories.RecognitionEnded}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return nil
}

// Stop is a no-op for the scripted engine; the sequence always completes.
func (s *ScriptedRecognizer) Stop() {}
