package usecase

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
	"github.com/chaitudev/lyra/internal/interaction"
	"github.com/chaitudev/lyra/internal/sanitize"
	"github.com/chaitudev/lyra/internal/voice"
)

// Spoken lines for recognition-side failures.
const (
	RecognitionApology  = "Sorry, I could not hear that properly."
	UnsupportedCapacity = "Voice input is not available on this device."
)

// Conversation is the slice of the backend client the assistant needs.
type Conversation interface {
	SendToLyra(ctx context.Context, userText string)
}

// AssistantService is the speech input adapter: it bridges recognizer
// lifecycle events to the interaction machine and dispatches usable
// transcripts to the conversation client. Events are handled strictly in
// arrival order; nothing is reordered or coalesced.
type AssistantService struct {
	recognizer   repositories.Recognizer
	machine      *interaction.Machine
	speaker      *voice.Speaker
	conversation Conversation
	logger       *zap.Logger

	// starting covers the window between dispatching recognizer.Start and
	// the engine's started event reaching handle.
	starting atomic.Bool
}

// NewAssistantService wires the assistant together. A nil recognizer means
// the platform offers no recognition capability: the machine enters Error,
// the unsupported notice is spoken, and the service stays inert.
func NewAssistantService(
	recognizer repositories.Recognizer,
	machine *interaction.Machine,
	speaker *voice.Speaker,
	conversation Conversation,
	logger *zap.Logger,
) *AssistantService {
	s := &AssistantService{
		recognizer:   recognizer,
		machine:      machine,
		speaker:      speaker,
		conversation: conversation,
		logger:       logger,
	}

	if recognizer == nil {
		machine.Apply(interaction.Event{Kind: interaction.EventCapabilityMissing})
		speaker.Speak(context.Background(), UnsupportedCapacity)
	}

	return s
}

// Available reports whether voice input can be used at all.
func (s *AssistantService) Available() bool {
	return s.recognizer != nil
}

// Run consumes recognizer events until the context ends or the event
// channel closes. Call it from its own goroutine.
func (s *AssistantService) Run(ctx context.Context) {
	if s.recognizer == nil {
		return
	}

	events := s.recognizer.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handle(ctx, ev)
		}
	}
}

// StartListening begins a recognition attempt in response to a user
// gesture. No-op when voice input is unavailable or already active.
func (s *AssistantService) StartListening(ctx context.Context) {
	if s.recognizer == nil {
		return
	}
	if s.machine.Snapshot().RecognitionActive {
		return
	}
	if !s.starting.CompareAndSwap(false, true) {
		return
	}

	if err := s.recognizer.Start(ctx); err != nil {
		s.starting.Store(false)
		s.logger.Warn("recognition could not start", zap.Error(err))
		s.machine.Apply(interaction.Event{Kind: interaction.EventRecognitionFailed})
		s.speaker.Speak(ctx, RecognitionApology)
	}
}

// StopListening aborts an active recognition attempt. The explicit stop
// lands the machine back on Idle.
func (s *AssistantService) StopListening() {
	if s.recognizer == nil {
		return
	}
	if !s.machine.Snapshot().RecognitionActive {
		return
	}

	s.recognizer.Stop()
	s.machine.Apply(interaction.Event{Kind: interaction.EventRecognitionStopped})
}

func (s *AssistantService) handle(ctx context.Context, ev repositories.RecognitionEvent) {
	switch ev.Kind {
	case repositories.RecognitionStarted:
		s.starting.Store(false)
		s.machine.Apply(interaction.Event{Kind: interaction.EventRecognitionStarted})

	case repositories.RecognitionResult:
		clean := sanitize.Clean(ev.Transcript)
		if clean == "" {
			s.machine.Apply(interaction.Event{Kind: interaction.EventEmptyTranscript})
			return
		}
		// Synchronous on purpose: the Thinking transition must land
		// before the trailing ended event is processed.
		s.conversation.SendToLyra(ctx, clean)

	case repositories.RecognitionError:
		s.starting.Store(false)
		s.logger.Warn("recognition failed", zap.Error(ev.Err))
		s.machine.Apply(interaction.Event{Kind: interaction.EventRecognitionFailed})
		s.speaker.Speak(ctx, RecognitionApology)

	case repositories.RecognitionEnded:
		s.starting.Store(false)
		s.machine.Apply(interaction.Event{Kind: interaction.EventRecognitionEnded})
	}
}
