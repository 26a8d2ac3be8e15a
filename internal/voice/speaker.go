package voice

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
)

// Fixed prosody for every utterance.
const (
	utteranceRate  = 1.0
	utterancePitch = 1.02
)

// Speaker is the speech output adapter: it keeps at most one utterance
// active by cancelling whatever is speaking before submitting the next one.
// Speak is fire-and-forget; playback completion is never consumed.
type Speaker struct {
	synth  repositories.Synthesizer
	locale string
	logger *zap.Logger

	mu    sync.Mutex
	voice *repositories.Voice
}

// NewSpeaker wraps a synthesizer. A nil synthesizer yields an inert speaker
// whose Speak is a no-op, matching an absent platform capability.
func NewSpeaker(synth repositories.Synthesizer, locale string, logger *zap.Logger) *Speaker {
	return &Speaker{
		synth:  synth,
		locale: locale,
		logger: logger,
	}
}

// RefreshVoices re-queries the engine's inventory and re-runs selection.
// Call it when the engine signals its list has (re)loaded.
func (s *Speaker) RefreshVoices(ctx context.Context) {
	if s.synth == nil {
		return
	}

	voices, err := s.synth.Voices(ctx)
	if err != nil {
		s.logger.Warn("voice inventory unavailable", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.voice = Select(voices)
	s.mu.Unlock()
}

// Speak cancels any active utterance and submits text for playback. Empty
// text and an unavailable engine are both silent no-ops.
func (s *Speaker) Speak(ctx context.Context, text string) {
	if s.synth == nil || text == "" {
		return
	}

	s.mu.Lock()
	if s.voice == nil {
		s.mu.Unlock()
		s.RefreshVoices(ctx)
		s.mu.Lock()
	}
	voice := s.voice
	s.mu.Unlock()

	utterance := repositories.Utterance{
		Text:     text,
		Language: s.locale,
		Rate:     utteranceRate,
		Pitch:    utterancePitch,
	}
	if voice != nil {
		utterance.VoiceID = voice.ID
	}

	s.synth.Cancel()
	if err := s.synth.Speak(ctx, utterance); err != nil {
		s.logger.Warn("utterance rejected", zap.Error(err))
	}
}
