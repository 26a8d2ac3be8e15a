package tts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
)

// MockSynthesizer records utterances instead of producing audio. Used in
// development mode and tests.
type MockSynthesizer struct {
	logger *zap.Logger

	mu         sync.Mutex
	voices     []repositories.Voice
	utterances []repositories.Utterance
	cancels    int
}

// Ensure MockSynthesizer implements the Synthesizer interface
var _ repositories.Synthesizer = (*MockSynthesizer)(nil)

// NewMockSynthesizer creates a mock engine with a small voice inventory.
func NewMockSynthesizer(logger *zap.Logger) *MockSynthesizer {
	return &MockSynthesizer{
		logger: logger,
		voices: []repositories.Voice{
			{ID: "mock-veena", Name: "Veena", Language: "en-IN"},
			{ID: "mock-david", Name: "David", Language: "en-US"},
		},
	}
}

// SetVoices replaces the mock inventory.
func (m *MockSynthesizer) SetVoices(voices []repositories.Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = voices
}

// Voices returns the mock inventory.
func (m *MockSynthesizer) Voices(ctx context.Context) ([]repositories.Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repositories.Voice(nil), m.voices...), nil
}

// Speak records the utterance.
func (m *MockSynthesizer) Speak(ctx context.Context, utterance repositories.Utterance) error {
	m.mu.Lock()
	m.utterances = append(m.utterances, utterance)
	m.mu.Unlock()

	m.logger.Info("mock utterance",
		zap.String("text", utterance.Text),
		zap.String("voice", utterance.VoiceID))
	return nil
}

// Cancel counts cancellations.
func (m *MockSynthesizer) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
}

// Utterances returns everything spoken so far.
func (m *MockSynthesizer) Utterances() []repositories.Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repositories.Utterance(nil), m.utterances...)
}

// Cancels returns how many times Cancel was called.
func (m *MockSynthesizer) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}
