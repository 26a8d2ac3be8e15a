// Package tts provides Synthesizer adapters for audible speech output.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/repositories"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM" // Rachel voice
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "pcm_24000" // PCM for real-time playback
	defaultSampleRate   = 24000
	defaultChunkSize    = 1024
	defaultStability    = 0.5
	defaultClarity      = 0.75
)

// Player consumes a stream of PCM chunks and plays them. Stop aborts the
// playback in progress, if any.
type Player interface {
	Play(ctx context.Context, sampleRate int, pcm <-chan []byte) error
	Stop()
}

// ElevenLabsConfig holds configuration for the ElevenLabs adapter.
// Required fields:
// - APIKey: Your Eleven Labs API key
// Optional fields with defaults:
// - BaseURL: API base URL (default: "https://api.elevenlabs.io/v1")
// - VoiceID: fallback voice when the utterance names none
// - ModelID: TTS model (default: "eleven_multilingual_v2")
// - Stability / Clarity: voice settings between 0 and 1
type ElevenLabsConfig struct {
	APIKey    string
	BaseURL   string
	VoiceID   string
	ModelID   string
	Stability float64
	Clarity   float64
}

// ElevenLabsSynthesizer implements Synthesizer using the Eleven Labs
// streaming TTS API. At most one utterance plays at a time; Cancel aborts
// the stream and the player.
type ElevenLabsSynthesizer struct {
	apiKey     string
	baseURL    string
	voiceID    string
	modelID    string
	stability  float64
	clarity    float64
	httpClient *http.Client
	player     Player
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Ensure ElevenLabsSynthesizer implements the Synthesizer interface
var _ repositories.Synthesizer = (*ElevenLabsSynthesizer)(nil)

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	LanguageCode  string                  `json:"language_code,omitempty"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoice struct {
	VoiceID string            `json:"voice_id"`
	Name    string            `json:"name"`
	Labels  map[string]string `json:"labels"`
}

type elevenLabsVoicesResponse struct {
	Voices []elevenLabsVoice `json:"voices"`
}

// ValidateElevenLabsConfig validates the ElevenLabsConfig.
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}
	if config.Stability != 0 && (config.Stability < 0 || config.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}
	if config.Clarity != 0 && (config.Clarity < 0 || config.Clarity > 1) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}
	return nil
}

// NewElevenLabsSynthesizer creates a streaming TTS adapter playing through
// the given player.
func NewElevenLabsSynthesizer(config ElevenLabsConfig, player Player, logger *zap.Logger) (*ElevenLabsSynthesizer, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
	}
	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
	}
	clarity := config.Clarity
	if clarity == 0 {
		clarity = defaultClarity
	}

	return &ElevenLabsSynthesizer{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		voiceID:    voiceID,
		modelID:    modelID,
		stability:  stability,
		clarity:    clarity,
		httpClient: &http.Client{},
		player:     player,
		logger:     logger,
	}, nil
}

// Voices lists the account's voice inventory.
func (e *ElevenLabsSynthesizer) Voices(ctx context.Context) ([]repositories.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices endpoint returned status %d", resp.StatusCode)
	}

	var parsed elevenLabsVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode voices: %w", err)
	}

	voices := make([]repositories.Voice, 0, len(parsed.Voices))
	for _, v := range parsed.Voices {
		voices = append(voices, repositories.Voice{
			ID:       v.VoiceID,
			Name:     v.Name,
			Language: v.Labels["language"],
		})
	}
	return voices, nil
}

// Speak submits the utterance and streams the resulting PCM to the player.
// It returns once the engine has accepted the request; playback continues
// in the background until it finishes or Cancel is called.
func (e *ElevenLabsSynthesizer) Speak(ctx context.Context, utterance repositories.Utterance) error {
	if utterance.Text == "" {
		return nil
	}

	voiceID := utterance.VoiceID
	if voiceID == "" {
		voiceID = e.voiceID
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:         utterance.Text,
		ModelID:      e.modelID,
		LanguageCode: languageCode(utterance.Language),
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
		},
	})
	if err != nil {
		return err
	}

	// Playback is detached from the caller's context so an utterance
	// keeps speaking after the submitting call returns.
	playCtx, cancel := context.WithCancel(context.Background())

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s", e.baseURL, voiceID, defaultOutputFormat)
	req, err := http.NewRequestWithContext(playCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		cancel()
		return err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start speech stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return fmt.Errorf("speech stream returned status %d", resp.StatusCode)
	}

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	chunks := make(chan []byte, 8)
	go e.pump(playCtx, resp.Body, chunks)
	go func() {
		if err := e.player.Play(playCtx, defaultSampleRate, chunks); err != nil && playCtx.Err() == nil {
			e.logger.Warn("playback failed", zap.Error(err))
		}
	}()

	return nil
}

// Cancel aborts the utterance currently streaming or playing, if any.
func (e *ElevenLabsSynthesizer) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.player.Stop()
}

func (e *ElevenLabsSynthesizer) pump(ctx context.Context, body io.ReadCloser, chunks chan<- []byte) {
	defer body.Close()
	defer close(chunks)

	buf := make([]byte, defaultChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				e.logger.Warn("speech stream interrupted", zap.Error(err))
			}
			return
		}
	}
}

// languageCode maps a locale tag like "en-IN" to the two-letter code the
// engine expects.
func languageCode(locale string) string {
	if len(locale) >= 2 {
		return locale[:2]
	}
	return ""
}
