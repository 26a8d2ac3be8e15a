package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/adapters/audio"
	"github.com/chaitudev/lyra/adapters/stt"
	"github.com/chaitudev/lyra/adapters/tts"
	"github.com/chaitudev/lyra/domain/repositories"
	"github.com/chaitudev/lyra/internal/client"
	"github.com/chaitudev/lyra/internal/config"
	"github.com/chaitudev/lyra/internal/interaction"
	"github.com/chaitudev/lyra/internal/voice"
	"github.com/chaitudev/lyra/internal/websocket"
	"github.com/chaitudev/lyra/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.LoadAssistant()

	owner := fetchOwner(cfg.BackendURL, logger)
	machine := interaction.NewMachine(owner, logger)

	speaker := voice.NewSpeaker(buildSynthesizer(cfg, logger), cfg.Locale, logger)
	backend := client.New(cfg.BackendURL, cfg.SessionToken, machine, speaker, logger)

	assistant := usecase.NewAssistantService(
		buildRecognizer(cfg, logger), machine, speaker, backend, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go assistant.Run(ctx)

	// Status feed for connected UIs.
	hub := websocket.NewHub(assistant, machine.Snapshot, logger)
	go hub.Run()
	machine.Subscribe(hub.Broadcast)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, statusPage)
	})
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.UIPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the assistant", zap.Error(err))
		}
	}()

	logger.Info("assistant started",
		zap.String("ui_port", cfg.UIPort),
		zap.String("backend", cfg.BackendURL),
		zap.String("owner", owner),
		zap.Bool("voice_input", assistant.Available()),
		zap.Bool("mock", cfg.Mock),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("assistant is shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("assistant forced to shutdown", zap.Error(err))
	}

	logger.Info("assistant exited")
}

// fetchOwner asks the backend who the owner is so both sides agree on
// the initial speaker. Falls back to the default when unreachable.
func fetchOwner(backendURL string, logger *zap.Logger) string {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := httpClient.Get(backendURL + "/health")
	if err != nil {
		logger.Warn("backend health check failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	var health struct {
		Owner string `json:"owner"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		logger.Warn("unreadable health response", zap.Error(err))
		return ""
	}
	return health.Owner
}

// buildSynthesizer picks a speech output adapter. A nil return silences
// the assistant; everything else keeps working.
func buildSynthesizer(cfg config.AssistantConfig, logger *zap.Logger) repositories.Synthesizer {
	if cfg.Mock {
		return tts.NewMockSynthesizer(logger)
	}
	if cfg.ElevenLabsAPIKey == "" {
		logger.Warn("ELEVENLABS_API_KEY not set, speech output disabled")
		return nil
	}

	player, err := audio.NewPCMPlayer()
	if err != nil {
		logger.Warn("audio output unavailable", zap.Error(err))
		return nil
	}

	synth, err := tts.NewElevenLabsSynthesizer(tts.ElevenLabsConfig{
		APIKey:  cfg.ElevenLabsAPIKey,
		VoiceID: cfg.ElevenLabsVoiceID,
	}, player, logger)
	if err != nil {
		logger.Warn("speech synthesis unavailable", zap.Error(err))
		return nil
	}
	return synth
}

// buildRecognizer picks a speech input adapter. A nil return marks voice
// input as unsupported on this device.
func buildRecognizer(cfg config.AssistantConfig, logger *zap.Logger) repositories.Recognizer {
	if cfg.Mock {
		return stt.NewScriptedRecognizer([]string{
			"hello lyra",
			"what can you do",
			"switch to study mode",
		}, logger)
	}

	mic, err := audio.NewMicrophone()
	if err != nil {
		logger.Warn("microphone unavailable", zap.Error(err))
		return nil
	}

	return stt.NewGoogleRecognizer(mic, repositories.RecognitionConfig{
		Language:   cfg.Locale,
		SampleRate: audio.SampleRate,
	}, logger)
}
