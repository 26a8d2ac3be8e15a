package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/adapters/llm"
	"github.com/chaitudev/lyra/domain/repositories"
	"github.com/chaitudev/lyra/internal/api"
	"github.com/chaitudev/lyra/internal/auth"
	"github.com/chaitudev/lyra/internal/config"
	"github.com/chaitudev/lyra/repository"
	"github.com/chaitudev/lyra/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.LoadServer()

	// Initialize the model provider
	model := buildModel(cfg, logger)

	// Initialize history persistence
	history, err := repository.NewFileHistory(cfg.HistoryPath, logger)
	if err != nil {
		logger.Fatal("failed to open history", zap.Error(err))
	}

	retention := repository.NewRetentionService(history, cfg.HistoryKeep, logger)
	retention.Start()
	defer retention.Stop()

	// Initialize usecase services
	conversations := usecase.NewConversationService(cfg.Owner, model, history, logger)

	issuer := auth.NewTokenIssuer(cfg.AuthSecret)
	if issuer == nil {
		logger.Warn("LYRA_AUTH_SECRET not set, API runs without authentication")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize API routes
	api.InitRoutes(e, conversations, history, issuer, api.ParseCORSOrigins(cfg.CORSOrigins), logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("backend started",
		zap.String("port", cfg.Port),
		zap.String("owner", conversations.Owner()),
		zap.String("provider", cfg.Provider),
		zap.Bool("model_configured", conversations.HasModel()),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("server is shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// buildModel selects the configured provider. A nil return means no model
// is available; turns then answer with a configuration notice.
func buildModel(cfg config.ServerConfig, logger *zap.Logger) repositories.LargeLanguageModel {
	switch cfg.Provider {
	case config.ProviderMock:
		return llm.NewMockLLM(logger)

	case config.ProviderGemini:
		model, err := llm.NewGeminiLLM(context.Background(), cfg.GeminiAPIKey, "", logger)
		if err != nil {
			logger.Warn("gemini unavailable", zap.Error(err))
			return nil
		}
		return model

	default:
		model, err := llm.NewGroqLLM(llm.GroqConfig{APIKey: cfg.GroqAPIKey}, logger)
		if err != nil {
			logger.Warn("groq unavailable", zap.Error(err))
			return nil
		}
		return model
	}
}
