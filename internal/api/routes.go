// Package api wires the backend HTTP routes.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/entities"
	"github.com/chaitudev/lyra/domain/repositories"
	"github.com/chaitudev/lyra/internal/auth"
	"github.com/chaitudev/lyra/usecase"
)

// defaultHistoryLimit caps GET /conversations when no limit is given.
const defaultHistoryLimit = 50

// InitRoutes initializes all API routes.
func InitRoutes(
	e *echo.Echo,
	conversations *usecase.ConversationService,
	history repositories.HistoryRepository,
	issuer *auth.TokenIssuer,
	corsOrigins []string,
	logger *zap.Logger,
) {
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: "lyra-backend",
			Owner:   conversations.Owner(),
		})
	})

	// Reports whether a model API key is configured, without exposing it.
	e.GET("/testkey", func(c echo.Context) error {
		return c.JSON(http.StatusOK, KeyCheckResponse{
			GroqKeyPresent: conversations.HasModel(),
			Owner:          conversations.Owner(),
		})
	})

	if issuer != nil {
		e.POST("/auth/session", func(c echo.Context) error {
			return createSession(c, conversations.Owner(), issuer, logger)
		})
	}

	protected := issuer.Middleware()

	e.POST("/lyra", func(c echo.Context) error {
		return handleTurn(c, conversations, logger)
	}, protected)

	e.GET("/conversations", func(c echo.Context) error {
		return getConversations(c, history, logger)
	}, protected)
}

// handleTurn runs one conversation turn.
func handleTurn(c echo.Context, conversations *usecase.ConversationService, logger *zap.Logger) error {
	var req entities.ConversationRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("failed to bind turn request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, entities.ConversationResponse{
			Error: "Invalid request body.",
		})
	}

	resp, status := conversations.Respond(c.Request().Context(), req)
	return c.JSON(status, resp)
}

// createSession issues a session token for the claimed speaker.
func createSession(c echo.Context, owner string, issuer *auth.TokenIssuer, logger *zap.Logger) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	speaker := req.Speaker
	if speaker == "" {
		speaker = owner
	}

	token, err := issuer.Issue(speaker)
	if err != nil {
		logger.Error("failed to issue session token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	logger.Info("session issued", zap.String("speaker", speaker))
	return c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(auth.SessionDuration),
	})
}

// getConversations returns recent history entries, newest last.
func getConversations(c echo.Context, history repositories.HistoryRepository, logger *zap.Logger) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a non-negative integer",
			})
		}
		limit = parsed
	}

	if history == nil {
		return c.JSON(http.StatusOK, ConversationsResponse{Exchanges: []*entities.Exchange{}})
	}

	exchanges, err := history.Recent(c.Request().Context(), limit)
	if err != nil {
		logger.Error("failed to read history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "history_unavailable",
			Message: "Failed to read conversation history",
		})
	}
	if exchanges == nil {
		exchanges = []*entities.Exchange{}
	}

	return c.JSON(http.StatusOK, ConversationsResponse{Exchanges: exchanges})
}
