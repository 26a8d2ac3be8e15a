package api

import (
	"strings"
	"time"

	"github.com/chaitudev/lyra/domain/entities"
)

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Owner   string `json:"owner"`
}

// KeyCheckResponse is the payload of GET /testkey.
type KeyCheckResponse struct {
	GroqKeyPresent bool   `json:"groq_key_present"`
	Owner          string `json:"owner"`
}

// SessionRequest is the payload for POST /auth/session.
type SessionRequest struct {
	Speaker string `json:"speaker"`
}

// SessionResponse carries an issued session token.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConversationsResponse is the payload of GET /conversations.
type ConversationsResponse struct {
	Exchanges []*entities.Exchange `json:"exchanges"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ParseCORSOrigins splits a comma-separated origin list. An empty value
// allows every origin. Trailing slashes are dropped so that
// "https://app.example/" matches the Origin header browsers send.
func ParseCORSOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
