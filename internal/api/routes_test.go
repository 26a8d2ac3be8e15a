package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/chaitudev/lyra/adapters/llm"
	"github.com/chaitudev/lyra/domain/entities"
	"github.com/chaitudev/lyra/internal/auth"
	"github.com/chaitudev/lyra/repository"
	"github.com/chaitudev/lyra/usecase"
)

func newTestServer(t *testing.T, issuer *auth.TokenIssuer) *echo.Echo {
	t.Helper()
	logger := zaptest.NewLogger(t)

	history, err := repository.NewFileHistory(filepath.Join(t.TempDir(), "history.jsonl"), logger)
	if err != nil {
		t.Fatal(err)
	}

	conversations := usecase.NewConversationService("Chaitu", llm.NewMockLLM(logger), history, logger)

	e := echo.New()
	InitRoutes(e, conversations, history, issuer, []string{"*"}, logger)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "ok" || resp.Owner != "Chaitu" {
		t.Errorf("unexpected health payload: %+v", resp)
	}
}

func TestKeyCheckEndpoint(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodGet, "/testkey", "", nil)
	var resp KeyCheckResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.GroqKeyPresent {
		t.Error("mock model should count as a configured key")
	}
	if resp.Owner != "Chaitu" {
		t.Errorf("owner = %q, want Chaitu", resp.Owner)
	}
}

func TestTurnEndpoint(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/lyra", "", entities.ConversationRequest{
		Message:        "hello there",
		CurrentSpeaker: "Chaitu",
		Mode:           "CHILL",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp entities.ConversationResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Reply != "You said: hello there" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.CurrentSpeaker != "Chaitu" || resp.Mode != "CHILL" {
		t.Errorf("context not echoed: %+v", resp)
	}
}

func TestTurnEndpointEmptyMessage(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/lyra", "", entities.ConversationRequest{
		Message: "   ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp entities.ConversationResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error == "" {
		t.Error("error field should be set for an empty message")
	}
}

func TestAuthProtectsTurnAndHistory(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret")
	e := newTestServer(t, issuer)

	rec := doJSON(t, e, http.MethodPost, "/lyra", "", entities.ConversationRequest{Message: "hi"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated turn: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPost, "/auth/session", "", SessionRequest{Speaker: "Chaitu"})
	if rec.Code != http.StatusOK {
		t.Fatalf("session: status = %d, want 200", rec.Code)
	}
	var session SessionResponse
	json.Unmarshal(rec.Body.Bytes(), &session)
	if session.Token == "" {
		t.Fatal("empty session token")
	}

	rec = doJSON(t, e, http.MethodPost, "/lyra", session.Token, entities.ConversationRequest{Message: "hi"})
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated turn: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/conversations", session.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: status = %d, want 200", rec.Code)
	}
	var history ConversationsResponse
	json.Unmarshal(rec.Body.Bytes(), &history)
	if len(history.Exchanges) != 1 {
		t.Errorf("got %d exchanges, want 1", len(history.Exchanges))
	}
}

func TestSessionEndpointAbsentWithoutSecret(t *testing.T) {
	e := newTestServer(t, nil)

	rec := doJSON(t, e, http.MethodPost, "/auth/session", "", SessionRequest{})
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("session endpoint should not exist without a secret, got %d", rec.Code)
	}
}

func TestConversationsLimit(t *testing.T) {
	e := newTestServer(t, nil)

	for _, msg := range []string{"one", "two", "three"} {
		doJSON(t, e, http.MethodPost, "/lyra", "", entities.ConversationRequest{Message: msg})
	}

	rec := doJSON(t, e, http.MethodGet, "/conversations?limit=2", "", nil)
	var resp ConversationsResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Exchanges) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(resp.Exchanges))
	}
	if resp.Exchanges[1].Message != "three" {
		t.Errorf("newest exchange = %q, want three", resp.Exchanges[1].Message)
	}

	rec = doJSON(t, e, http.MethodGet, "/conversations?limit=nope", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want 400", rec.Code)
	}
}

func TestParseCORSOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{"*"}},
		{"  ,  ", []string{"*"}},
		{"http://localhost:3000", []string{"http://localhost:3000"}},
		{"http://a.example, http://b.example", []string{"http://a.example", "http://b.example"}},
		{"https://app.example/", []string{"https://app.example"}},
		{"https://a.example/, https://b.example", []string{"https://a.example", "https://b.example"}},
		{"/", []string{"*"}},
	}
	for _, tt := range tests {
		if got := ParseCORSOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseCORSOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
