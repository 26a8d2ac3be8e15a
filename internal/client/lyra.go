// Package client talks to the LYRA backend on behalf of the assistant.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/entities"
	"github.com/chaitudev/lyra/internal/interaction"
	"github.com/chaitudev/lyra/internal/sanitize"
	"github.com/chaitudev/lyra/internal/voice"
)

// Spoken fallbacks for the two ways a send can disappoint.
const (
	FallbackReply     = "I do not have a reply for that just yet."
	ConnectionTrouble = "I am having trouble reaching my mind right now. Please try again in a moment."
)

const requestTimeout = 20 * time.Second

// Client sends sanitized messages to the backend's /lyra endpoint and
// applies the outcome to the interaction machine. Exactly one request per
// SendToLyra call: no retry, no backoff. Each request carries a token and
// only the newest outstanding token may apply its response, so a stale
// response is dropped instead of overwriting fresher state.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	machine    *interaction.Machine
	speaker    *voice.Speaker
	logger     *zap.Logger

	mu     sync.Mutex
	latest string
}

// New creates a conversation client. authToken may be empty when the
// backend runs without session auth.
func New(baseURL, authToken string, machine *interaction.Machine, speaker *voice.Speaker, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: requestTimeout},
		machine:    machine,
		speaker:    speaker,
		logger:     logger,
	}
}

// SendToLyra is the sole entry point: it moves the machine to Thinking,
// posts the sanitized message with the current session attributes, and
// converts the outcome into a state transition plus a spoken line. Failures
// are never propagated past this boundary.
func (c *Client) SendToLyra(ctx context.Context, userText string) {
	state := c.machine.Apply(interaction.Event{Kind: interaction.EventRequestStarted})

	token := uuid.NewString()
	c.mu.Lock()
	c.latest = token
	c.mu.Unlock()

	request := entities.ConversationRequest{
		Message:        sanitize.Clean(userText),
		CurrentSpeaker: state.CurrentSpeaker,
		Mode:           state.Mode,
	}

	response, err := c.post(ctx, token, request)

	if !c.stillLatest(token) {
		c.logger.Debug("dropping stale response", zap.String("token", token))
		return
	}

	if err != nil {
		c.logger.Warn("lyra request failed", zap.Error(err))
		c.fail(ctx)
		return
	}

	c.machine.Apply(interaction.Event{
		Kind:    interaction.EventReplyApplied,
		Speaker: response.CurrentSpeaker,
		Mode:    response.Mode,
	})

	reply := response.Reply
	if reply == "" {
		reply = FallbackReply
	}
	c.speaker.Speak(ctx, reply)
}

func (c *Client) stillLatest(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest == token
}

func (c *Client) fail(ctx context.Context) {
	c.machine.Apply(interaction.Event{Kind: interaction.EventRequestFailed})
	c.speaker.Speak(ctx, ConnectionTrouble)
}

// post issues the single HTTP call. Any transport error, non-2xx status,
// unparseable body, or body carrying an error field counts as failure.
func (c *Client) post(ctx context.Context, token string, request entities.ConversationRequest) (*entities.ConversationResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lyra", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", token)
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed entities.ConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{Status: resp.StatusCode, Message: parsed.Error}
	}
	if parsed.Error != "" {
		return nil, &BackendError{Status: resp.StatusCode, Message: parsed.Error}
	}

	return &parsed, nil
}

// BackendError reports a rejected conversation request.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return "lyra backend rejected the request"
	}
	return "lyra backend: " + e.Message
}
