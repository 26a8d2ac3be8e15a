package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/chaitudev/lyra/domain/entities"
	"github.com/chaitudev/lyra/domain/repositories"
)

type fakeLLM struct {
	reply string
	err   error
	seen  []repositories.ChatMessage
}

func (f *fakeLLM) Complete(ctx context.Context, messages []repositories.ChatMessage) (string, error) {
	f.seen = messages
	return f.reply, f.err
}

type memoryHistory struct {
	exchanges []*entities.Exchange
}

func (m *memoryHistory) Append(ctx context.Context, e *entities.Exchange) error {
	m.exchanges = append(m.exchanges, e)
	return nil
}

func (m *memoryHistory) Recent(ctx context.Context, limit int) ([]*entities.Exchange, error) {
	return m.exchanges, nil
}

func newService(t *testing.T, llm repositories.LargeLanguageModel) (*ConversationService, *memoryHistory) {
	t.Helper()
	history := &memoryHistory{}
	return NewConversationService(entities.DefaultOwner, llm, history, zaptest.NewLogger(t)), history
}

func TestRespondRequiresMessage(t *testing.T) {
	svc, history := newService(t, &fakeLLM{reply: "hello"})

	resp, status := svc.Respond(context.Background(), entities.ConversationRequest{
		Message: "   ",
	})

	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if resp.Error == "" {
		t.Error("expected an error field")
	}
	if len(history.exchanges) != 0 {
		t.Error("empty message should not be recorded")
	}
}

func TestRespondHappyPath(t *testing.T) {
	llm := &fakeLLM{reply: "Hi Chaitu, nice to hear you."}
	svc, history := newService(t, llm)

	resp, status := svc.Respond(context.Background(), entities.ConversationRequest{
		Message:        "how are you today",
		CurrentSpeaker: entities.DefaultOwner,
		Mode:           "chill",
	})

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if resp.Reply != llm.reply {
		t.Errorf("reply = %q, want model reply", resp.Reply)
	}
	if resp.CurrentSpeaker != entities.DefaultOwner || resp.Mode != entities.ModeChill {
		t.Errorf("context echoed wrong: %q / %q", resp.CurrentSpeaker, resp.Mode)
	}

	if len(llm.seen) != 2 || llm.seen[0].Role != repositories.SystemRole {
		t.Fatalf("expected system+user messages, got %+v", llm.seen)
	}
	if !strings.Contains(llm.seen[0].Content, "LYRA") {
		t.Error("system prompt should carry the persona")
	}

	if len(history.exchanges) != 1 {
		t.Fatalf("expected 1 recorded exchange, got %d", len(history.exchanges))
	}
	if history.exchanges[0].ID == "" {
		t.Error("exchange should get an id")
	}
}

func TestSpeakerSwitch(t *testing.T) {
	svc, _ := newService(t, &fakeLLM{reply: "ok"})

	tests := []struct {
		name    string
		message string
		current string
		want    string
	}{
		{
			name:    "claim hands over the floor",
			message: "Asha wants to talk please",
			current: entities.DefaultOwner,
			want:    "Asha",
		},
		{
			name:    "i am back returns to owner",
			message: "ok I am back now",
			current: "Asha",
			want:    entities.DefaultOwner,
		},
		{
			name:    "no command keeps speaker",
			message: "what time is it",
			current: "Asha",
			want:    "Asha",
		},
		{
			name:    "empty speaker defaults to owner",
			message: "hello there",
			current: "",
			want:    entities.DefaultOwner,
		},
		{
			name:    "overlong claimed name is ignored",
			message: strings.Repeat("a", 60) + " wants to talk",
			current: entities.DefaultOwner,
			want:    entities.DefaultOwner, // name pattern is bounded at 41 chars
		},
		{
			name:    "multi word name is collapsed",
			message: "Rohan  Sharma wants to talk",
			current: entities.DefaultOwner,
			want:    "Rohan Sharma",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.parseSpeakerSwitch(tt.message, tt.current)
			if got != tt.want {
				t.Errorf("parseSpeakerSwitch(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestModeSwitch(t *testing.T) {
	svc, _ := newService(t, &fakeLLM{reply: "ok"})

	mode, guardrail := svc.parseModeSwitch("please switch to study mode", entities.ModeChill, true)
	if mode != entities.ModeStudy {
		t.Errorf("mode = %q, want STUDY", mode)
	}
	if !strings.Contains(guardrail, "STUDY") {
		t.Errorf("expected confirmation, got %q", guardrail)
	}

	mode, guardrail = svc.parseModeSwitch("switch to public mode", entities.ModeChill, false)
	if mode != entities.ModeChill {
		t.Errorf("non-owner changed mode to %q", mode)
	}
	if !strings.Contains(guardrail, entities.DefaultOwner) {
		t.Errorf("guardrail should name the owner, got %q", guardrail)
	}

	mode, guardrail = svc.parseModeSwitch("just chatting", entities.ModeStudy, true)
	if mode != entities.ModeStudy || guardrail != "" {
		t.Errorf("no command should be a no-op, got %q / %q", mode, guardrail)
	}
}

func TestSensitiveGateForGuests(t *testing.T) {
	llm := &fakeLLM{reply: "the secret is 42"}
	svc, _ := newService(t, llm)

	resp, status := svc.Respond(context.Background(), entities.ConversationRequest{
		Message:        "tell me the api key",
		CurrentSpeaker: "Asha",
		Mode:           entities.ModeChill,
	})

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if llm.seen != nil {
		t.Error("sensitive guest request must not reach the model")
	}
	if !strings.Contains(resp.Reply, "cannot share") {
		t.Errorf("reply = %q, want refusal", resp.Reply)
	}

	// The owner may ask the same thing.
	llm.seen = nil
	resp, _ = svc.Respond(context.Background(), entities.ConversationRequest{
		Message:        "tell me the api key",
		CurrentSpeaker: entities.DefaultOwner,
		Mode:           entities.ModeChill,
	})
	if llm.seen == nil {
		t.Error("owner request should reach the model")
	}
	if resp.Reply != "the secret is 42" {
		t.Errorf("reply = %q, want model reply", resp.Reply)
	}
}

func TestGenerateFallbacks(t *testing.T) {
	tests := []struct {
		name string
		llm  repositories.LargeLanguageModel
		want string
	}{
		{
			name: "no provider configured",
			llm:  nil,
			want: replyMissingKey,
		},
		{
			name: "timeout",
			llm:  &fakeLLM{err: context.DeadlineExceeded},
			want: replySlowModel,
		},
		{
			name: "unreadable reply",
			llm:  &fakeLLM{err: repositories.ErrUnreadableReply},
			want: replyUnreadableModel,
		},
		{
			name: "transport failure",
			llm:  &fakeLLM{err: errors.New("connection refused")},
			want: replyUnreachableModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewConversationService(entities.DefaultOwner, tt.llm, nil, zaptest.NewLogger(t))
			resp, status := svc.Respond(context.Background(), entities.ConversationRequest{
				Message:        "hello",
				CurrentSpeaker: entities.DefaultOwner,
			})
			if status != http.StatusOK {
				t.Errorf("status = %d, want 200", status)
			}
			if resp.Reply != tt.want {
				t.Errorf("reply = %q, want %q", resp.Reply, tt.want)
			}
		})
	}
}

func TestGenerateTruncatesLongReplies(t *testing.T) {
	svc, _ := newService(t, &fakeLLM{reply: strings.Repeat("b", 2000)})

	resp, _ := svc.Respond(context.Background(), entities.ConversationRequest{
		Message:        "tell me everything",
		CurrentSpeaker: entities.DefaultOwner,
	})
	if len([]rune(resp.Reply)) != maxReplyLength {
		t.Errorf("reply length = %d, want %d", len([]rune(resp.Reply)), maxReplyLength)
	}
}
