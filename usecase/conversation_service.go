// Package usecase holds the two orchestrators: the assistant's speech input
// adapter and the backend's conversational turn handler.
package usecase

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/entities"
	"github.com/chaitudev/lyra/domain/repositories"
	"github.com/chaitudev/lyra/internal/sanitize"
)

const (
	maxReplyLength  = 900
	maxSpeakerName  = 42
	generateTimeout = 20 * time.Second
)

// Replies the backend falls back to when the model cannot answer.
const (
	replyMissingMessage   = "Please say something for me to process."
	replyMissingKey       = "Configuration issue: the model API key is missing on the server."
	replySlowModel        = "I am taking longer than usual to respond. Please try again in a moment."
	replyUnreachableModel = "I am unable to reach my intelligence service right now. Please try again soon."
	replyUnreadableModel  = "I received an unreadable response from the model service."
)

var (
	ownerReturns = regexp.MustCompile(`\bi am back\b`)
	speakerClaim = regexp.MustCompile(`(?i)\b([a-zA-Z][a-zA-Z\s\-']{0,40})\s+wants to talk\b`)
	modeCommand  = regexp.MustCompile(`switch to\s+(study|chill|public)\s+mode`)
	innerSpaces  = regexp.MustCompile(`\s+`)

	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)system status`),
		regexp.MustCompile(`(?i)hidden command`),
		regexp.MustCompile(`(?i)personality parameter`),
		regexp.MustCompile(`(?i)api key`),
		regexp.MustCompile(`(?i)secret`),
		regexp.MustCompile(`(?i)internal config`),
		regexp.MustCompile(`(?i)admin`),
	}
)

// ConversationService handles one conversational turn: command parsing,
// access policy, the model call, and history persistence.
type ConversationService struct {
	owner   string
	llm     repositories.LargeLanguageModel
	history repositories.HistoryRepository
	logger  *zap.Logger
}

// NewConversationService creates the backend turn handler. llm may be nil
// when no provider is configured; turns then answer with a configuration
// notice instead of failing. history may be nil to disable persistence.
func NewConversationService(
	owner string,
	llm repositories.LargeLanguageModel,
	history repositories.HistoryRepository,
	logger *zap.Logger,
) *ConversationService {
	if owner == "" {
		owner = entities.DefaultOwner
	}
	return &ConversationService{
		owner:   owner,
		llm:     llm,
		history: history,
		logger:  logger,
	}
}

// Owner returns the configured owner name.
func (s *ConversationService) Owner() string {
	return s.owner
}

// HasModel reports whether a model provider is configured.
func (s *ConversationService) HasModel() bool {
	return s.llm != nil
}

// Respond runs one turn and returns the response body plus HTTP status.
func (s *ConversationService) Respond(ctx context.Context, req entities.ConversationRequest) (entities.ConversationResponse, int) {
	message := sanitize.Clean(req.Message)
	speaker := sanitize.Clean(req.CurrentSpeaker)

	turn := entities.NewLyraContext(s.owner, speaker, req.Mode)

	if message == "" {
		return entities.ConversationResponse{
			Error: "Message is required.",
			Reply: replyMissingMessage,
		}, http.StatusBadRequest
	}

	turn.CurrentSpeaker = s.parseSpeakerSwitch(message, turn.CurrentSpeaker)
	isOwner := turn.IsOwner(s.owner)

	updatedMode, guardrail := s.parseModeSwitch(message, turn.Mode, isOwner)
	turn.Mode = updatedMode

	if guardrail != "" {
		return s.respond(ctx, turn, message, guardrail), http.StatusOK
	}

	if !isOwner && isSensitiveRequest(message) {
		return s.respond(ctx, turn, message,
			"I cannot share that information in the current access level."), http.StatusOK
	}

	reply := s.generate(ctx, message, turn, isOwner)
	return s.respond(ctx, turn, message, reply), http.StatusOK
}

func (s *ConversationService) respond(ctx context.Context, turn entities.LyraContext, message, reply string) entities.ConversationResponse {
	s.record(ctx, turn, message, reply)
	return entities.ConversationResponse{
		Reply:          reply,
		CurrentSpeaker: turn.CurrentSpeaker,
		Mode:           turn.Mode,
	}
}

// parseSpeakerSwitch applies the logical (not biometric) speaker rules:
// "XYZ wants to talk" hands the floor to XYZ, "i am back" returns it to the
// owner.
func (s *ConversationService) parseSpeakerSwitch(message, current string) string {
	if ownerReturns.MatchString(strings.ToLower(message)) {
		return s.owner
	}

	if match := speakerClaim.FindStringSubmatch(message); match != nil {
		candidate := strings.TrimSpace(match[1])
		candidate = innerSpaces.ReplaceAllString(candidate, " ")
		runes := []rune(candidate)
		if len(runes) > maxSpeakerName {
			candidate = string(runes[:maxSpeakerName])
		}
		return candidate
	}

	if current == "" {
		return s.owner
	}
	return current
}

// parseModeSwitch handles "switch to X mode" commands. Mode changes are
// owner-only; everyone else gets a guardrail reply and no change.
func (s *ConversationService) parseModeSwitch(message, current string, isOwner bool) (string, string) {
	match := modeCommand.FindStringSubmatch(strings.ToLower(message))
	if match == nil {
		return current, ""
	}

	requested := strings.ToUpper(match[1])
	if !entities.AllowedMode(requested) {
		return current, "I can only switch between study, chill, and public modes."
	}

	if !isOwner {
		return current, "Only " + s.owner + " can change my mode."
	}

	return requested, "Mode changed to " + requested + "."
}

func isSensitiveRequest(message string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

// buildSystemPrompt assembles the LYRA persona, mode style, and access
// policy for one turn.
func (s *ConversationService) buildSystemPrompt(mode string, isOwner bool) string {
	style := map[string]string{
		entities.ModeStudy:  "Be concise, educational, focused, and avoid jokes.",
		entities.ModeChill:  "Be friendly, warm, slightly casual, and helpful.",
		entities.ModePublic: "Be neutral, privacy-safe, and avoid sharing personal details.",
	}[mode]
	if style == "" {
		style = "Be friendly, warm, slightly casual, and helpful."
	}

	access := "Current speaker is not owner (" + s.owner + "). Do not reveal private/sensitive details or admin controls."
	if isOwner {
		access = "Owner speaker is " + s.owner + ". You may assist with system-level controls when requested."
	}

	return "You are LYRA, a female Indian AI voice assistant. " +
		"Tone: calm, intelligent, emotionally aware (not dramatic). " +
		"You speak in short voice-friendly replies suitable for TTS. " +
		"Do not use emojis. You can respond in English, Hindi, Marathi, or mixed language naturally. " +
		"Current behavior mode is " + mode + ". " + style + " " + access
}

// generate calls the model and maps every failure mode to a spoken-friendly
// fallback line. Failures never escape this method.
func (s *ConversationService) generate(ctx context.Context, message string, turn entities.LyraContext, isOwner bool) string {
	if s.llm == nil {
		return replyMissingKey
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	reply, err := s.llm.Complete(ctx, []repositories.ChatMessage{
		{Role: repositories.SystemRole, Content: s.buildSystemPrompt(turn.Mode, isOwner)},
		{Role: repositories.UserRole, Content: message},
	})
	if err != nil {
		s.logger.Warn("model call failed",
			zap.String("speaker", turn.CurrentSpeaker),
			zap.String("mode", turn.Mode),
			zap.Error(err))

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return replySlowModel
		case errors.Is(err, repositories.ErrUnreadableReply):
			return replyUnreadableModel
		default:
			return replyUnreachableModel
		}
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "I could not generate a complete reply at the moment."
	}

	runes := []rune(reply)
	if len(runes) > maxReplyLength {
		reply = string(runes[:maxReplyLength])
	}
	return reply
}

// record persists the exchange. Best effort: a storage failure is logged
// and never blocks the reply.
func (s *ConversationService) record(ctx context.Context, turn entities.LyraContext, message, reply string) {
	if s.history == nil {
		return
	}

	exchange := &entities.Exchange{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Speaker:   turn.CurrentSpeaker,
		Mode:      turn.Mode,
		Message:   message,
		Reply:     reply,
	}
	if err := s.history.Append(ctx, exchange); err != nil {
		s.logger.Warn("failed to record exchange", zap.Error(err))
	}
}
