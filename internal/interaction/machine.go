// Package interaction owns the session state machine that sits between the
// speech input adapter, the conversation client, and the UI.
//
// Adapters never mutate state themselves: they dispatch events to the
// Machine, whose pure transition function decides the next state. Every
// applied event notifies subscribers, so the UI is always a projection of
// the state held here.
package interaction

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chaitudev/lyra/domain/entities"
)

// Auto-recovery delays after a failure forced the Error status.
const (
	RecognitionRecoveryDelay = 1000 * time.Millisecond
	RequestRecoveryDelay     = 1200 * time.Millisecond
)

// EventKind identifies an interaction event.
type EventKind string

const (
	// EventRecognitionStarted fires when the recognition engine begins
	// capturing audio.
	EventRecognitionStarted EventKind = "recognition_started"
	// EventRecognitionStopped fires when the user explicitly stops an
	// active recognition before any result.
	EventRecognitionStopped EventKind = "recognition_stopped"
	// EventRecognitionEnded fires when the engine ends without this
	// attempt having produced a result or error transition.
	EventRecognitionEnded EventKind = "recognition_ended"
	// EventRecognitionFailed fires on an engine-reported error.
	EventRecognitionFailed EventKind = "recognition_failed"
	// EventEmptyTranscript fires when recognition produced no usable text.
	EventEmptyTranscript EventKind = "empty_transcript"
	// EventRequestStarted fires before any network activity of a send.
	EventRequestStarted EventKind = "request_started"
	// EventReplyApplied fires on a successful backend reply; Speaker and
	// Mode carry the optional session-attribute updates.
	EventReplyApplied EventKind = "reply_applied"
	// EventRequestFailed fires on any backend or transport failure.
	EventRequestFailed EventKind = "request_failed"
	// EventRecovered is dispatched by the auto-recovery timer.
	EventRecovered EventKind = "recovered"
	// EventCapabilityMissing fires when the platform offers no recognition
	// engine at all. Fatal to voice input for this session: no recovery
	// timer is scheduled.
	EventCapabilityMissing EventKind = "capability_missing"
)

// Event is a single input to the state machine. Speaker and Mode are only
// meaningful for EventReplyApplied; empty values mean "no change".
type Event struct {
	Kind    EventKind
	Speaker string
	Mode    string
}

// Transition applies one event to a state and returns the next state plus
// the auto-recovery delay to schedule (zero when none). It is pure: no
// clocks, no locks, no side effects.
func Transition(state entities.InteractionState, ev Event) (entities.InteractionState, time.Duration) {
	switch ev.Kind {
	case EventRecognitionStarted:
		state.RecognitionActive = true
		state.Status = entities.StatusListening
		return state, 0

	case EventRecognitionStopped:
		state.RecognitionActive = false
		state.Status = entities.StatusIdle
		return state, 0

	case EventRecognitionEnded:
		state.RecognitionActive = false
		// Ended without a result or error transition: fall back to idle.
		if state.Status == entities.StatusListening {
			state.Status = entities.StatusIdle
		}
		return state, 0

	case EventRecognitionFailed:
		state.RecognitionActive = false
		state.Status = entities.StatusError
		return state, RecognitionRecoveryDelay

	case EventEmptyTranscript:
		if state.Status == entities.StatusListening {
			state.Status = entities.StatusIdle
		}
		return state, 0

	case EventRequestStarted:
		state.Status = entities.StatusThinking
		return state, 0

	case EventReplyApplied:
		if ev.Speaker != "" {
			state.CurrentSpeaker = ev.Speaker
		}
		if ev.Mode != "" {
			state.Mode = ev.Mode
		}
		state.Status = entities.StatusIdle
		return state, 0

	case EventRequestFailed:
		state.Status = entities.StatusError
		return state, RequestRecoveryDelay

	case EventRecovered:
		if state.Status == entities.StatusError {
			state.Status = entities.StatusIdle
		}
		return state, 0

	case EventCapabilityMissing:
		state.RecognitionActive = false
		state.Status = entities.StatusError
		return state, 0
	}

	return state, 0
}

// Listener receives a snapshot after every applied event.
type Listener func(entities.InteractionState)

// Machine serializes event application over the single InteractionState
// and drives the auto-recovery timers. A pending recovery is cancelled as
// soon as a later event changes the status, so a stale timer can never
// clobber a newer state.
type Machine struct {
	mu        sync.Mutex
	state     entities.InteractionState
	listeners []Listener
	recovery  *time.Timer
	logger    *zap.Logger
}

// NewMachine creates a machine in the startup state for the given owner.
func NewMachine(owner string, logger *zap.Logger) *Machine {
	if owner == "" {
		owner = entities.DefaultOwner
	}
	return &Machine{
		state:  entities.NewInteractionState(owner),
		logger: logger,
	}
}

// Subscribe registers a listener for state snapshots. Listeners run
// synchronously after each applied event, outside the machine's lock.
func (m *Machine) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() entities.InteractionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Apply runs one event through the transition function, updates the state,
// manages the recovery timer, and notifies listeners.
func (m *Machine) Apply(ev Event) entities.InteractionState {
	m.mu.Lock()

	next, delay := Transition(m.state, ev)
	prev := m.state
	m.state = next

	// A status-changing event supersedes a pending auto-recovery; events
	// that leave the status alone (like a trailing recognition-ended) must
	// not defuse it.
	if (next.Status != prev.Status || delay > 0) && m.recovery != nil {
		m.recovery.Stop()
		m.recovery = nil
	}

	if delay > 0 {
		m.recovery = time.AfterFunc(delay, func() {
			m.Apply(Event{Kind: EventRecovered})
		})
	}

	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if m.logger != nil && prev.Status != next.Status {
		m.logger.Debug("interaction transition",
			zap.String("event", string(ev.Kind)),
			zap.String("from", string(prev.Status)),
			zap.String("to", string(next.Status)))
	}

	for _, l := range listeners {
		l(next)
	}
	return next
}
