package dispatch

import (
	"sync"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/rs/zerolog/log"
)

// ActionType enumerates the one-way UI notifications the core emits.
type ActionType string

const (
	SetLayout    ActionType = "SET_LAYOUT"
	OpenApp      ActionType = "OPEN_APP"
	UpdateStatus ActionType = "UPDATE_STATUS"
	AddMessage   ActionType = "ADD_MESSAGE"
)

// Action is an outbound, fire-and-forget UI notification. No acknowledgement
// is expected and replays must be safe for the consumer.
type Action struct {
	Type    ActionType `json:"type"`
	Payload any        `json:"payload"`
}

type LayoutPayload struct {
	Layout int `json:"layout"`
}

type OpenAppPayload struct {
	ScreenID int    `json:"screenId"`
	AppID    string `json:"appId"`
}

type StatusPayload struct {
	ScreenID int          `json:"screenId"`
	Status   models.State `json:"status"`
	Progress int          `json:"progress,omitempty"`
}

type MessagePayload struct {
	ScreenID int    `json:"screenId"`
	Message  string `json:"message"`
	Level    string `json:"level,omitempty"`
}

// Dispatcher is the sink for UI actions. Implementations must not block:
// concurrently running agents interleave their dispatches freely.
type Dispatcher func(Action)

// Discard drops every action.
func Discard(Action) {}

// Logging returns a dispatcher that writes each action to the global logger.
func Logging() Dispatcher {
	return func(a Action) {
		log.Debug().Str("type", string(a.Type)).Interface("payload", a.Payload).Msg("ui action")
	}
}

// Recorder buffers dispatched actions so a transport layer can replay them to
// the frontend after the request completes. Safe for concurrent dispatch.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
	next    Dispatcher
}

// NewRecorder records actions and forwards them to next (may be nil).
func NewRecorder(next Dispatcher) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Dispatch(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
	if r.next != nil {
		r.next(a)
	}
}

// Actions returns a copy of everything recorded so far.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}
