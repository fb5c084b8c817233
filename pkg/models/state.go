package models

// State of one execution agent, surfaced to the desktop through UPDATE_STATUS
// actions. There is deliberately no terminal "completed" state: only the
// orchestrator's aggregate report claims completion.
type State string

const (
	Idle         State = "idle"
	Initializing State = "initializing"
	Thinking     State = "thinking"
	Executing    State = "executing"
	Errored      State = "error"
)
