package messages

import (
	"github.com/google/uuid"
	"github.com/kkk9131/new-gate-sub000/pkg/dispatch"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
)

// ExecuteRequest starts one orchestration run. Credentials are the
// caller-supplied per-provider keys, before the environment merge.
type ExecuteRequest struct {
	RequestID   uuid.UUID
	Request     string
	Credentials map[string]string
	UserID      string
	Dispatch    dispatch.Dispatcher
}

// ExecuteResult is the orchestrator's single reply: always a report string,
// never a fault.
type ExecuteResult struct {
	RequestID uuid.UUID
	Report    string
}

// RunAssignment hands one assignment to an execution agent.
type RunAssignment struct {
	RequestID  uuid.UUID
	Assignment models.Assignment
	Provider   models.Provider
	UserID     string
}

// AgentResult is an execution agent's terminal message to its parent,
// emitted for both success and structured failure.
type AgentResult struct {
	ScreenID int
	AppID    string
	Outcome  models.AgentOutcome
}

// ReportError signals an agent that could not even produce a structured
// outcome; the orchestrator synthesizes a failed result for its screen.
type ReportError struct {
	ScreenID int
	AppID    string
	Err      string
}

// GetStatus asks a running orchestrator for its progress snapshot.
type GetStatus struct{}

// Status is the orchestrator's answer to GetStatus.
type Status struct {
	RequestID uuid.UUID             `json:"requestId"`
	Strategy  models.Strategy       `json:"strategy,omitempty"`
	Pending   int                   `json:"pending"`
	Results   []models.ScreenResult `json:"results"`
}
