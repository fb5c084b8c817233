package models

import "encoding/json"

// Complexity is the planner's cost estimate for a sub-task.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Subtask is one unit of work bound to exactly one target application.
// Immutable once the planner has produced it.
type Subtask struct {
	ID                  string     `json:"id"`
	Description         string     `json:"description"`
	AppID               string     `json:"appId"`
	EstimatedComplexity Complexity `json:"estimatedComplexity"`
	Dependencies        []string   `json:"dependencies,omitempty"`
}

// ToolMeta carries the per-application routing hints of a tool.
type ToolMeta struct {
	AppID             string   `json:"appId,omitempty"`
	PreferredScreenID int      `json:"preferredScreenId,omitempty"`
	RequiredInputs    []string `json:"requiredInputs,omitempty"`
}

// ToolDefinition describes one invocable capability of an application.
// Parameters is a JSON-schema-like object with "properties" and "required".
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Meta        ToolMeta       `json:"meta,omitempty"`
}

// RequiredInputs returns the explicit required-input list, falling back to
// the schema's "required" entry.
func (d ToolDefinition) RequiredInputs() []string {
	if len(d.Meta.RequiredInputs) > 0 {
		return d.Meta.RequiredInputs
	}
	raw, ok := d.Parameters["required"]
	if !ok {
		return nil
	}
	switch req := raw.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Assignment binds one sub-task to a screen, a suggested worker provider and
// its resolved tool catalog. Never mutated after planning.
type Assignment struct {
	ScreenID        int              `json:"screenId"`
	Subtask         Subtask          `json:"subtask"`
	AppID           string           `json:"appId"`
	SuggestedWorker Provider         `json:"suggestedWorker"`
	Tools           []ToolDefinition `json:"tools"`
}

// Layout names the screen split the desktop should present.
type Layout string

const (
	LayoutSingle Layout = "single"
	LayoutSplit2 Layout = "split-2"
	LayoutSplit3 Layout = "split-3"
	LayoutSplit4 Layout = "split-4"
)

// Screens returns the concrete screen count carried by the UI protocol.
func (l Layout) Screens() int {
	switch l {
	case LayoutSplit2:
		return 2
	case LayoutSplit3:
		return 3
	case LayoutSplit4:
		return 4
	default:
		return 1
	}
}

// Strategy selects how the orchestrator schedules the execution agents.
type Strategy string

const (
	StrategyParallel   Strategy = "parallel"
	StrategySequential Strategy = "sequential"
)

// PlanDecision is the single output of planning.
type PlanDecision struct {
	Layout      Layout       `json:"layout"`
	Assignments []Assignment `json:"assignments"`
	Strategy    Strategy     `json:"strategy"`
}

// ToolCall is a model-requested invocation, normalized across vendors.
// Arguments are already parsed from their serialized form.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Role of a conversation message exchanged with a worker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is the unit exchanged with a model backend. Each execution agent
// owns a private, append-only history of these.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
}

// AgentFailure is the structured payload an execution agent returns when any
// tool round recorded an error condition.
type AgentFailure struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Partial string   `json:"partial,omitempty"`
}

// AgentOutcome is what one execution agent run produces: either the raw model
// content, or a failure payload.
type AgentOutcome struct {
	Content string        `json:"content,omitempty"`
	Failure *AgentFailure `json:"failure,omitempty"`
}

// Value renders the outcome the way it is fed to the verifier: failures as
// their JSON payload, successes as the plain content.
func (o AgentOutcome) Value() string {
	if o.Failure != nil {
		b, _ := json.Marshal(o.Failure)
		return string(b)
	}
	return o.Content
}

// ScreenResult is one agent's collected result, success or failure.
type ScreenResult struct {
	ScreenID int    `json:"screenId"`
	AppID    string `json:"appId"`
	Result   string `json:"result"`
	Failed   bool   `json:"failed,omitempty"`
}

// VerificationReport is the verifier's structured judgment.
type VerificationReport struct {
	Success     bool     `json:"success"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Report      string   `json:"report"`
}
