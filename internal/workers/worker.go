package workers

import (
	"context"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
)

// Options tune one generation call.
type Options struct {
	// JSONMode asks the vendor for a json-only answer where supported.
	JSONMode bool
	// StreamFunc, when set, receives incremental content chunks in addition
	// to the final completion.
	StreamFunc func(chunk string)
}

// Usage is the vendor-reported token accounting, zero when not reported.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Completion is the normalized result of one model call: text and/or tool
// call requests with arguments already parsed from their serialized form.
type Completion struct {
	Content   string
	ToolCalls []models.ToolCall
	Usage     Usage
}

// Worker is the uniform contract over pluggable language-model backends.
type Worker interface {
	Generate(ctx context.Context, history []models.Message, tools []models.ToolDefinition, opts Options) (Completion, error)
}
