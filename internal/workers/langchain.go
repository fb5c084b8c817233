package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/tmc/langchaingo/llms"
)

// chat adapts a langchaingo model to the Worker contract. inlineSystem folds
// the system message into the first user turn for vendors that reject a
// standalone system role.
type chat struct {
	model        llms.Model
	inlineSystem bool
}

func (c *chat) Generate(ctx context.Context, history []models.Message, tools []models.ToolDefinition, opts Options) (Completion, error) {
	msgs := convertHistory(history, c.inlineSystem)

	var callOpts []llms.CallOption
	if len(tools) > 0 {
		callOpts = append(callOpts, llms.WithTools(convertTools(tools)))
	}
	if opts.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	if opts.StreamFunc != nil {
		callOpts = append(callOpts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			opts.StreamFunc(string(chunk))
			return nil
		}))
	}

	resp, err := c.model.GenerateContent(ctx, msgs, callOpts...)
	if err != nil {
		return Completion{}, fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("empty model response")
	}

	choice := resp.Choices[0]
	return Completion{
		Content:   choice.Content,
		ToolCalls: normalizeToolCalls(choice.ToolCalls),
		Usage:     usageFrom(choice.GenerationInfo),
	}, nil
}

// convertHistory separates the system message from the rest of the turn and
// maps the remainder onto langchaingo roles.
func convertHistory(history []models.Message, inlineSystem bool) []llms.MessageContent {
	var system string
	rest := make([]models.Message, 0, len(history))
	for _, m := range history {
		if m.Role == models.RoleSystem {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}

	out := make([]llms.MessageContent, 0, len(rest)+1)
	if system != "" && !inlineSystem {
		out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}

	for i, m := range rest {
		switch m.Role {
		case models.RoleUser:
			content := m.Content
			if system != "" && inlineSystem && i == 0 {
				content = system + "\n\n" + content
			}
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, content))
		case models.RoleAssistant:
			var parts []llms.ContentPart
			if m.Content != "" {
				parts = append(parts, llms.TextContent{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				args, _ := json.Marshal(tc.Arguments)
				parts = append(parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts})
		case models.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: m.ToolCallID,
					Name:       m.Name,
					Content:    m.Content,
				}},
			})
		}
	}
	return out
}

func convertTools(defs []models.ToolDefinition) []llms.Tool {
	out := make([]llms.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return out
}

// normalizeToolCalls surfaces vendor tool calls as {id, name, arguments},
// parsing arguments from their serialized form and defaulting to an empty
// object when the model emitted broken json.
func normalizeToolCalls(calls []llms.ToolCall) []models.ToolCall {
	out := make([]models.ToolCall, 0, len(calls))
	for _, tc := range calls {
		if tc.FunctionCall == nil {
			continue
		}
		id := tc.ID
		if id == "" {
			id = uuid.NewString()
		}
		args := map[string]any{}
		if tc.FunctionCall.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
				args = map[string]any{}
			}
		}
		out = append(out, models.ToolCall{ID: id, Name: tc.FunctionCall.Name, Arguments: args})
	}
	return out
}

func usageFrom(info map[string]any) Usage {
	return Usage{
		InputTokens:  intFrom(info, "PromptTokens"),
		OutputTokens: intFrom(info, "CompletionTokens"),
		TotalTokens:  intFrom(info, "TotalTokens"),
	}
}

func intFrom(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
