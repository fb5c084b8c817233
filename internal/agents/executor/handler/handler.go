package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kkk9131/new-gate-sub000/internal/toolexec"
	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/logger"
	"github.com/kkk9131/new-gate-sub000/pkg/memory/buffer"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/kkk9131/new-gate-sub000/pkg/prompts"
	"github.com/kkk9131/new-gate-sub000/pkg/template"
	"github.com/rs/zerolog/log"
)

// Handler runs one assignment against one worker: a bounded tool loop of at
// most two model calls, with every tool outcome fed back into the agent's
// private conversation.
type Handler struct {
	executor toolexec.Executor
}

func New(executor toolexec.Executor) *Handler {
	return &Handler{executor: executor}
}

// Run never returns an error: anything that goes wrong inside the loop is
// collected into a structured failure outcome so the orchestrator always gets
// a result for the screen. onToolPhase fires once, right before the first
// tool invocation.
func (h *Handler) Run(ctx context.Context, worker workers.Worker, a models.Assignment, userID string, onToolPhase func()) models.AgentOutcome {
	l := log.With().Str(logger.AppField, a.AppID).Logger()

	conv, err := h.newConversation(a)
	if err != nil {
		return failure([]string{err.Error()}, "")
	}

	completion, err := worker.Generate(ctx, conv.Items, a.Tools, workers.Options{})
	if err != nil {
		return failure([]string{fmt.Sprintf("generate: %v", err)}, "")
	}
	content := completion.Content
	usage := completion.Usage

	var errs []string
	if len(completion.ToolCalls) > 0 {
		if onToolPhase != nil {
			onToolPhase()
		}
		conv.Add(models.Message{
			Role:      models.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		for _, call := range completion.ToolCalls {
			errs = append(errs, h.invoke(ctx, conv, a, call, userID)...)
		}

		final, err := worker.Generate(ctx, conv.Items, nil, workers.Options{})
		if err != nil {
			errs = append(errs, fmt.Sprintf("summarize: %v", err))
		} else {
			content = final.Content
			usage.InputTokens += final.Usage.InputTokens
			usage.OutputTokens += final.Usage.OutputTokens
			usage.TotalTokens += final.Usage.TotalTokens
		}
	}

	l.Debug().Int("inputTokens", usage.InputTokens).Int("outputTokens", usage.OutputTokens).Msg("assignment finished")
	if len(errs) > 0 {
		return failure(errs, content)
	}
	return models.AgentOutcome{Content: content}
}

// invoke runs one tool call and records its result in the conversation. The
// returned strings are error conditions; an empty slice is a clean call.
func (h *Handler) invoke(ctx context.Context, conv *buffer.Conversation, a models.Assignment, call models.ToolCall, userID string) []string {
	l := log.With().Str(logger.AppField, a.AppID).Str(logger.ToolField, call.Name).Logger()

	def, ok := findTool(a.Tools, call.Name)
	if !ok {
		msg := fmt.Sprintf("unknown tool %q", call.Name)
		l.Warn().Msg("model requested a tool outside its catalog")
		conv.AddToolResult(call, errorResult(msg))
		return []string{msg}
	}

	if missing := missingInputs(def, call.Arguments); len(missing) > 0 {
		msg := fmt.Sprintf("tool %q missing required inputs: %v", call.Name, missing)
		l.Warn().Strs("missing", missing).Msg("refusing tool call with missing inputs")
		conv.AddToolResult(call, errorResult(msg))
		return []string{msg}
	}

	l.Info().Msg("invoking tool")
	result, err := h.executor.ExecuteTool(ctx, call.Name, call.Arguments, userID, a.AppID)
	if err != nil {
		msg := fmt.Sprintf("tool %q: %v", call.Name, err)
		l.Error().Err(err).Msg("tool invocation failed")
		conv.AddToolResult(call, errorResult(msg))
		return []string{msg}
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		msg := fmt.Sprintf("encode result of %q: %v", call.Name, err)
		conv.AddToolResult(call, errorResult(msg))
		return []string{msg}
	}
	conv.AddToolResult(call, string(encoded))

	if success, ok := result["success"].(bool); ok && !success {
		msg := fmt.Sprintf("tool %q reported failure", call.Name)
		if detail, ok := result["message"].(string); ok && detail != "" {
			msg = fmt.Sprintf("tool %q reported failure: %s", call.Name, detail)
		}
		return []string{msg}
	}
	return nil
}

func (h *Handler) newConversation(a models.Assignment) (*buffer.Conversation, error) {
	catalog, err := json.Marshal(a.Tools)
	if err != nil {
		return nil, fmt.Errorf("encode tool catalog: %w", err)
	}
	system, err := template.Parse(prompts.AgentSystem, struct {
		AppID string
		Task  string
		Tools string
	}{AppID: a.AppID, Task: a.Subtask.Description, Tools: string(catalog)})
	if err != nil {
		return nil, fmt.Errorf("render agent prompt: %w", err)
	}
	return buffer.New(system, "Start the task."), nil
}

func findTool(tools []models.ToolDefinition, name string) (models.ToolDefinition, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return models.ToolDefinition{}, false
}

// missingInputs lists required arguments that are absent, nil or an empty
// string. The call must not reach the executor while this is non-empty.
func missingInputs(def models.ToolDefinition, args map[string]any) []string {
	var missing []string
	for _, name := range def.RequiredInputs() {
		v, ok := args[name]
		if !ok || v == nil {
			missing = append(missing, name)
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func errorResult(msg string) string {
	b, _ := json.Marshal(map[string]any{"success": false, "error": msg})
	return string(b)
}

func failure(errs []string, partial string) models.AgentOutcome {
	return models.AgentOutcome{Failure: &models.AgentFailure{
		Success: false,
		Message: errs[0],
		Errors:  errs,
		Partial: partial,
	}}
}
