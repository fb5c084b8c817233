package workers

import (
	"testing"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestNormalizeToolCalls(t *testing.T) {
	calls := normalizeToolCalls([]llms.ToolCall{
		{
			ID:           "call_1",
			FunctionCall: &llms.FunctionCall{Name: "create_project", Arguments: `{"name":"移行"}`},
		},
		{
			// no id from the vendor
			FunctionCall: &llms.FunctionCall{Name: "add_event", Arguments: ""},
		},
		{
			// broken arguments degrade to an empty object
			ID:           "call_3",
			FunctionCall: &llms.FunctionCall{Name: "create_note", Arguments: `{"title":`},
		},
		{
			// no function call at all
			ID: "call_4",
		},
	})

	require.Len(t, calls, 3)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "create_project", calls[0].Name)
	assert.Equal(t, map[string]any{"name": "移行"}, calls[0].Arguments)
	assert.NotEmpty(t, calls[1].ID)
	assert.Equal(t, map[string]any{}, calls[1].Arguments)
	assert.Equal(t, map[string]any{}, calls[2].Arguments)
}

func TestConvertHistory(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleSystem, Content: "be helpful"},
		{Role: models.RoleUser, Content: "do the task"},
		{Role: models.RoleAssistant, ToolCalls: []models.ToolCall{
			{ID: "call_1", Name: "create_project", Arguments: map[string]any{"name": "x"}},
		}},
		{Role: models.RoleTool, ToolCallID: "call_1", Name: "create_project", Content: `{"success":true}`},
	}

	t.Run("standalone system role", func(t *testing.T) {
		out := convertHistory(history, false)
		require.Len(t, out, 4)
		assert.Equal(t, llms.ChatMessageTypeSystem, out[0].Role)
		assert.Equal(t, llms.ChatMessageTypeHuman, out[1].Role)
		assert.Equal(t, llms.ChatMessageTypeAI, out[2].Role)
		assert.Equal(t, llms.ChatMessageTypeTool, out[3].Role)

		resp, ok := out[3].Parts[0].(llms.ToolCallResponse)
		require.True(t, ok)
		assert.Equal(t, "call_1", resp.ToolCallID)
	})

	t.Run("inlined system role", func(t *testing.T) {
		out := convertHistory(history, true)
		require.Len(t, out, 3)
		assert.Equal(t, llms.ChatMessageTypeHuman, out[0].Role)

		text, ok := out[0].Parts[0].(llms.TextContent)
		require.True(t, ok)
		assert.Contains(t, text.Text, "be helpful")
		assert.Contains(t, text.Text, "do the task")
	})
}

func TestUsageFrom(t *testing.T) {
	u := usageFrom(map[string]any{"PromptTokens": 12, "CompletionTokens": float64(7), "TotalTokens": int64(19)})
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 7, TotalTokens: 19}, u)

	assert.Zero(t, usageFrom(nil))
}
