package buffer

import "github.com/kkk9131/new-gate-sub000/pkg/models"

// Conversation is one execution agent's private, append-only message history.
// It is never shared across agents.
type Conversation struct {
	Items []models.Message `json:"messages"`
}

func New(system, user string) *Conversation {
	return &Conversation{Items: []models.Message{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: user},
	}}
}

func (c *Conversation) Add(m models.Message) {
	c.Items = append(c.Items, m)
}

// AddToolResult appends a tool-role message answering the given call.
func (c *Conversation) AddToolResult(call models.ToolCall, content string) {
	c.Items = append(c.Items, models.Message{
		Role:       models.RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		Name:       call.Name,
	})
}
