package registry

import "github.com/kkk9131/new-gate-sub000/pkg/models"

// appPriority is the fixed order used for ambiguous app inference and for
// the keyword scan.
var appPriority = []string{"projects", "calendar", "revenue", "settings", "notes"}

// appKeywords matches app names in request text, in the product's two UI
// languages.
var appKeywords = map[string][]string{
	"projects": {"project", "プロジェクト", "案件"},
	"calendar": {"calendar", "カレンダー", "予定", "スケジュール"},
	"revenue":  {"revenue", "売上", "収益"},
	"settings": {"settings", "設定"},
	"notes":    {"note", "メモ", "ノート"},
}

var builtinTools = map[string][]models.ToolDefinition{
	"projects": {
		{
			Name:        "create_project",
			Description: "Create a new project with a name and optional description.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        map[string]any{"type": "string", "description": "Project name"},
					"description": map[string]any{"type": "string", "description": "What the project is about"},
				},
				"required": []string{"name"},
			},
			Meta: models.ToolMeta{AppID: "projects", RequiredInputs: []string{"name"}},
		},
		{
			Name:        "update_project_status",
			Description: "Move a project to a new status column.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"projectId": map[string]any{"type": "string"},
					"status":    map[string]any{"type": "string", "enum": []string{"planned", "active", "done"}},
				},
				"required": []string{"projectId", "status"},
			},
			Meta: models.ToolMeta{AppID: "projects"},
		},
		{
			Name:        "add_project_task",
			Description: "Add a task row to an existing project.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"projectId": map[string]any{"type": "string"},
					"title":     map[string]any{"type": "string"},
					"dueDate":   map[string]any{"type": "string", "description": "ISO date, optional"},
				},
				"required": []string{"projectId", "title"},
			},
			Meta: models.ToolMeta{AppID: "projects"},
		},
	},
	"calendar": {
		{
			Name:        "add_event",
			Description: "Add an event to the calendar.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"date":  map[string]any{"type": "string", "description": "ISO date"},
					"time":  map[string]any{"type": "string", "description": "HH:MM, optional"},
				},
				"required": []string{"title", "date"},
			},
			Meta: models.ToolMeta{AppID: "calendar"},
		},
		{
			Name:        "remove_event",
			Description: "Remove an event by id.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"eventId": map[string]any{"type": "string"},
				},
				"required": []string{"eventId"},
			},
			Meta: models.ToolMeta{AppID: "calendar"},
		},
	},
	"revenue": {
		{
			Name:        "add_revenue_record",
			Description: "Record a revenue entry for a month.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"month":  map[string]any{"type": "string", "description": "YYYY-MM"},
					"amount": map[string]any{"type": "number"},
					"source": map[string]any{"type": "string"},
				},
				"required": []string{"month", "amount"},
			},
			Meta: models.ToolMeta{AppID: "revenue"},
		},
	},
	"settings": {
		{
			Name:        "update_setting",
			Description: "Change one user setting.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"key":   map[string]any{"type": "string"},
					"value": map[string]any{"type": "string"},
				},
				"required": []string{"key", "value"},
			},
			// The settings surface always lives on the last split screen.
			Meta: models.ToolMeta{AppID: "settings", PreferredScreenID: 4},
		},
	},
	"notes": {
		{
			Name:        "create_note",
			Description: "Create a note with free-form text.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"body":  map[string]any{"type": "string"},
				},
				"required": []string{"body"},
			},
			Meta: models.ToolMeta{AppID: "notes"},
		},
	},
}
