package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tools []models.ToolDefinition
	err   error
}

func (f *fakeSource) Lookup(context.Context, string, string) ([]models.ToolDefinition, error) {
	return f.tools, f.err
}

func TestRegistry_MatchApp(t *testing.T) {
	r := New(nil)

	tests := []struct {
		name    string
		request string
		want    string
		ok      bool
	}{
		{"english keyword", "create a new project called migration", "projects", true},
		{"japanese keyword", "新規プロジェクト「サーバー移行」を作成して", "projects", true},
		{"calendar keyword", "明日の予定を追加して", "calendar", true},
		{"case insensitive", "Open the CALENDAR", "calendar", true},
		{"ambiguous two apps", "プロジェクトの予定を確認", "", false},
		{"no match", "こんにちは", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.MatchApp(tt.request)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_KnownApp(t *testing.T) {
	r := New(nil)
	assert.True(t, r.KnownApp("projects"))
	assert.True(t, r.KnownApp("settings"))
	assert.False(t, r.KnownApp("browser"))
	assert.Equal(t, "projects", r.DefaultApp())
}

func TestRegistry_LoadTools(t *testing.T) {
	ctx := context.Background()

	t.Run("builtins only without source", func(t *testing.T) {
		r := New(nil)
		tools := r.LoadTools(ctx, "projects", "u1")
		require.Len(t, tools, 3)
		assert.Equal(t, "create_project", tools[0].Name)
	})

	t.Run("extension tools appended and rebound to the app", func(t *testing.T) {
		r := New(&fakeSource{tools: []models.ToolDefinition{
			{Name: "export_projects", Meta: models.ToolMeta{AppID: "somewhere-else"}},
		}})
		tools := r.LoadTools(ctx, "projects", "u1")
		require.Len(t, tools, 4)
		assert.Equal(t, "export_projects", tools[3].Name)
		assert.Equal(t, "projects", tools[3].Meta.AppID)
	})

	t.Run("no user identity skips the lookup", func(t *testing.T) {
		r := New(&fakeSource{tools: []models.ToolDefinition{{Name: "export_projects"}}})
		tools := r.LoadTools(ctx, "projects", "")
		assert.Len(t, tools, 3)
	})

	t.Run("lookup failure keeps builtins", func(t *testing.T) {
		r := New(&fakeSource{err: errors.New("db locked")})
		tools := r.LoadTools(ctx, "notes", "u1")
		require.Len(t, tools, 1)
		assert.Equal(t, "create_note", tools[0].Name)
	})

	t.Run("builtin slice is copied, not aliased", func(t *testing.T) {
		r := New(nil)
		tools := r.LoadTools(ctx, "revenue", "")
		tools[0].Name = "mutated"
		again := r.LoadTools(ctx, "revenue", "")
		assert.Equal(t, "add_revenue_record", again[0].Name)
	})
}
