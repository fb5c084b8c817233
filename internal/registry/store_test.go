package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ExtensionStore {
	t.Helper()
	store, err := NewExtensionStore(filepath.Join(t.TempDir(), "extensions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestExtensionStore_InstallAndLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tools := []models.ToolDefinition{{
		Name:        "export_projects",
		Description: "Export all projects as csv.",
		Parameters:  map[string]any{"type": "object"},
	}}
	require.NoError(t, store.Install(ctx, "u1", "projects", "csv-export", tools))

	got, err := store.Lookup(ctx, "u1", "projects")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "export_projects", got[0].Name)

	t.Run("other user sees nothing", func(t *testing.T) {
		got, err := store.Lookup(ctx, "u2", "projects")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("reinstall replaces", func(t *testing.T) {
		replacement := []models.ToolDefinition{{Name: "export_projects_v2"}}
		require.NoError(t, store.Install(ctx, "u1", "projects", "csv-export", replacement))

		got, err := store.Lookup(ctx, "u1", "projects")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "export_projects_v2", got[0].Name)
	})

	t.Run("deactivate hides from lookup", func(t *testing.T) {
		require.NoError(t, store.Deactivate(ctx, "u1", "projects"))

		got, err := store.Lookup(ctx, "u1", "projects")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
