package registry

import (
	"context"
	"strings"

	"github.com/kkk9131/new-gate-sub000/pkg/logger"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/rs/zerolog/log"
)

// ExtensionSource looks up tool definitions contributed by one installed,
// active extension for an exact (user, app) pair. A nil slice with nil error
// means "no extension", which is the common case, not a failure.
type ExtensionSource interface {
	Lookup(ctx context.Context, userID, appID string) ([]models.ToolDefinition, error)
}

// Registry aggregates built-in tools with extension-provided ones.
type Registry struct {
	extensions ExtensionSource
}

// New builds a registry. extensions may be nil to disable the augmentation.
func New(extensions ExtensionSource) *Registry {
	return &Registry{extensions: extensions}
}

// Apps returns the known app ids in inference priority order.
func (r *Registry) Apps() []string {
	return appPriority
}

// DefaultApp is the fallback binding when no app can be inferred.
func (r *Registry) DefaultApp() string {
	return appPriority[0]
}

// KnownApp reports whether id names an application of the desktop.
func (r *Registry) KnownApp(id string) bool {
	_, ok := builtinTools[id]
	return ok
}

// MatchApp scans request text for app-name keywords and returns the single
// matching app. Ambiguous or empty matches return false so planning falls
// through to decomposition.
func (r *Registry) MatchApp(request string) (string, bool) {
	lower := strings.ToLower(request)
	matched := ""
	for _, app := range appPriority {
		for _, kw := range appKeywords[app] {
			if strings.Contains(lower, kw) {
				if matched != "" && matched != app {
					return "", false
				}
				matched = app
				break
			}
		}
	}
	return matched, matched != ""
}

// LoadTools returns the tool catalog for an app: always the built-ins, plus
// one extension's tools when a user identity is present and the lookup
// succeeds. Lookup failure is logged and skipped; tool loading never fails a
// plan.
func (r *Registry) LoadTools(ctx context.Context, appID, userID string) []models.ToolDefinition {
	tools := make([]models.ToolDefinition, len(builtinTools[appID]))
	copy(tools, builtinTools[appID])

	if r.extensions == nil || userID == "" {
		return tools
	}

	ext, err := r.extensions.Lookup(ctx, userID, appID)
	if err != nil {
		log.Warn().Err(err).
			Str(logger.AppField, appID).
			Msg("extension tool lookup failed, continuing with built-ins")
		return tools
	}
	for _, t := range ext {
		// Extensions never contribute tools to another app's catalog.
		t.Meta.AppID = appID
		tools = append(tools, t)
	}
	return tools
}
