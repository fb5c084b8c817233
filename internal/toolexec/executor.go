package toolexec

import "context"

// Executor is the narrow contract to the collaborator that actually mutates
// application data. Expected business failures come back as success:false in
// the result map, never as an error.
type Executor interface {
	ExecuteTool(ctx context.Context, name string, arguments map[string]any, userID, appID string) (map[string]any, error)
}

// Func adapts a function to the Executor contract.
type Func func(ctx context.Context, name string, arguments map[string]any, userID, appID string) (map[string]any, error)

func (f Func) ExecuteTool(ctx context.Context, name string, arguments map[string]any, userID, appID string) (map[string]any, error) {
	return f(ctx, name, arguments, userID, appID)
}
