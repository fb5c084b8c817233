package orchestrator

import (
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	orchestratorActor "github.com/kkk9131/new-gate-sub000/internal/agents/orchestrator/actor"
	"github.com/kkk9131/new-gate-sub000/pkg/messages"
)

// Dependencies re-exports the actor's dependency set so callers wire one
// package.
type Dependencies = orchestratorActor.Dependencies

// Start spawns a fresh orchestrator actor for one request.
func Start(root *actor.RootContext, deps Dependencies) *actor.PID {
	props := actor.PropsFromProducer(orchestratorActor.New(deps))
	return root.Spawn(props)
}

// Await sends the request and blocks until the orchestrator's single reply or
// the timeout.
func Await(root *actor.RootContext, pid *actor.PID, req messages.ExecuteRequest, timeout time.Duration) (string, error) {
	future := root.RequestFuture(pid, req, timeout)
	res, err := future.Result()
	if err != nil {
		return "", fmt.Errorf("await orchestrator: %w", err)
	}
	result, ok := res.(messages.ExecuteResult)
	if !ok {
		return "", fmt.Errorf("unexpected orchestrator reply of type %T", res)
	}
	return result.Report, nil
}

// Execute runs one request synchronously end to end and returns the final
// report text. The only errors are transport-level: timeouts and dead actors.
func Execute(root *actor.RootContext, deps Dependencies, req messages.ExecuteRequest, timeout time.Duration) (string, error) {
	return Await(root, Start(root, deps), req, timeout)
}
