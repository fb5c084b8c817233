package actor

import (
	"context"
	"fmt"
	"sort"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	executorActor "github.com/kkk9131/new-gate-sub000/internal/agents/executor/actor"
	executorHandler "github.com/kkk9131/new-gate-sub000/internal/agents/executor/handler"
	"github.com/kkk9131/new-gate-sub000/internal/guardrail"
	"github.com/kkk9131/new-gate-sub000/internal/planner"
	"github.com/kkk9131/new-gate-sub000/internal/verifier"
	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/dispatch"
	"github.com/kkk9131/new-gate-sub000/pkg/logger"
	"github.com/kkk9131/new-gate-sub000/pkg/messages"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Dependencies are the long-lived collaborators shared by every orchestrator
// actor. Built once at process start.
type Dependencies struct {
	Planner  *planner.Planner
	Verifier *verifier.Verifier
	Workers  *workers.Registry
	Handler  *executorHandler.Handler
	Merge    func(caller map[string]string) models.Credentials
}

// Orchestrator drives one request end to end: plan, spawn execution agents
// per the strategy, collect every screen's result, verify, and reply exactly
// once. One actor per request; it stops itself after replying.
type Orchestrator struct {
	deps Dependencies

	id       uuid.UUID
	request  string
	userID   string
	creds    models.Credentials
	dispatch dispatch.Dispatcher
	replyTo  *actor.PID

	strategy models.Strategy
	queue    []messages.RunAssignment
	pending  int
	results  []models.ScreenResult
}

func New(deps Dependencies) actor.Producer {
	return func() actor.Actor {
		return &Orchestrator{deps: deps}
	}
}

func (agent *Orchestrator) Receive(ac actor.Context) {
	l := log.With().Fields(map[string]interface{}{logger.ActorIDField: ac.Self().GetId(), logger.AgentNameField: "orchestrator"}).Logger()
	switch msg := ac.Message().(type) {
	case *actor.Started:
		l.Debug().Msg("starting actor")
	case *actor.Stopping:
		l.Debug().Msg("stopping actor")
	case *actor.Stopped:
		l.Debug().Msg("stopped actor and its children")
	case *actor.Restarting:
		l.Debug().Msg("restarting actor")
	case *actor.Terminated:
		l.Debug().Msg("child actor terminated")
	case messages.ExecuteRequest:
		l := l.With().Str(logger.RequestIDField, msg.RequestID.String()).Logger()
		l.Info().Msg("ExecuteRequest received")
		agent.begin(ac, msg, l)
	case messages.AgentResult:
		l.Debug().Int(logger.ScreenField, msg.ScreenID).Msg("AgentResult received from execution agent")
		agent.collect(ac, models.ScreenResult{
			ScreenID: msg.ScreenID,
			AppID:    msg.AppID,
			Result:   msg.Outcome.Value(),
			Failed:   msg.Outcome.Failure != nil,
		})
	case messages.ReportError:
		l.Warn().Int(logger.ScreenField, msg.ScreenID).Str("error", msg.Err).Msg("ReportError received from execution agent")
		outcome := models.AgentOutcome{Failure: &models.AgentFailure{
			Success: false,
			Message: msg.Err,
			Errors:  []string{msg.Err},
		}}
		agent.collect(ac, models.ScreenResult{
			ScreenID: msg.ScreenID,
			AppID:    msg.AppID,
			Result:   outcome.Value(),
			Failed:   true,
		})
	case messages.GetStatus:
		ac.Respond(messages.Status{
			RequestID: agent.id,
			Strategy:  agent.strategy,
			Pending:   agent.pending + len(agent.queue),
			Results:   agent.results,
		})
	default:
		l.Warn().Msgf("unknown message: %v", msg)
	}
}

// begin plans the request and schedules the execution agents. Planning and
// credential problems are configuration errors: they come back to the caller
// as the report text, never as a fault.
func (agent *Orchestrator) begin(ac actor.Context, msg messages.ExecuteRequest, l zerolog.Logger) {
	agent.id = msg.RequestID
	agent.request = msg.Request
	agent.userID = msg.UserID
	agent.replyTo = ac.Sender()
	agent.dispatch = msg.Dispatch
	if agent.dispatch == nil {
		agent.dispatch = dispatch.Discard
	}
	agent.creds = agent.deps.Merge(msg.Credentials)

	if !agent.creds.Has(models.PrimaryProvider) {
		agent.reply(ac, fmt.Sprintf("configuration error: no credential for provider %q", models.PrimaryProvider))
		return
	}

	decision, err := agent.deps.Planner.Plan(context.Background(), msg.Request, agent.creds, msg.UserID)
	if err != nil {
		agent.reply(ac, fmt.Sprintf("configuration error: planning failed: %v", err))
		return
	}
	agent.strategy = decision.Strategy
	l.Info().Int("assignments", len(decision.Assignments)).Str("strategy", string(decision.Strategy)).Msg("plan ready")

	runs := make([]messages.RunAssignment, 0, len(decision.Assignments))
	for _, a := range decision.Assignments {
		provider, err := agent.deps.Workers.Substitute(a.SuggestedWorker, agent.creds)
		if err != nil {
			agent.reply(ac, fmt.Sprintf("configuration error: %v", err))
			return
		}
		runs = append(runs, messages.RunAssignment{
			RequestID:  msg.RequestID,
			Assignment: a,
			Provider:   provider,
			UserID:     msg.UserID,
		})
	}

	agent.dispatch(dispatch.Action{Type: dispatch.SetLayout, Payload: dispatch.LayoutPayload{Layout: decision.Layout.Screens()}})

	agent.queue = runs
	if decision.Strategy == models.StrategySequential {
		agent.spawnNext(ac)
		return
	}
	for len(agent.queue) > 0 {
		agent.spawnNext(ac)
	}
}

func (agent *Orchestrator) spawnNext(ac actor.Context) {
	run := agent.queue[0]
	agent.queue = agent.queue[1:]
	agent.pending++

	props := actor.PropsFromProducer(executorActor.New(agent.deps.Handler, agent.deps.Workers, agent.creds, agent.dispatch))
	child := ac.Spawn(props)
	ac.Send(child, run)
}

// collect records one screen's result, advances a sequential queue, and
// finishes the request once every agent has reported.
func (agent *Orchestrator) collect(ac actor.Context, result models.ScreenResult) {
	agent.results = append(agent.results, result)
	agent.pending--

	if agent.strategy == models.StrategySequential && len(agent.queue) > 0 {
		agent.spawnNext(ac)
		return
	}
	if agent.pending > 0 || len(agent.queue) > 0 {
		return
	}
	agent.finish(ac)
}

func (agent *Orchestrator) finish(ac actor.Context) {
	sort.Slice(agent.results, func(i, j int) bool {
		return agent.results[i].ScreenID < agent.results[j].ScreenID
	})

	report := agent.deps.Verifier.Verify(context.Background(), agent.request, agent.results, agent.creds)
	agent.reply(ac, guardrail.Sanitize(report))
}

// reply answers the caller exactly once, resets the desktop and stops.
func (agent *Orchestrator) reply(ac actor.Context, report string) {
	agent.dispatch(dispatch.Action{Type: dispatch.SetLayout, Payload: dispatch.LayoutPayload{Layout: models.LayoutSingle.Screens()}})
	if agent.replyTo != nil {
		ac.Send(agent.replyTo, messages.ExecuteResult{RequestID: agent.id, Report: report})
	}
	ac.Stop(ac.Self())
}
