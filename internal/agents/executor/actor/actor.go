package actor

import (
	"context"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/kkk9131/new-gate-sub000/internal/agents/executor/handler"
	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/dispatch"
	"github.com/kkk9131/new-gate-sub000/pkg/logger"
	"github.com/kkk9131/new-gate-sub000/pkg/messages"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/rs/zerolog/log"
)

// Executor runs one assignment on one screen and reports the outcome to its
// parent. One actor per assignment; it stops itself when done.
type Executor struct {
	handler  *handler.Handler
	workers  *workers.Registry
	creds    models.Credentials
	dispatch dispatch.Dispatcher
	state    models.State
}

func New(h *handler.Handler, w *workers.Registry, creds models.Credentials, d dispatch.Dispatcher) actor.Producer {
	return func() actor.Actor {
		return &Executor{
			handler:  h,
			workers:  w,
			creds:    creds,
			dispatch: d,
			state:    models.Idle,
		}
	}
}

func (agent *Executor) Receive(ac actor.Context) {
	l := log.With().Fields(map[string]interface{}{logger.ActorIDField: ac.Self().GetId(), logger.AgentNameField: "executor"}).Logger()
	switch msg := ac.Message().(type) {
	case *actor.Started:
		l.Debug().Msg("starting actor")
	case *actor.Stopping:
		l.Debug().Msg("stopping actor")
	case *actor.Stopped:
		l.Debug().Msg("stopped actor")
	case *actor.Restarting:
		l.Debug().Msg("restarting actor")
	case messages.RunAssignment:
		screen := msg.Assignment.ScreenID
		l := l.With().Str(logger.RequestIDField, msg.RequestID.String()).Int(logger.ScreenField, screen).Str(logger.AppField, msg.Assignment.AppID).Logger()
		l.Debug().Msgf("RunAssignment received: %v", msg.Assignment.Subtask.ID)

		agent.state = models.Initializing
		agent.dispatch(dispatch.Action{Type: dispatch.OpenApp, Payload: dispatch.OpenAppPayload{ScreenID: screen, AppID: msg.Assignment.AppID}})
		agent.status(screen, models.Initializing, 10)

		worker, err := agent.workers.Resolve(context.Background(), msg.Provider, agent.creds)
		if err != nil {
			l.Error().Err(err).Str(logger.ProviderField, string(msg.Provider)).Msg("could not resolve worker")
			agent.reportErrorToParent(ac, msg, err.Error())
			return
		}

		agent.state = models.Thinking
		agent.status(screen, models.Thinking, 40)
		l.Info().Str(logger.ProviderField, string(msg.Provider)).Msg("running assignment...")

		outcome := agent.handler.Run(context.Background(), worker, msg.Assignment, msg.UserID, func() {
			agent.state = models.Executing
			agent.status(screen, models.Executing, 70)
		})

		if outcome.Failure != nil {
			agent.state = models.Errored
			agent.status(screen, models.Errored, 100)
			agent.message(screen, outcome.Failure.Message, "error")
			l.Warn().Strs("errors", outcome.Failure.Errors).Msg("assignment failed")
		} else {
			agent.state = models.Idle
			agent.status(screen, models.Idle, 100)
			agent.message(screen, outcome.Content, "info")
			l.Info().Msg("assignment complete")
		}

		ac.Send(ac.Parent(), messages.AgentResult{
			ScreenID: screen,
			AppID:    msg.Assignment.AppID,
			Outcome:  outcome,
		})
		ac.Stop(ac.Self())
	default:
		l.Warn().Msgf("unknown message: %v", msg)
	}
}

func (agent *Executor) status(screen int, state models.State, progress int) {
	agent.dispatch(dispatch.Action{Type: dispatch.UpdateStatus, Payload: dispatch.StatusPayload{
		ScreenID: screen,
		Status:   state,
		Progress: progress,
	}})
}

func (agent *Executor) message(screen int, text, level string) {
	if text == "" {
		return
	}
	agent.dispatch(dispatch.Action{Type: dispatch.AddMessage, Payload: dispatch.MessagePayload{
		ScreenID: screen,
		Message:  text,
		Level:    level,
	}})
}

func (agent *Executor) reportErrorToParent(ac actor.Context, msg messages.RunAssignment, errMsg string) {
	agent.state = models.Errored
	agent.status(msg.Assignment.ScreenID, models.Errored, 100)
	log.Error().Str(logger.AppField, msg.Assignment.AppID).Msg("reporting error to parent...")
	ac.Send(ac.Parent(), messages.ReportError{
		ScreenID: msg.Assignment.ScreenID,
		AppID:    msg.Assignment.AppID,
		Err:      errMsg,
	})
	ac.Stop(ac.Self())
}
