package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/justinas/alice"
	"github.com/kkk9131/new-gate-sub000/internal/agents/orchestrator"
	"github.com/kkk9131/new-gate-sub000/internal/registry"
	"github.com/kkk9131/new-gate-sub000/pkg/dispatch"
	"github.com/kkk9131/new-gate-sub000/pkg/logger"
	"github.com/kkk9131/new-gate-sub000/pkg/messages"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// executeTimeout bounds one whole orchestration run at the transport edge;
// the core itself imposes no deadline.
const executeTimeout = 5 * time.Minute

type executeCommand struct {
	Request     string            `json:"request"`
	UserID      string            `json:"userId"`
	Credentials map[string]string `json:"credentials"`
}

type executeResponse struct {
	ID      string            `json:"id"`
	Report  string            `json:"report"`
	Actions []dispatch.Action `json:"actions"`
}

type getStatus struct {
	Status messages.Status `json:"status"`
}

type installCommand struct {
	UserID string                  `json:"userId"`
	AppID  string                  `json:"appId"`
	Name   string                  `json:"name"`
	Tools  []models.ToolDefinition `json:"tools"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	ac     *actor.RootContext
	server *http.Server
	state  *requestsCache
}

func New(ac *actor.RootContext, deps orchestrator.Dependencies, extensions *registry.ExtensionStore, addr string) *Server {
	r := chi.NewRouter()
	r.Use(logMiddleware())
	requests := newRequestsCache()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, struct {
			Status string `json:"status"`
		}{"ok"})
	})

	r.Post("/execute", func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Msg("execute request")
		cmd := executeCommand{}
		if err := unmarshalRequestBody(r, &cmd); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			log.Debug().Msg("cannot parse body")
			render.JSON(w, r, errorResponse{Error: "unable to parse body"})
			return
		}
		if cmd.Request == "" {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "request must not be empty"})
			return
		}

		id := uuid.New()
		recorder := dispatch.NewRecorder(dispatch.Logging())

		pid := orchestrator.Start(ac, deps)
		requests.add(id, pid)
		defer requests.remove(id)

		log.Info().Str(logger.RequestIDField, id.String()).Msg("orchestration started")
		report, err := orchestrator.Await(ac, pid, messages.ExecuteRequest{
			RequestID:   id,
			Request:     cmd.Request,
			Credentials: cmd.Credentials,
			UserID:      cmd.UserID,
			Dispatch:    recorder.Dispatch,
		}, executeTimeout)
		if err != nil {
			w.WriteHeader(http.StatusGatewayTimeout)
			log.Error().Str(logger.RequestIDField, id.String()).Err(err).Msg("orchestration did not reply")
			render.JSON(w, r, errorResponse{Error: "orchestration did not complete in time"})
			return
		}

		render.JSON(w, r, executeResponse{
			ID:      id.String(),
			Report:  report,
			Actions: recorder.Actions(),
		})
	})

	r.Get("/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Msg("status request")
		idParam := chi.URLParam(r, "id")
		id, err := uuid.Parse(idParam)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "unable to parse id"})
			return
		}
		pid, ok := requests.get(id)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			log.Debug().Str(logger.RequestIDField, idParam).Msg("cannot find id")
			return
		}

		future := ac.RequestFuture(pid, messages.GetStatus{}, time.Minute) // blocking
		res, err := future.Result()
		if err != nil {
			requests.remove(id)
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Str(logger.RequestIDField, idParam).Err(err).Msg("unable to get status from actor")
			return
		}

		if status, ok := res.(messages.Status); ok {
			render.JSON(w, r, getStatus{status})
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Str(logger.RequestIDField, idParam).Msgf("unknown status from actor: %T", res)
		}
	})

	r.Post("/extensions", func(w http.ResponseWriter, r *http.Request) {
		if extensions == nil {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, errorResponse{Error: "extension store disabled"})
			return
		}
		cmd := installCommand{}
		if err := unmarshalRequestBody(r, &cmd); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "unable to parse body"})
			return
		}
		if cmd.UserID == "" || cmd.AppID == "" || len(cmd.Tools) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "userId, appId and tools are required"})
			return
		}
		if err := extensions.Install(r.Context(), cmd.UserID, cmd.AppID, cmd.Name, cmd.Tools); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Err(err).Str(logger.AppField, cmd.AppID).Msg("unable to install extension")
			render.JSON(w, r, errorResponse{Error: "unable to install extension"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	r.Delete("/extensions/{userID}/{appID}", func(w http.ResponseWriter, r *http.Request) {
		if extensions == nil {
			w.WriteHeader(http.StatusNotImplemented)
			render.JSON(w, r, errorResponse{Error: "extension store disabled"})
			return
		}
		userID := chi.URLParam(r, "userID")
		appID := chi.URLParam(r, "appID")
		if err := extensions.Deactivate(r.Context(), userID, appID); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Err(err).Str(logger.AppField, appID).Msg("unable to deactivate extension")
			render.JSON(w, r, errorResponse{Error: "unable to deactivate extension"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return &Server{
		ac: ac,
		server: &http.Server{
			Addr:    addr,
			Handler: r,
		},
		state: requests,
	}
}

func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}

	log.Info().Msg("http server started")
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

func logMiddleware() func(http.Handler) http.Handler {
	c := alice.New()
	c = c.Append(hlog.NewHandler(log.Logger))
	c = c.Append(hlog.RemoteAddrHandler("ip"))
	c = c.Append(hlog.UserAgentHandler("agent"))
	c = c.Append(hlog.RefererHandler("referer"))
	c = c.Append(hlog.RequestIDHandler("req_id", "Request-Id"))
	c = c.Append(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("verb", r.Method).
			Stringer("url", r.URL).
			Int("size", size).
			Int("status", status).
			Int64("duration", duration.Milliseconds()).
			Msg("REQ")
	}))

	return c.Then
}

func unmarshalRequestBody(req *http.Request, output interface{}) error {
	if req.Body == nil {
		return errors.New("invalid body in request")
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	if err = req.Body.Close(); err != nil {
		return err
	}
	if err = json.Unmarshal(body, &output); err != nil {
		return err
	}

	return nil
}
