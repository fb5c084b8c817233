package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	executorHandler "github.com/kkk9131/new-gate-sub000/internal/agents/executor/handler"
	"github.com/kkk9131/new-gate-sub000/internal/agents/orchestrator"
	"github.com/kkk9131/new-gate-sub000/internal/api"
	"github.com/kkk9131/new-gate-sub000/internal/planner"
	"github.com/kkk9131/new-gate-sub000/internal/registry"
	"github.com/kkk9131/new-gate-sub000/internal/toolexec"
	"github.com/kkk9131/new-gate-sub000/internal/verifier"
	"github.com/kkk9131/new-gate-sub000/internal/workers"
	"github.com/kkk9131/new-gate-sub000/pkg/config"
	"github.com/kkk9131/new-gate-sub000/pkg/logger"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
	zLog "github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml configuration file")
	flag.Parse()

	log.Println("starting server")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Panicf("failed to load config: %v", err)
	}
	if err := logger.NewGlobal(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		log.Panicf("failed to initialize logger: %v", err)
	}

	var store *registry.ExtensionStore
	if cfg.Extensions.Path != "" {
		store, err = registry.NewExtensionStore(cfg.Extensions.Path)
		if err != nil {
			zLog.Panic().Err(err).Msg("failed to open extension store")
		}
		defer store.Close()
	}

	var source registry.ExtensionSource
	if store != nil {
		source = store
	}
	tools := registry.New(source)
	workerRegistry := workers.NewRegistry(map[models.Provider]string{
		models.ProviderOpenAI:    cfg.Model(models.ProviderOpenAI),
		models.ProviderAnthropic: cfg.Model(models.ProviderAnthropic),
		models.ProviderGemini:    cfg.Model(models.ProviderGemini),
	})

	deps := orchestrator.Dependencies{
		Planner:  planner.New(workerRegistry, tools),
		Verifier: verifier.New(workerRegistry),
		Workers:  workerRegistry,
		Handler:  executorHandler.New(toolexec.NewBridge(cfg.Bridge.URL)),
		Merge:    config.MergeCredentials,
	}

	system := actor.NewActorSystem().Root
	app := api.New(system, deps, store, cfg.Server.Addr)

	go func() {
		err := app.Start()
		if err != nil {
			zLog.Panic().Err(err).Msg("server crash")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	stop()
	zLog.Info().Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		zLog.Panic().Err(err).Msg("server forced to shutdown")
	}

	zLog.Info().Msg("server exiting")
}
