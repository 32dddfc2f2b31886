// Package main is the entry point for the automator CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"automator/internal/backend"
	"automator/internal/cli"
	"automator/internal/commands"
	"automator/internal/config"
	"automator/internal/extract"
	"automator/internal/extract/gemini"
	"automator/internal/logging"
	"automator/internal/service"
	"automator/internal/todo"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	cancel()
	os.Exit(code)
}

// newService opens the configured store and composes the service over it.
// The model client is only built when an API key is configured.
func newService(ctx context.Context, cfg *config.Config) (service.Service, func(), error) {
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Sync()
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	release := func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("failed to close store", zap.Error(err))
		}
		log.Sync()
	}

	m := todo.NewManager(store, log)
	if err := m.EnsureIndexes(ctx); err != nil {
		release()
		return nil, nil, err
	}

	var engine *extract.Engine
	if cfg.Model.APIKey != "" {
		gen, err := gemini.New(ctx, gemini.Config{
			APIKey:      cfg.Model.APIKey,
			Model:       cfg.Model.Name,
			Temperature: cfg.Model.Temperature,
		})
		if err != nil {
			release()
			return nil, nil, err
		}
		loc, err := cfg.Location()
		if err != nil {
			release()
			return nil, nil, err
		}
		engine = extract.New(gen,
			extract.WithTimeout(cfg.Model.Timeout),
			extract.WithLocation(loc),
			extract.WithLogger(log.Named("extract")),
		)
	}

	if engine == nil {
		return todo.NewApp(m, nil), release, nil
	}
	return todo.NewApp(m, engine), release, nil
}
