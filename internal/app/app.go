// Package app assembles the backend: configuration, the sketch store, the
// session manager, and the HTTP server carrying the websocket bridge.
package app

import (
	"context"
	"fmt"

	"sketchbook/internal/config"
	"sketchbook/internal/server"
	"sketchbook/internal/session"
	"sketchbook/internal/store"
)

type App struct {
	server *server.Server
	store  *store.Store
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	sketchStore := store.NewFromEnv(cfg.StorePath)
	manager := session.NewManager(sketchStore)
	bridgeHandler := server.NewBridgeHandler(manager)

	mux := server.NewMux(bridgeHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		store:  sketchStore,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return err
	}
	return a.store.Close()
}
