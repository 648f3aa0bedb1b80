package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kjarir/echosphere/internal/catalog"
	"github.com/kjarir/echosphere/internal/config"
	"github.com/kjarir/echosphere/internal/core"
	"github.com/kjarir/echosphere/internal/identity"
	"github.com/kjarir/echosphere/internal/store"
	"github.com/kjarir/echosphere/internal/store/sqlite"
	transporthttp "github.com/kjarir/echosphere/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	cat := catalog.NewService(st, logger)
	if err := cat.EnsureSeedData(context.Background()); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	ids := identity.NewProvider(st)

	hub := core.NewHub(cat, nil, core.SessionConfig{
		PresenceInterval: cfg.PresenceInterval,
		HandNotifyDelay:  cfg.HandNotifyDelay,
	}, logger)

	server := transporthttp.NewServer(hub, cat, ids, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
