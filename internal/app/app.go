package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmarkhas/roomcast/internal/config"
	"github.com/dmarkhas/roomcast/internal/core"
	"github.com/dmarkhas/roomcast/internal/presence"
	"github.com/dmarkhas/roomcast/internal/store"
	"github.com/dmarkhas/roomcast/internal/store/mongo"
	"github.com/dmarkhas/roomcast/internal/store/sqlite"
	transporthttp "github.com/dmarkhas/roomcast/internal/transport/http"
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
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("driver", cfg.Storage.Driver).Msg("storage initialized")

	order := core.LegacyDateOrder
	if cfg.HistoryOrder == "calendar" {
		order = core.CalendarDateOrder
	}

	hub := core.NewHub(st, cfg.Rooms, order, logger)
	presenceSvc := presence.New(st, hub, logger)
	server := transporthttp.NewServer(hub, presenceSvc, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite", "":
		return sqlite.New(cfg.Storage.SQLitePath)
	case "mongo":
		return mongo.New(context.Background(), cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

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
