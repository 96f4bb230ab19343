// Package server initializes and runs the filehost application: it loads
// the user registry, wires the session table, file store, and HTTP
// transport together, handles graceful shutdown, and flushes the registry
// back to its journal on exit.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/filehost/internal/logging"
	"github.com/dmitrijs2005/filehost/internal/server/config"
	"github.com/dmitrijs2005/filehost/internal/server/files"
	"github.com/dmitrijs2005/filehost/internal/server/render"
	"github.com/dmitrijs2005/filehost/internal/server/sessions"
	"github.com/dmitrijs2005/filehost/internal/server/usermanager"
	"github.com/dmitrijs2005/filehost/internal/server/users"
	"github.com/dmitrijs2005/filehost/internal/server/web"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *usermanager.Manager
	server  *web.Server
}

// NewLogger builds the application logger for the configured format:
// slog JSON for production, the colored text handler for development.
func NewLogger(format string) logging.Logger {
	var handler slog.Handler
	if format == "text" {
		handler = logging.NewColorHandler(os.Stdout, slog.LevelDebug)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	return logging.NewSlogLogger(slog.New(handler))
}

// NewApp loads the registry from the journal and assembles the server. A
// corrupt journal aborts startup here rather than serving with a partial
// user set.
func NewApp(cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg.LogFormat)

	registry, err := users.OpenRegistry(cfg.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("registry init error: %w", err)
	}

	manager := usermanager.New(registry, sessions.NewTable(cfg.SessionTTL), logger)
	store := files.NewStore(cfg.StorageRoot)
	renderer := render.New(cfg.TemplateDir)
	srv := web.NewServer(cfg, logger, manager, store, renderer)

	return &App{config: cfg, logger: logger, manager: manager, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives, then flushes the user
// registry. A failed flush is fatal: it is logged and the process exits
// non-zero, since users created since startup would otherwise be lost
// silently.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "Flushing user registry...")
	if err := app.manager.Flush(); err != nil {
		app.logger.Error(ctx, "registry flush failed", "error", err)
		os.Exit(1)
	}
}
