package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/foundermafstat/interactive-board/internal/api"
	"github.com/foundermafstat/interactive-board/internal/board"
	"github.com/foundermafstat/interactive-board/internal/config"
	"github.com/foundermafstat/interactive-board/internal/game"
	"github.com/foundermafstat/interactive-board/internal/hub"
	"github.com/foundermafstat/interactive-board/internal/presence"
	"github.com/foundermafstat/interactive-board/internal/session"
	"github.com/foundermafstat/interactive-board/internal/websocket"
)

// Application wires all components in dependency order:
// Hub → Engine → Registry → Presence/Board → Dispatcher → WebSocket → API → HTTP.
type Application struct {
	config     *config.Config
	registry   *session.Registry
	reaper     *session.Reaper
	eventHub   *hub.Hub
	httpServer *http.Server
	serverErr  chan error
}

// NewApplication builds a ready-to-start server from the configuration.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	eventHub := hub.NewHub()
	engine := game.NewEngine(eventHub)
	registry := session.NewRegistry(engine)
	reaper := session.NewReaper(registry, cfg.Reaper.Interval, cfg.Reaper.RoomTTL)

	tracker := presence.NewTracker()
	store := board.NewStore()
	dispatcher := hub.NewDispatcher(eventHub, registry, tracker, store)

	wsHandler := websocket.NewHandler(dispatcher)
	apiServer := api.NewServer(registry, eventHub)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:     cfg,
		registry:   registry,
		reaper:     reaper,
		eventHub:   eventHub,
		httpServer: httpServer,
		serverErr:  make(chan error, 1),
	}, nil
}

// Start brings up the reaper and the HTTP server.
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting board server on %s", app.httpServer.Addr)

	app.reaper.Start()

	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.serverErr <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-app.serverErr:
		app.reaper.Stop()
		return err
	case <-time.After(100 * time.Millisecond):
		log.Printf("Board server started")
		return nil
	case <-ctx.Done():
		app.reaper.Stop()
		return ctx.Err()
	}
}

// ServerError reports an HTTP server failure after startup. The caller is
// expected to select on it for the process lifetime alongside its signal
// handling; a graceful Shutdown never sends here.
func (app *Application) ServerError() <-chan error {
	return app.serverErr
}

// Stop shuts the server down: HTTP first, then every room ticker, then the
// reaper.
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down board server")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	for _, room := range app.registry.ListRooms() {
		app.registry.RemoveRoom(room.ID)
	}

	app.reaper.Stop()

	log.Printf("Board server shutdown complete")
	return nil
}

// Addr returns the server address.
func (app *Application) Addr() string {
	return app.httpServer.Addr
}
