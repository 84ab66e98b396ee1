// Package server hosts matches over websockets. Every connection gets its
// own human-versus-computer match, driven only by that connection's reads.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/metrics"
	"github.com/lox/rpsls/internal/randutil"
	"github.com/lox/rpsls/internal/session"
)

// DefaultIdleTimeout applies when no option overrides it.
const DefaultIdleTimeout = 5 * time.Minute

// Server represents the WebSocket server
type Server struct {
	registry     *bot.Registry
	upgrader     websocket.Upgrader
	router       *chi.Mux
	logger       *log.Logger
	clock        quartz.Clock
	idleTimeout  time.Duration
	winningScore int
	seed         int64
	metrics      *metrics.Manager

	sessions    atomic.Int64
	mu          sync.Mutex
	connections map[*Connection]struct{}
}

// NewServer creates a server offering the registry's profiles as opponents
func NewServer(registry *bot.Registry, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			// Browser clients are served from anywhere during development
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:       logger.WithPrefix("server"),
		clock:        quartz.NewReal(),
		idleTimeout:  DefaultIdleTimeout,
		winningScore: game.DefaultWinningScore,
		connections:  make(map[*Connection]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed = randutil.Resolve(s.seed)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/ws", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/health", s.handleHealth)
		r.Get("/profiles", s.handleProfiles)
		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}
	})
	return r
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.router }

// Serve listens on addr until ctx is cancelled, then closes every
// connection and shuts the listener down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr, "seed", s.seed)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down", "connections", s.ConnectionCount())
	s.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close() // Ignore close errors during shutdown
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	n := s.sessions.Add(1)
	logger := s.logger.With("session", n)
	handler := newDispatcher(s, randutil.Derive(s.seed, int(n)), logger)
	conn := newConnection(ws, handler, s.clock, s.idleTimeout, logger)

	s.mu.Lock()
	s.connections[conn] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Info("Client connected", "session", n, "remote", r.RemoteAddr, "total", total)

	conn.Start()

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
		s.logger.Info("Client disconnected", "session", n, "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(session.ProfilesData(s.registry)); err != nil {
		s.logger.Error("Failed to encode profiles", "error", err)
	}
}
