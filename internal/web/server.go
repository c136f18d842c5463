package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/config"
	"github.com/kozaktomas/site-attendance/internal/live"
	"github.com/kozaktomas/site-attendance/internal/web/handlers"
	"github.com/kozaktomas/site-attendance/internal/web/middleware"
)

// requestTimeout bounds every request except the live feed. It exceeds the vision and
// storage timeouts so those report their own errors first.
const requestTimeout = 2 * time.Minute

// Server represents the web server
type Server struct {
	config       *config.Config
	router       *chi.Mux
	httpServer   *http.Server
	engine       *attendance.Engine
	hub          *live.Hub
	statsHandler *handlers.StatsHandler
}

// NewServer creates a new web server. hub may be nil, which disables the live feed.
func NewServer(cfg *config.Config, engine *attendance.Engine, hub *live.Hub, port int, host string) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:       cfg,
		router:       r,
		engine:       engine,
		hub:          hub,
		statsHandler: handlers.NewStatsHandler(engine),
	}
	engine.AddListener(s.statsHandler)

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: requestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	// Hijacked websocket connections are not tracked by http.Server.
	if s.hub != nil {
		s.hub.Close()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
