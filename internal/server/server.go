package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/promptforge/internal/config"
	"github.com/ziadkadry99/promptforge/internal/credentials"
	"github.com/ziadkadry99/promptforge/internal/db"
	"github.com/ziadkadry99/promptforge/internal/library"
	"github.com/ziadkadry99/promptforge/internal/refine"
)

// Server is the local promptforge HTTP server: prompt library, provider
// credentials, and the refinement API on one port.
type Server struct {
	cfg        config.Config
	db         *db.DB
	library    *library.Store
	creds      *credentials.Store
	engine     *refine.Engine
	logger     *log.Logger
	router     chi.Router
	httpServer *http.Server
}

// New wires the feature packages onto a router.
func New(cfg config.Config, database *db.DB, lib *library.Store, creds *credentials.Store, engine *refine.Engine, logger *log.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		db:      database,
		library: lib,
		creds:   creds,
		engine:  engine,
		logger:  logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Storage-only routes run under the short storage timeout. Refinement
	// routes stay outside it: the engine bounds its own model calls, which
	// legitimately take far longer than any storage round trip.
	r.Group(func(r chi.Router) {
		if s.cfg.StorageTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.StorageTimeout))
		}
		credentials.RegisterRoutes(r, s.creds)
		library.RegisterRoutes(r, s.library)
	})
	refine.RegisterRoutes(r, s.engine, s.library)
	refine.RegisterSessionRoute(r, s.engine, s.logger)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port and blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	// No WriteTimeout: the refinement session endpoint holds a WebSocket
	// open for as long as the user takes to answer.
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("promptforge server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
