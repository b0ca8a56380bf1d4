package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/adilevin/donna/internal/dialogue"
	"github.com/adilevin/donna/internal/gcal"
	"github.com/adilevin/donna/internal/skill"
	"github.com/adilevin/donna/internal/store"
)

// turnHandler is the slice of the dialogue controller the server needs.
type turnHandler interface {
	HandleTurn(ctx context.Context, turn dialogue.Turn) skill.Response
}

type Server struct {
	db         *store.DB
	controller turnHandler
	gcalClient *gcal.Client
	logger     zerolog.Logger
	httpSrv    *http.Server
	port       int
}

type ServerConfig struct {
	DB         *store.DB
	Controller turnHandler
	GCalClient *gcal.Client // nil when remote calendar sync is disabled
	Logger     zerolog.Logger
	Port       int
}

func New(cfg ServerConfig) *Server {
	s := &Server{
		db:         cfg.DB,
		controller: cfg.Controller,
		gcalClient: cfg.GCalClient,
		logger:     cfg.Logger,
		port:       cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a chat turn includes model calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Chat API
	mux.HandleFunc("POST /api/chat", s.handleChat)

	// Google Calendar API
	mux.HandleFunc("GET /api/gcal/status", s.handleGCalStatus)
	mux.HandleFunc("POST /api/gcal/connect", s.handleGCalConnect)
	mux.HandleFunc("POST /api/gcal/callback", s.handleGCalExchangeCode)
}

func (s *Server) Start() error {
	s.logger.Info().Int("port", s.port).Msg("starting HTTP server")
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers so browser and mobile clients can call
// the API directly.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
