package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/sicbo-sim/internal/catalog"
	"github.com/MJE43/sicbo-sim/internal/config"
	"github.com/MJE43/sicbo-sim/internal/engine"
	"github.com/MJE43/sicbo-sim/internal/games"
	"github.com/MJE43/sicbo-sim/internal/store"
)

// maxBodyBytes bounds request bodies; weights tables are the largest input.
const maxBodyBytes = 1 << 20

// Options wires the server's collaborators. DB may be nil, which disables
// run persistence and the /runs endpoints.
type Options struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	DB      store.DB
	Logger  *slog.Logger
}

// Server handles HTTP requests
type Server struct {
	cfg          *config.Config
	catalog      *catalog.Catalog
	db           store.DB
	games        *games.Registry
	errorHandler *ErrorHandler
	logger       *slog.Logger
	startTime    time.Time
	seed         func() uint64
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	s := &Server{
		cfg:          cfg,
		catalog:      cat,
		db:           opts.DB,
		games:        games.DefaultRegistry(),
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		startTime:    time.Now(),
		seed:         engine.RandomSeed,
	}

	logger.Info("api server initialised",
		"wagers", cat.Len(),
		"database_enabled", s.db != nil,
		"max_sessions", cfg.Limits.MaxSessions,
		"max_games", cfg.Limits.MaxGames,
		"max_trials", cfg.Limits.MaxTrials,
	)
	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/wagers", s.handleListWagers)
		r.Post("/simulate", s.handleSimulate)
		r.Post("/trials", s.handleTrials)
		r.Post("/verify", s.handleVerify)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/version", s.handleVersion)
	})

	// Legacy form-page route: num_players / bet_type field names
	r.Post("/simulate", s.handleLegacySimulate)

	return r
}

// HTTPServer builds an http.Server with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched; unknown fields are rejected.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON format: "+err.Error())
		return false
	}
	return true
}
