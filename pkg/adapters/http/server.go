package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/occlusion/internal/logging"
	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/registry"
	"github.com/aretw0/occlusion/pkg/runner"
	"github.com/aretw0/occlusion/pkg/schema"
	"github.com/aretw0/occlusion/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

// RegistryFactory builds the plugin registry for one simulation.
// Plugins must time their delays on the given clock so a simulation never waits in real time.
type RegistryFactory func(clk ports.Clock) *registry.Registry

// Server exposes trial creation, headless simulation and stored results over HTTP.
type Server struct {
	Plugins  RegistryFactory
	Sessions *session.Manager
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	MaxBodyBytes int64
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer serves metrics from g on /metrics. Defaults to the global registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithMaxBodyBytes caps the size of request bodies. Larger bodies get 413.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.MaxBodyBytes = n
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(plugins RegistryFactory, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Plugins:  plugins,
		Sessions: sessions,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logging.NewNop(),

		MaxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.Health)
	r.Get("/plugins", s.ListPlugins)
	r.Post("/trials", s.CreateTrials)
	r.Get("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/simulate", s.Simulate)
			r.Get("/results", s.GetResults)
			r.Delete("/", s.DeleteSession)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// SimulateRequest is the body of POST /sessions/{id}/simulate.
type SimulateRequest struct {
	Trials []map[string]any `json:"trials"`
}

// SimulateResponse reports a headless run.
type SimulateResponse struct {
	SessionID string               `json:"session_id"`
	Results   []domain.TrialResult `json:"results"`
	Ops       []memory.Op          `json:"ops"`
	ElapsedMS int64                `json:"elapsed_ms"`
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPlugins handles GET /plugins.
func (s *Server) ListPlugins(w http.ResponseWriter, r *http.Request) {
	reg := s.Plugins(clock.NewSystem())
	s.writeJSON(w, http.StatusOK, map[string][]string{"types": reg.Types()})
}

// CreateTrials handles POST /trials: it resolves one parameter object into trial configs.
func (s *Server) CreateTrials(w http.ResponseWriter, r *http.Request) {
	var params map[string]any
	if !s.decode(w, r, &params) {
		return
	}
	if params == nil {
		params = map[string]any{}
	}
	if _, ok := params["type"]; !ok {
		params["type"] = domain.TrialType
	}

	trials, err := s.Plugins(clock.NewSystem()).Create(params)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"trials": trials})
}

// Simulate handles POST /sessions/{id}/simulate: the trials run on a recording
// surface with a virtual clock, under the session lock, and their records are stored.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body SimulateRequest
	if !s.decode(w, r, &body) {
		return
	}
	for i, p := range body.Trials {
		if p == nil {
			p = map[string]any{}
			body.Trials[i] = p
		}
		if _, ok := p["type"]; !ok {
			p["type"] = domain.TrialType
		}
	}

	clk := clock.NewVirtual(time.Now())
	surface := memory.NewSurface(memory.WithClock(clk))
	run := runner.NewRunner(s.Plugins(clk),
		runner.WithStore(s.Sessions.Store()),
		runner.WithSessionID(sessionID),
		runner.WithClock(clk),
		runner.WithLogger(s.Logger),
	)

	trials, err := run.Expand(body.Trials)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var report runner.Report
	err = s.Sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		var err error
		report, err = run.Run(ctx, surface, trials)
		return err
	})
	if err != nil {
		s.Logger.Error("simulation failed", "session_id", sessionID, "err", err)
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, SimulateResponse{
		SessionID: sessionID,
		Results:   report.Results,
		Ops:       surface.Ops(),
		ElapsedMS: report.Elapsed.Milliseconds(),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetResults handles GET /sessions/{id}/results.
func (s *Server) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.Sessions.Results(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body of at most MaxBodyBytes into v and answers the error itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func statusFor(err error) int {
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &cfgErr), errors.Is(err, domain.ErrPluginNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "status", status, "err", err)
	} else {
		s.Logger.Warn("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Fields: schema.FieldErrors(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
