package http

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SampleSource provides the current daily samples.
type SampleSource interface {
	ReadinessChecker
	Samples() ([]domain.Record, error)
}

// Dirs are the directories served as static files. An empty or missing
// directory disables its route.
type Dirs struct {
	Data string // served under /data/
	Web  string // served under /
}

// Server exposes health, metrics, the sample API, and static files.
type Server struct {
	httpServer *http.Server
	source     SampleSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /api/samples, /api/summary and the static file routes.
func NewServer(addr string, source SampleSource, dirs Dirs, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(source))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/samples", s.handleSamples)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	if isDir(dirs.Data) {
		mux.Handle("GET /data/", http.StripPrefix("/data/", http.FileServer(http.Dir(dirs.Data))))
	}
	if isDir(dirs.Web) {
		mux.Handle("GET /", http.FileServer(http.Dir(dirs.Web)))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	samples, rng, ok := s.loadRange(w, r)
	if !ok {
		return
	}
	s.logger.Debug("samples served", "range", rng, "count", len(samples))
	writeJSON(w, http.StatusOK, samples)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	samples, rng, ok := s.loadRange(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Range   domain.Range   `json:"range"`
		Summary domain.Summary `json:"summary"`
	}{rng, domain.Summarize(samples)})
}

// loadRange reads the samples and filters them by the range query parameter,
// writing an error response and returning false on failure.
func (s *Server) loadRange(w http.ResponseWriter, r *http.Request) ([]domain.Record, domain.Range, bool) {
	rng, err := domain.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, "", false
	}

	samples, err := s.source.Samples()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no daily samples have been produced yet"})
			return nil, "", false
		}
		s.logger.Error("read samples failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read samples"})
		return nil, "", false
	}
	return domain.FilterRange(samples, rng, domain.Now()), rng, true
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v) //nolint:errcheck // best-effort response
}
