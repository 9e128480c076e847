// Package api exposes the progression engine over HTTP for host
// applications.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/vitality/internal/logging"
	"github.com/abhisek/vitality/internal/progression"
)

// Server is the vitality HTTP API server.
type Server struct {
	engine         *progression.Engine
	log            logrus.FieldLogger
	now            func() time.Time
	timeout        time.Duration
	metricsEnabled bool
}

// NewServer creates a new API server for engine.
func NewServer(engine *progression.Engine, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		engine:  engine,
		log:     log,
		now:     time.Now,
		timeout: 30 * time.Second,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetClock replaces the wall clock used to timestamp requests.
func (s *Server) SetClock(now func() time.Time) { s.now = now }

// SetTimeout sets the per-request timeout. Zero disables it.
func (s *Server) SetTimeout(d time.Duration) { s.timeout = d }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Post("/onboard", s.handleOnboard)
		r.Get("/state", s.handleState)
		r.Post("/activities", s.handleRecordActivity)
		r.Post("/activities/preview", s.handlePreview)
		r.Post("/ticks/{kind}", s.handleTick)
		r.Post("/catch-up", s.handleCatchUp)
		r.Put("/xp", s.handleOverride)
		r.Get("/events", s.handleEvents)
	})

	return r
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"request_id": middleware.GetReqID(r.Context()),
			"duration":   time.Since(start),
		}).Debug("http request")
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
