// Package server exposes the ops surface over HTTP: health, Prometheus
// metrics, the pending plan of a guild and an unstaged plan preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai_server_builder/builder"
	"ai_server_builder/generator"
)

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "server_builder_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "server_builder_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"path", "method", "status"})
)

// Planner generates a plan without staging it.
type Planner interface {
	GeneratePlan(ctx context.Context, description string) (generator.Plan, error)
}

type Server struct {
	planner Planner
	store   *builder.PlanStore
	prefix  string
	logger  *slog.Logger
}

func New(planner Planner, store *builder.PlanStore, prefix string, logger *slog.Logger) (*Server, error) {
	if planner == nil {
		return nil, errors.New("planner required")
	}
	if store == nil {
		return nil, errors.New("plan store required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{planner: planner, store: store, prefix: prefix, logger: logger}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/plans", func(r chi.Router) {
		r.Post("/preview", s.handlePreview)
		r.Get("/{guildID}", s.handlePlan)
		r.Get("/{guildID}/summary", s.handlePlanSummary)
	})
	return r
}

// --- Handlers ---

type previewReq struct {
	Description string `json:"description"`
}

type previewResp struct {
	Plan    generator.Plan `json:"plan"`
	Summary string         `json:"summary"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pending_plans": s.store.Len()})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	staged, ok := s.store.Get(chi.URLParam(r, "guildID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Error: builder.ErrNoPendingPlan.Error()})
		return
	}
	writeJSON(w, http.StatusOK, staged)
}

func (s *Server) handlePlanSummary(w http.ResponseWriter, r *http.Request) {
	staged, ok := s.store.Get(chi.URLParam(r, "guildID"))
	if !ok {
		http.Error(w, builder.ErrNoPendingPlan.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(builder.Summary(staged.Plan, s.prefix)))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "description is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	plan, err := s.planner.GeneratePlan(ctx, req.Description)
	if err != nil {
		var (
			decodeErr *generator.DecodeError
			validErr  *generator.ValidationError
		)
		status := http.StatusBadGateway
		if errors.As(err, &decodeErr) || errors.As(err, &validErr) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, previewResp{Plan: plan, Summary: builder.Summary(plan, s.prefix)})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

// metricsMiddleware records request counts and latency by route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := strconv.Itoa(ww.Status())
		httpDuration.WithLabelValues(path, r.Method, status).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(path, r.Method, status).Inc()
	})
}
