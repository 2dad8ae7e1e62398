package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"levsim/internal/finance"
	"levsim/internal/logger"
	"levsim/internal/perf"
	"levsim/internal/series"
	"levsim/internal/study"
)

// StudyRunner runs one study.
type StudyRunner interface {
	Run(ctx context.Context, s study.Study) (*study.Result, error)
}

// NewRouter serves study results and charts. Every request runs the study
// again. webhook is mounted at /telegram/webhook when non-nil.
func NewRouter(runner StudyRunner, webhook http.HandlerFunc, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &handler{runner: runner, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthCheckHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/studies", h.listStudies).Methods(http.MethodGet)
	api.HandleFunc("/studies/{name}", h.getStudy).Methods(http.MethodGet)
	api.HandleFunc("/studies/{name}/{chart:growth|drawdown}.png", h.getChart).Methods(http.MethodGet)

	if webhook != nil {
		r.HandleFunc("/telegram/webhook", webhook).Methods(http.MethodPost)
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	return r
}

type handler struct {
	runner StudyRunner
	log    *logger.Logger
}

func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/studies
func (h *handler) listStudies(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, study.Presets())
}

// GET /api/studies/{name}
func (h *handler) getStudy(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /api/studies/{name}/{chart}.png
func (h *handler) getChart(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r)
	if !ok {
		return
	}
	img := res.GrowthChart
	if mux.Vars(r)["chart"] == "drawdown" {
		img = res.DrawdownChart
	}
	if img == nil {
		respondError(w, http.StatusServiceUnavailable, "chart rendering is disabled")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (h *handler) run(w http.ResponseWriter, r *http.Request) (*study.Result, bool) {
	name := mux.Vars(r)["name"]
	s, ok := study.Lookup(name)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown study %q", name))
		return nil, false
	}
	res, err := h.runner.Run(r.Context(), s)
	if err != nil {
		status := statusFor(err)
		h.log.WithError(err).WithFields(map[string]interface{}{
			"study":  s.Name,
			"status": status,
		}).Warn("Study failed")
		respondError(w, status, err.Error())
		return nil, false
	}
	return res, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, finance.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, perf.ErrInsufficientData),
		errors.Is(err, perf.ErrDegenerateTimeSpan),
		errors.Is(err, series.ErrNoOverlap):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		// NaN CAGRs from a wiped-out simulation land here.
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": fmt.Sprint(err),
						"path":  r.URL.Path,
					}).Error("Panic recovered")
					respondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Server wraps http.Server with logging.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

func New(addr string, router http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Start blocks until the server stops. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("http: listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
