// Package httpserver serves the webhook over plain HTTP for self-hosted
// deployments. The stage is the first path segment, as behind API Gateway.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jdelaire/ares/core"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Config holds server configuration.
type Config struct {
	Addr  string
	Stage string
}

// Server exposes:
//
//	ANY /{stage}/             Telegram updates
//	ANY /{stage}/set_webhook  webhook registration
//	GET /healthz
//	GET /metrics
type Server struct {
	cfg      Config
	webhook  *core.Webhook
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	router   chi.Router
}

// New creates a server. gatherer may be nil to disable /metrics.
func New(cfg Config, webhook *core.Webhook, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		webhook:  webhook,
		gatherer: gatherer,
		logger:   logger,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/"+s.cfg.Stage, func(r chi.Router) {
		r.HandleFunc("/", s.handleWebhook)
		r.HandleFunc("/set_webhook", s.handleSetWebhook)
	})

	return r
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ev, err := s.event(w, r)
	if err != nil {
		s.logger.Warn().Err(err).Msg("read body")
		writeResponse(w, core.ErrorResponse())
		return
	}
	writeResponse(w, s.webhook.HandleEvent(r.Context(), ev))
}

func (s *Server) handleSetWebhook(w http.ResponseWriter, r *http.Request) {
	ev, err := s.event(w, r)
	if err != nil {
		writeResponse(w, core.ErrorResponse())
		return
	}
	writeResponse(w, s.webhook.Register(r.Context(), ev))
}

func (s *Server) event(w http.ResponseWriter, r *http.Request) (core.Event, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return core.Event{}, err
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return core.Event{
		Method: r.Method,
		Body:   string(body),
		Host:   host,
		Stage:  s.cfg.Stage,
	}, nil
}

func writeResponse(w http.ResponseWriter, resp core.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Str("stage", s.cfg.Stage).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}
