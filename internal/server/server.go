// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/activity"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/handler"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/service"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/session"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/wizard"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/wizard/wire"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Service  *service.VariantService
	Builder  *payload.Builder
	Sessions *session.Manager
	Activity activity.Store

	// ShutdownTimeout bounds graceful shutdown. Zero means 10s.
	ShutdownTimeout time.Duration
}

// NewRouter returns the router with every route registered.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	vh := handler.NewVariantHandler(cfg.Service, cfg.Builder.Registry())
	ws := wire.NewHandler(cfg.Sessions, cfg.Builder, cfg.Service, func(actor string) wizard.Submitter {
		return cfg.Service.As(service.Audit{Actor: actor, Source: "user"})
	})

	r.Route("/v1", func(r chi.Router) {
		vh.Routes(r)
		if cfg.Activity != nil {
			handler.NewActivityHandler(cfg.Activity).Routes(r)
		}
		r.Get("/wizard/ws", ws.ServeHTTP)
	})
	return r
}

// requestLogger logs one line per request once the response is written.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	timeout := cfg.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
