// Package server exposes the portal over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/reliefdesk/internal/app"
	"github.com/ppiankov/reliefdesk/internal/metrics"
)

// Server serves the portal API
type Server struct {
	app    *app.App
	logger *zap.Logger
	mux    *http.ServeMux

	// base outlives individual requests; background verification runs use it
	base context.Context
}

// New creates a server for a
func New(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger.Named("http"),
		mux:    http.NewServeMux(),
		base:   context.Background(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", metrics.Handler())

	s.mux.HandleFunc("GET /api/claims", s.handleListClaims)
	s.mux.HandleFunc("POST /api/claims", s.handleSubmitClaim)
	s.mux.HandleFunc("GET /api/claims/{id}", s.handleGetClaim)
	s.mux.HandleFunc("POST /api/claims/{id}/status", s.handleSetStatus)
	s.mux.HandleFunc("GET /api/claims/{id}/track", s.handleTrack)
	s.mux.HandleFunc("POST /api/claims/{id}/disburse", s.handleDisburse)

	s.mux.HandleFunc("GET /api/claimants/{id}/dashboard", s.handleClaimantDashboard)
	s.mux.HandleFunc("GET /api/official/dashboard", s.handleOfficialDashboard)
	s.mux.HandleFunc("GET /api/review-queue", s.handleReviewQueue)

	s.mux.HandleFunc("GET /api/desk", s.handleDeskState)
	s.mux.HandleFunc("POST /api/desk/select", s.handleDeskSelect)
	s.mux.HandleFunc("POST /api/desk/verify", s.handleDeskVerify)
	s.mux.HandleFunc("POST /api/desk/decide", s.handleDeskDecide)

	s.mux.HandleFunc("GET /api/grievances", s.handleListGrievances)
	s.mux.HandleFunc("POST /api/grievances", s.handleLodgeGrievance)
	s.mux.HandleFunc("POST /api/grievances/{id}/status", s.handleGrievanceStatus)

	s.mux.HandleFunc("GET /api/assistant", s.handleTranscript)
	s.mux.HandleFunc("POST /api/assistant", s.handleAsk)

	s.mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	s.mux.HandleFunc("DELETE /api/notifications/{id}", s.handleDismiss)
}

// Handler returns the root handler with request logging
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Run listens on the configured address until ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	cfg := s.app.Config.Server
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cfg := s.app.Config.Server
	s.base = ctx

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
