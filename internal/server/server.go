// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes validation, extraction, and resolution over HTTP
// for the persistence and UI layer.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pdiddy/evidence-engine/internal/audit"
	"github.com/pdiddy/evidence-engine/internal/evidence"
	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const maxBodyBytes = 1 << 20

// Recorder stores the verdicts of a resolution run. The audit store
// implements it.
type Recorder interface {
	Record(ctx context.Context, runID string, facts types.EntityFacts, resolutions ...types.Resolution) (int, error)
}

// Server holds the HTTP handlers.
type Server struct {
	resolver  *resolve.Resolver
	validator *validate.Validator
	audit     Recorder
	log       zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAudit records every resolution run in rec.
func WithAudit(rec Recorder) Option {
	return func(s *Server) { s.audit = rec }
}

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New returns a Server resolving with r and validating with v.
func New(r *resolve.Resolver, v *validate.Validator, opts ...Option) *Server {
	s := &Server{resolver: r, validator: v, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes returns the API router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.validate)
		r.Post("/extract", s.extract)
		r.Post("/resolve", s.resolveAll)
		r.Post("/resolve/{useCase}", s.resolveOne)
	})
	return r
}

// ListenAndServe serves the API on cfg.Addr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg types.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", cfg.Addr).Msg("listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// --- handlers ---

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type validateRequest struct {
	Candidate types.ProviderResult `json:"candidate"`
	Facts     types.EntityFacts    `json:"facts"`
	// Profile selects the validator: generic (default), legal, or
	// marketplace.
	Profile string `json:"profile,omitempty"`
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := Profile(s.validator, req.Profile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v.Validate(req.Candidate, req.Facts))
}

// Profile returns the validator named by profile.
func Profile(v *validate.Validator, profile string) (resolve.LinkValidator, error) {
	switch profile {
	case "", "generic":
		return v, nil
	case "legal":
		return v.Legal(), nil
	case "marketplace":
		return v.Marketplace(), nil
	default:
		return nil, fmt.Errorf("unknown validation profile %q", profile)
	}
}

type extractRequest struct {
	URL      string         `json:"url"`
	Platform types.Platform `json:"platform,omitempty"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Platform == "" {
		writeJSON(w, http.StatusOK, evidence.Extract(req.URL))
		return
	}
	if evidence.SiteDomain(req.Platform) == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown platform %q", req.Platform))
		return
	}
	writeJSON(w, http.StatusOK, evidence.ExtractHandle(req.URL, req.Platform))
}

type resolveResponse struct {
	RunID       string             `json:"run_id"`
	Resolutions []types.Resolution `json:"resolutions"`
}

func (s *Server) resolveOne(w http.ResponseWriter, r *http.Request) {
	useCase, ok := types.ParseUseCase(chi.URLParam(r, "useCase"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown use case %q", chi.URLParam(r, "useCase")))
		return
	}
	var req resolve.Request
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.resolver.Resolve(r.Context(), useCase, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, r, req.Facts, out)
}

func (s *Server) resolveAll(w http.ResponseWriter, r *http.Request) {
	var req resolve.Request
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.resolver.All(r.Context(), req.Facts, req.Limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respond(w, r, req.Facts, out)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, facts types.EntityFacts, out []types.Resolution) {
	runID := audit.NewRunID()
	if s.audit != nil {
		if _, err := s.audit.Record(r.Context(), runID, facts, out...); err != nil {
			s.log.Error().Err(err).Str("run_id", runID).Msg("recording audit run")
		}
	}
	writeJSON(w, http.StatusOK, resolveResponse{RunID: runID, Resolutions: out})
}

// --- encoding ---

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
