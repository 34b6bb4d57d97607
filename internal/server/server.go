// Package server exposes the compiler over HTTP for "xmd serve".
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	xmd "github.com/alnah/go-xmd"
	"github.com/alnah/go-xmd/internal/image"
)

// DefaultMaxSourceBytes bounds a compile request body.
const DefaultMaxSourceBytes = 10 << 20

// Requests beyond the concurrency limit wait in a backlog this many times
// larger, for at most backlogTimeout.
const (
	backlogFactor  = 4
	backlogTimeout = time.Minute
)

// shutdownTimeout bounds the wait for in-flight compilations on shutdown.
const shutdownTimeout = 30 * time.Second

// ErrNilCompiler is returned by New without a compiler.
var ErrNilCompiler = errors.New("server: compiler is nil")

// Options configures a Server.
type Options struct {
	Compiler *xmd.Compiler
	// MaxSourceBytes bounds the request body. DefaultMaxSourceBytes when zero.
	MaxSourceBytes int64
	// Concurrency bounds simultaneous compilations, see ResolveConcurrency.
	Concurrency int
	// Registry receives the server metrics. A private registry when nil.
	Registry *prometheus.Registry
	Logger   *zap.SugaredLogger
}

// Server answers compile requests.
type Server struct {
	router   chi.Router
	compiler *xmd.Compiler
	maxBytes int64
	metrics  *metrics
	registry *prometheus.Registry
	log      *zap.SugaredLogger
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Compiler == nil {
		return nil, ErrNilCompiler
	}
	s := &Server{
		compiler: opts.Compiler,
		maxBytes: opts.MaxSourceBytes,
		registry: opts.Registry,
		log:      opts.Logger,
	}
	if s.maxBytes <= 0 {
		s.maxBytes = DefaultMaxSourceBytes
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	s.metrics = newMetrics(s.registry)
	s.setupRoutes(ResolveConcurrency(opts.Concurrency))
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes(concurrency int) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/ping", s.handlePing)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.With(middleware.ThrottleBacklog(concurrency, concurrency*backlogFactor, backlogTimeout)).
		Post("/", s.handleCompile)

	s.router = r
}

// ListenAndServe serves on addr until ctx is done, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, xmd.PingResponse{Reply: "pong"})
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := uuid.NewString()
	log := s.log.With("compile_id", id, "request_id", middleware.GetReqID(r.Context()))
	w.Header().Set("X-XMD-Compile-Id", id)

	var req xmd.CompileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBytes)).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.reject(w, log, status, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	switch {
	case req.Source == "":
		s.reject(w, log, http.StatusBadRequest, "missing source")
		return
	case req.Template == "":
		s.reject(w, log, http.StatusBadRequest, "missing template")
		return
	}
	tmpl, err := xmd.ParseTemplate(req.Template)
	if err != nil {
		s.reject(w, log, http.StatusBadRequest, err.Error())
		return
	}

	var files *image.Image
	if req.InputPackage != nil {
		if files, err = image.FromPayload(*req.InputPackage); err != nil {
			s.reject(w, log, http.StatusBadRequest, fmt.Sprintf("invalid input package: %v", err))
			return
		}
	}

	log = log.With("template", tmpl)
	res, err := s.compiler.Compile(r.Context(), xmd.Input{
		Source:   []byte(req.Source),
		Name:     req.Name,
		Files:    files,
		Template: tmpl,
	})
	if err != nil && res == nil {
		log.Errorw("compilation failed", "error", err)
		s.metrics.observe(req.Template, statusFailed, time.Since(start))
		w.Header().Set(xmd.ErrorHeader, headerValue(err))
		writeJSON(w, http.StatusInternalServerError, xmd.ErrorResponse{Error: err.Error()})
		return
	}

	status := statusOK
	if err != nil {
		log.Errorw("generation failed, returning partial output", "error", err)
		status = statusPartial
		w.Header().Set(xmd.ErrorHeader, headerValue(err))
	}
	s.metrics.observe(req.Template, status, time.Since(start))
	writeJSON(w, http.StatusOK, xmd.CompileResponse{OutputImage: image.ToPayload(res.Output)})
}

// reject answers a request that never reached the compiler. Its template is
// not trusted, so the metric is labeled "none".
func (s *Server) reject(w http.ResponseWriter, log *zap.SugaredLogger, status int, msg string) {
	log.Warnw("rejected request", "status", status, "error", msg)
	s.metrics.observe("none", statusRejected, 0)
	writeJSON(w, status, xmd.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// headerValue flattens err onto one header line.
func headerValue(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}
