// Package api exposes the rehearsal coach over HTTP.
//
// The server wires the tiered evaluator, script parser, STT provider,
// embeddings provider, and progress store behind a JSON API. Providers are
// optional: endpoints whose provider is not configured answer 503 so a
// local-only deployment still serves everything the deterministic scorer
// can answer.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/linecue/linecue/internal/evaluate"
	"github.com/linecue/linecue/internal/health"
	"github.com/linecue/linecue/internal/observe"
	"github.com/linecue/linecue/internal/progress"
	"github.com/linecue/linecue/internal/script"
	"github.com/linecue/linecue/pkg/provider/embeddings"
	"github.com/linecue/linecue/pkg/provider/stt"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

// Deps holds the subsystems the server exposes. Evaluator, Local, and Store
// are required; the rest may be nil when the deployment does not configure
// the corresponding provider.
type Deps struct {
	// Evaluator answers POST /v1/evaluate. Usually a [evaluate.Tiered].
	Evaluator evaluate.Evaluator

	// Local answers POST /v1/evaluate/local, bypassing any remote judge.
	Local *evaluate.Local

	// Parser answers POST /v1/scripts/parse. Nil disables the endpoint.
	Parser *script.Parser

	// STT answers POST /v1/transcribe. Nil disables the endpoint.
	STT stt.Provider

	// Embedder indexes parsed lines and answers similar-line queries.
	// Nil disables embedding-backed endpoints.
	Embedder embeddings.Provider

	// Store records attempts and answers progress queries.
	Store progress.Store

	// Health serves /healthz and /readyz.
	Health *health.Handler
}

// Option is a functional option for [New].
type Option func(*Server)

// WithTLS serves HTTPS using the given certificate and key files.
func WithTLS(certFile, keyFile string) Option {
	return func(s *Server) {
		s.certFile = certFile
		s.keyFile = keyFile
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests
// during graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// Server is the linecue HTTP server.
type Server struct {
	addr            string
	certFile        string
	keyFile         string
	shutdownTimeout time.Duration
	deps            Deps
	metrics         *observe.Metrics
	handler         http.Handler
}

// New creates a Server listening on addr. Routes are registered once here;
// the returned server is ready for [Server.Run].
func New(addr string, deps Deps, opts ...Option) *Server {
	s := &Server{
		addr:            addr,
		shutdownTimeout: defaultShutdownTimeout,
		deps:            deps,
		metrics:         observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /v1/evaluate/local", s.handleEvaluateLocal)
	mux.HandleFunc("POST /v1/similarity", s.handleSimilarity)
	mux.HandleFunc("POST /v1/lines/analyze", s.handleAnalyzeLine)
	mux.HandleFunc("POST /v1/scripts/parse", s.handleParseScript)
	mux.HandleFunc("POST /v1/attempts", s.handleRecordAttempt)
	mux.HandleFunc("GET /v1/scripts/{id}/trouble-lines", s.handleTroubleLines)
	mux.HandleFunc("GET /v1/scripts/{id}/lines/{lineID}/stats", s.handleLineStats)
	mux.HandleFunc("POST /v1/scripts/{id}/similar-lines", s.handleSimilarLines)
	mux.HandleFunc("POST /v1/transcribe", s.handleTranscribe)
	mux.Handle("GET /metrics", promhttp.Handler())
	if deps.Health != nil {
		deps.Health.Register(mux)
	}

	s.handler = observe.Middleware(s.metrics)(mux)
	return s
}

// Handler returns the fully wired HTTP handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully. It
// returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", s.addr, "tls", s.certFile != "")
		var err error
		if s.certFile != "" {
			err = srv.ListenAndServeTLS(s.certFile, s.keyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
