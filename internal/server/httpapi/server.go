// Package httpapi is the serving endpoint: it validates access tokens,
// answers from the response cache or the extractor, and records usage.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/flow"
	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/klauspost/compress/gzhttp"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewHTTPServer(addr string, l logging.Logger, access AccessChecker, cache ResultCache, usage UsageRecorder, ex Extractor, info Info) *HTTPServer {
	logger := l.With("module", "http_server")
	h := &handlers{
		access:    access,
		cache:     cache,
		usage:     usage,
		extractor: ex,
		info:      info,
		log:       logger,
	}
	return &HTTPServer{address: addr, handler: newRouter(h, logger), logger: logger}
}

// newRouter builds the route table wrapped in request logging and
// response compression.
func newRouter(h *handlers, l logging.Logger) http.Handler {
	mux := flow.New()
	mux.Use(requestLogger(l))
	mux.HandleFunc("/", h.root, http.MethodGet)
	mux.HandleFunc("/api/download", h.download, http.MethodGet)
	return gzhttp.GzipHandler(mux)
}

// Handler exposes the router for in-process tests.
func (s *HTTPServer) Handler() http.Handler { return s.handler }

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
