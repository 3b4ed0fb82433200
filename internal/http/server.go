package http

import (
	"context"
	"net/http"
	"time"

	"scadenze/internal/log"
)

// Server wires the handler, middleware chain and timeouts into an
// http.Server ready for graceful shutdown.
type Server struct {
	srv     *http.Server
	limiter *Limiter
	logger  *log.Logger
}

func NewServer(addr string, handler *Handler, logger *log.Logger) *Server {
	mux := http.NewServeMux()
	handler.Routes(mux)

	limiter := NewLimiter(120)
	chain := SecurityHeaders(limiter.Middleware(Trace(logger)(log.Middleware(logger)(mux))))

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      chain,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		limiter: limiter,
		logger:  logger.WithComponent(log.ComponentHTTP),
	}
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.srv.Shutdown(ctx)
}
