package api

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// shutdownTimeout is the maximum time to wait for in-flight requests
// during graceful shutdown.
const shutdownTimeout = 30 * time.Second

// Server wraps the HTTP(S) listener around the router.
type Server struct {
	srv *http.Server
}

// NewServer creates a Server for the given handler. tlsConfig may be nil for
// plain HTTP.
func NewServer(addr string, handler http.Handler, tlsConfig *tls.Config) *Server {
	return &Server{
		srv: &http.Server{
			Addr:      addr,
			Handler:   handler,
			TLSConfig: tlsConfig,
		},
	}
}

// ListenAndServe starts the server and blocks until the context is
// cancelled, then drains in-flight requests for up to 30 seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		var err error
		if s.srv.TLSConfig != nil {
			// Certificates come from TLSConfig, so the file arguments stay empty.
			err = s.srv.ListenAndServeTLS("", "")
		} else {
			err = s.srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.srv.Shutdown(shutdownCtx)
}
