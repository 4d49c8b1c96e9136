package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Timeouts applied to the http.Server built by NewHTTPServer.
const (
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 15 * time.Second
	IdleTimeout  = 60 * time.Second
)

// NewHTTPServer wraps handler with the default timeouts. The write timeout
// is extended by submitDelay so delayed answers are not cut off.
func NewHTTPServer(addr string, handler http.Handler, submitDelay time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: ReadTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout + submitDelay,
		IdleTimeout:       IdleTimeout,
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within grace.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.Duration("grace", grace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: forced shutdown: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}

// ListenAndServe listens on srv.Addr and calls Serve.
func ListenAndServe(ctx context.Context, srv *http.Server, grace time.Duration, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", srv.Addr, err)
	}
	return Serve(ctx, srv, ln, grace, logger)
}
