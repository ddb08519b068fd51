package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// GracefulServer runs an http.Server until SIGINT/SIGTERM, then drains
// in-flight requests and runs registered shutdown hooks in order.
type GracefulServer struct {
	srv     *http.Server
	logger  *slog.Logger
	timeout time.Duration
	hooks   []func(context.Context) error
}

func NewGracefulServer(srv *http.Server, logger *slog.Logger, timeout time.Duration) *GracefulServer {
	return &GracefulServer{
		srv:     srv,
		logger:  logger,
		timeout: timeout,
	}
}

// OnShutdown registers a hook to run after the listener has drained.
func (g *GracefulServer) OnShutdown(hook func(context.Context) error) {
	g.hooks = append(g.hooks, hook)
}

// Run blocks until the server stops serving, either by error or by signal.
func (g *GracefulServer) Run() error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("server listening", "addr", g.srv.Addr)
		if err := g.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		g.logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	if err := g.srv.Shutdown(ctx); err != nil {
		g.logger.Error("server shutdown failed", "error", err)
		return err
	}

	for _, hook := range g.hooks {
		if err := hook(ctx); err != nil {
			g.logger.Error("shutdown hook failed", "error", err)
		}
	}

	g.logger.Info("server stopped cleanly")
	return nil
}
