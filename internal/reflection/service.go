package reflection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/reflectctl/internal/registry"
	"github.com/rs/zerolog/log"
)

const shutdownGrace = 5 * time.Second

// Service runs one reflection server as a standalone process: lifecycle
// hooks, the HTTP listener, and graceful drain on OS signal or shutdown
// broadcast.
type Service struct {
	cfg      ServiceConfig
	server   *Server
	http     *http.Server
	shutdown *ShutdownBroadcast
}

// NewService wires a server and its listener. The shutdown broadcast may be
// shared with other services in the process; /api/__quitquitquit stops them
// all.
func NewService(cfg ServiceConfig, reg *registry.Registry, shutdown *ShutdownBroadcast) (*Service, error) {
	server, err := NewServer(cfg, reg, shutdown)
	if err != nil {
		return nil, err
	}
	listenAddr := cfg.ListenAddr
	if listenAddr == "" {
		listenAddr = DefaultServiceConfig().ListenAddr
	}
	return &Service{
		cfg:      cfg,
		server:   server,
		shutdown: shutdown,
		http:     &http.Server{Addr: listenAddr, Handler: server.Router()},
	}, nil
}

// Server returns the route-layer owner, mainly for tests.
func (s *Service) Server() *Server {
	return s.server
}

// Run blocks until SIGINT/SIGTERM or remote termination.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve executes the startup hook, serves until ctx or the shutdown
// broadcast fires, drains in-flight requests, then executes the shutdown
// hook. Hooks run once each, outside the request path.
func (s *Service) Serve(ctx context.Context) error {
	if hook := s.cfg.OnStartup; hook != nil {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.http.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	log.Info().
		Str("server", s.server.name).
		Str("addr", s.http.Addr).
		Str("version", s.server.version).
		Msg("reflection_server_listening")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Str("server", s.server.name).Msg("signal_shutdown")
	case <-s.shutdown.Done():
		log.Info().Str("server", s.server.name).Msg("broadcast_shutdown")
	case err := <-errCh:
		runErr = err
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.http.Shutdown(drainCtx); err != nil && runErr == nil {
		runErr = err
	}

	if hook := s.cfg.OnShutdown; hook != nil {
		if err := hook(context.Background()); err != nil {
			log.Warn().Err(err).Msg("shutdown_hook_failed")
		}
	}
	return runErr
}
