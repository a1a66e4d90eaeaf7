package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"eventsync/core/cache"
	"eventsync/core/config"
	"eventsync/core/logger"
	"eventsync/core/middleware"
	"eventsync/modules/auth"
	authService "eventsync/modules/auth/service"
	"eventsync/modules/event"

	"github.com/labstack/echo/v4"
)

type Server struct {
	Echo   *echo.Echo
	cfg    *config.Config
	cache  cache.Cache
	events interface{ Close() }
	tokens *authService.TokenSupplier
}

// New builds the HTTP server and wires every module. c may be nil.
func New(cfg *config.Config, c cache.Cache, client *http.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	middleware.Setup(e)

	e.GET("/health", health(c))

	authSvc, tokens := auth.Init(e, cfg, c)
	eventService := event.Init(e, cfg, tokens, client)

	// Signing out also forgets the session's events.
	authSvc.OnSignOut(eventService.Reset)

	return &Server{Echo: e, cfg: cfg, cache: c, events: eventService, tokens: tokens}
}

// Run loads configuration, starts the server and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	var c cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis)
		if err != nil {
			return err
		}
		c = redisCache
	}

	srv := New(cfg, c, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "address", cfg.Address())
		if err := srv.Echo.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server:Run:Start:Error", "error", err)
		}
		srv.close()
		return err
	case <-ctx.Done():
	}

	logger.Info("Server:Run:ShuttingDown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	err = srv.Echo.Shutdown(shutdownCtx)
	srv.close()
	return err
}

// health reports 503 when the configured Redis cache stops answering.
func health(c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if c == nil {
			return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
		pctx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
		defer cancel()
		if err := c.Ping(pctx); err != nil {
			logger.Error("Server:health:Ping:Error", "error", err)
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": "unreachable"})
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok", "redis": "ok"})
	}
}

func (s *Server) close() {
	s.events.Close()
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logger.Error("Server:close:Cache:Error", "error", err)
		}
	}
}
