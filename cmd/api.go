package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"

	"golang-papertrade/internal/delivery/http"
	"golang-papertrade/pkg/logger"
	customMiddleware "golang-papertrade/pkg/middleware"
)

type HTTPServer struct {
	ctx     context.Context
	appDep  *AppDependency
	handler *http.HttpAPIHandler
}

func NewHTTPServer(ctx context.Context, appDep *AppDependency, handler *http.HttpAPIHandler) *HTTPServer {
	return &HTTPServer{
		ctx:     ctx,
		appDep:  appDep,
		handler: handler,
	}
}

func (s *HTTPServer) Start() error {
	s.appDep.log.Info("Starting HTTP server", logger.IntField("port", s.appDep.cfg.API.Port))
	address := fmt.Sprintf(":%d", s.appDep.cfg.API.Port)

	s.SetupMiddleware()
	s.SetupRoutes()

	return s.appDep.echo.Start(address)
}

func (s *HTTPServer) Stop() error {
	s.appDep.log.Info("Shutting down HTTP server")

	// Detached from s.ctx, which is already cancelled once shutdown starts.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopDone := make(chan error, 1)
	go func() {
		stopDone <- s.appDep.echo.Shutdown(ctx)
	}()

	select {
	case err := <-stopDone:
		if err != nil {
			s.appDep.log.Error("Error when stopping HTTP server", logger.ErrorField(err))
			return err
		}
		s.appDep.log.Info("HTTP server stopped successfully")
	case <-ctx.Done():
		s.appDep.log.Warn("Timeout while stopping HTTP server, forcing shutdown")
	}
	return nil
}

func (s *HTTPServer) SetupMiddleware() {
	cfg := s.appDep.cfg.API
	e := s.appDep.echo

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(customMiddleware.NewRequestLoggerMiddleware(s.appDep.log))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.RequestTimeout))
	}
	if cfg.RateLimit > 0 {
		e.Use(customMiddleware.NewRateLimiterMiddleware(cfg.RateLimit, cfg.RateBurst))
	}
}

func (s *HTTPServer) SetupRoutes() {
	s.handler.SetupRoutes()
}
