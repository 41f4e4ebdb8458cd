// Package server exposes the endpoint catalog and dispatcher over HTTP for the
// dashboard UI.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/komsit37/yqdash/pkg/yqdash/config"
	"github.com/komsit37/yqdash/pkg/yqdash/logger"
)

const slowRequest = 2 * time.Second

type Server struct {
	echo   *echo.Echo
	cfg    config.ServerConfig
	logger *logger.Logger
}

func New(h *Handler, cfg config.ServerConfig, l *logger.Logger) *Server {
	if l == nil {
		l = logger.Nop()
	}
	registerHTTPMetrics()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = dataResponse(c, he.Code, nil)
			return
		}
		_ = appErrorResponse(c, err)
	}

	e.Use(recoverMiddleware(l))
	e.Use(metricsMiddleware(l, slowRequest))
	if cfg.CORS {
		e.Use(corsMiddleware())
	}

	h.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{echo: e, cfg: cfg, logger: l}
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logger.String("addr", s.Addr()))
	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.echo.Shutdown(ctx)
}
