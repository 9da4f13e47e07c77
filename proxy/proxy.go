// Package proxy exposes the local forwarding surface the dashboard calls
// instead of talking to the automation endpoints directly, sidestepping
// browser CORS restrictions. It relays upstream status and body verbatim.
package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-center/config"
	"service-center/monitoring"
	"service-center/security"
	"service-center/services"
)

type Server struct {
	echo     *echo.Echo
	settings *services.SettingsService
	monitor  *monitoring.Monitor
	hc       *http.Client
	srv      *http.Server
}

func NewServer(cfg *config.Config, settings *services.SettingsService, limiter *security.RateLimiter, monitor *monitoring.Monitor) *Server {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
	}))

	s := &Server{
		echo:     e,
		settings: settings,
		monitor:  monitor,
		hc:       &http.Client{Timeout: 30 * time.Second},
		srv: &http.Server{
			Addr:    ":" + cfg.ProxyPort,
			Handler: e,
		},
	}

	e.Any("/api/n8n-proxy", s.Forward, limiter.ProxyRateLimit())
	if cfg.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return s
}

// Forward relays the request to the external endpoint selected by the
// action query parameter and returns the upstream status and body
// unchanged.
func (s *Server) Forward(c echo.Context) error {
	action := c.QueryParam("action")
	ctx := c.Request().Context()

	target, ok := s.resolveAction(ctx, action)
	if !ok {
		s.monitor.TrackProxyRequest(action, "unknown")
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("unknown action %q", action),
		})
	}

	req, err := http.NewRequestWithContext(ctx, c.Request().Method, target, c.Request().Body)
	if err != nil {
		return s.internalError(c, action, err)
	}
	if ct := c.Request().Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return s.internalError(c, action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return s.internalError(c, action, err)
	}

	s.monitor.TrackProxyRequest(action, fmt.Sprintf("%dxx", resp.StatusCode/100))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return c.Blob(resp.StatusCode, contentType, body)
}

// resolveAction maps read actions to their sheet endpoints and write actions
// to the automation webhook.
func (s *Server) resolveAction(ctx context.Context, action string) (string, bool) {
	if url, ok := s.settings.EndpointForAction(ctx, action); ok {
		return url, true
	}

	switch action {
	case "new-ticket", "job-completed", "attendance", "urgent-alert", "heartbeat", "health-check":
		url := s.settings.WebhookURL(ctx)
		return url, url != ""
	}
	return "", false
}

func (s *Server) internalError(c echo.Context, action string, err error) error {
	s.monitor.TrackProxyRequest(action, "error")
	slog.Error("proxy forward failed", "action", action, "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": err.Error(),
	})
}

// Start blocks serving the proxy listener.
func (s *Server) Start() error {
	slog.Info("proxy listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains the proxy listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
