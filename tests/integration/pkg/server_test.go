//go:build integration

package pkg_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"routeguide/pkg/config"
	"routeguide/pkg/server"
	"routeguide/tests/integration/testutil"
)

func serverConfig(port int) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-server",
			Version:     "1.0.0",
			Environment: "test",
		},
		HTTP: config.HTTPConfig{
			Port:            port,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Metrics:   config.MetricsConfig{Enabled: false},
		Tracing:   config.TracingConfig{Enabled: false},
		Swagger:   config.SwaggerConfig{Enabled: false},
		Audit:     config.AuditConfig{Enabled: false},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
}

func TestHTTPServer_StartStop(t *testing.T) {
	testutil.SkipIfNotIntegration(t)

	port := testutil.FreePort(t)
	srv := server.New(serverConfig(port))

	srv.Echo().GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Start in background
	go func() {
		_ = srv.Run()
	}()

	// Wait for server to start
	time.Sleep(200 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", port))
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestHTTPServer_RequestID(t *testing.T) {
	testutil.SkipIfNotIntegration(t)

	port := testutil.FreePort(t)
	srv := server.New(serverConfig(port))

	srv.Echo().GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	go func() {
		_ = srv.Run()
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	time.Sleep(200 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", port))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
}

func TestHTTPServer_NotFound(t *testing.T) {
	testutil.SkipIfNotIntegration(t)

	port := testutil.FreePort(t)
	srv := server.New(serverConfig(port))

	go func() {
		_ = srv.Run()
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	time.Sleep(200 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/no-such-route", port))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Error("expected error body")
	}
}

func TestHTTPServer_WithRateLimit(t *testing.T) {
	testutil.SkipIfNotIntegration(t)

	addr := testutil.RequireRedis(t)
	port := testutil.FreePort(t)

	cfg := serverConfig(port)
	cfg.App.Name = "ratelimit-test"
	cfg.RateLimit = config.RateLimitConfig{
		Enabled:   true,
		Requests:  5,
		Window:    time.Minute,
		Backend:   "redis",
		RedisAddr: addr,
	}

	srv := server.New(cfg)

	srv.Echo().GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	go func() {
		_ = srv.Run()
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	time.Sleep(200 * time.Millisecond)

	url := fmt.Sprintf("http://localhost:%d/healthz", port)

	// First 5 requests pass, the rest are limited
	var limited bool
	for i := 0; i < 10; i++ {
		resp, err := http.Get(url)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}

	if !limited {
		t.Error("expected at least one request to be rate limited")
	}
}
