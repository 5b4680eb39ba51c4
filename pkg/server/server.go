// Package server собирает HTTP сервер сервиса: echo, middleware,
// метрики, трассировка и graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"routeguide/gen/openapi"
	"routeguide/pkg/apperror"
	"routeguide/pkg/audit"
	"routeguide/pkg/auth"
	"routeguide/pkg/config"
	"routeguide/pkg/logger"
	"routeguide/pkg/metrics"
	"routeguide/pkg/ratelimit"
	"routeguide/pkg/swagger"
	"routeguide/pkg/telemetry"
)

// HTTPServer обёртка над echo.Echo
type HTTPServer struct {
	echo        *echo.Echo
	serviceName string
	config      *config.Config
	telemetry   *telemetry.Provider
	rateLimiter ratelimit.Limiter
	jwtManager  *auth.JWTManager
	auditLogger audit.Logger
}

// ServerOptions дополнительные опции сервера
type ServerOptions struct {
	RateLimiter  ratelimit.Limiter
	KeyExtractor ratelimit.KeyExtractor
	AuditLogger  audit.Logger
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *HTTPServer {
	return NewWithOptions(cfg, nil)
}

// NewWithOptions создаёт сервер с дополнительными опциями
func NewWithOptions(cfg *config.Config, opts *ServerOptions) *HTTPServer {
	if opts == nil {
		opts = &ServerOptions{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: requestIDGenerator,
	}))
	e.Use(middleware.Recover())

	if cfg.HTTP.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.HTTP.BodyLimit))
	}

	if cfg.HTTP.CORS.Enabled {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORS.AllowedOrigins,
			AllowMethods:     cfg.HTTP.CORS.AllowedMethods,
			AllowHeaders:     cfg.HTTP.CORS.AllowedHeaders,
			AllowCredentials: cfg.HTTP.CORS.AllowCredentials,
			MaxAge:           cfg.HTTP.CORS.MaxAge,
		}))
	}

	rateLimiter := opts.RateLimiter
	if rateLimiter == nil && cfg.RateLimit.Enabled {
		var err error
		rateLimiter, err = ratelimit.New(ratelimit.FromConfig(&cfg.RateLimit))
		if err != nil {
			logger.Log.Warn("Failed to create rate limiter, continuing without it", "error", err)
			rateLimiter = nil
		} else {
			logger.Log.Info("Rate limiter initialized",
				"requests", cfg.RateLimit.Requests,
				"window", cfg.RateLimit.Window,
				"backend", cfg.RateLimit.Backend,
			)
		}
	}

	if rateLimiter != nil {
		keyExtractor := opts.KeyExtractor
		if keyExtractor == nil {
			keyExtractor = ratelimit.IPKeyExtractor
		}
		e.Use(RateLimitMiddleware(rateLimiter, keyExtractor))
	}

	var jwtManager *auth.JWTManager
	if cfg.Auth.Enabled {
		jwtManager = auth.FromConfig(&cfg.Auth)
		logger.Log.Info("JWT authentication enabled", "issuer", cfg.Auth.Issuer)
	}

	auditLogger := opts.AuditLogger
	if auditLogger == nil && cfg.Audit.Enabled {
		var err error
		auditLogger, err = audit.New(&audit.Config{
			Enabled:     cfg.Audit.Enabled,
			Backend:     cfg.Audit.Backend,
			FilePath:    cfg.Audit.FilePath,
			BufferSize:  cfg.Audit.BufferSize,
			FlushPeriod: cfg.Audit.FlushPeriod,
		})
		if err != nil {
			logger.Log.Warn("Failed to create audit logger, continuing without it", "error", err)
			auditLogger = nil
		} else {
			audit.SetGlobal(auditLogger)
			logger.Log.Info("Audit logger initialized", "backend", cfg.Audit.Backend)
		}
	}

	e.Use(RequestLoggerMiddleware())
	e.Use(MetricsMiddleware())

	if auditLogger != nil {
		auditExclude := make(map[string]bool)
		for _, method := range cfg.Audit.ExcludeMethods {
			auditExclude[method] = true
		}
		e.Use(AuditMiddleware(&AuditConfig{
			ServiceName:    cfg.App.Name,
			ExcludeMethods: auditExclude,
			Logger:         auditLogger,
		}))
	}

	if cfg.Tracing.Enabled {
		e.Use(telemetry.EchoMiddleware())
	}

	return &HTTPServer{
		echo:        e,
		serviceName: cfg.App.Name,
		config:      cfg,
		rateLimiter: rateLimiter,
		jwtManager:  jwtManager,
		auditLogger: auditLogger,
	}
}

// Echo возвращает *echo.Echo для регистрации маршрутов
func (s *HTTPServer) Echo() *echo.Echo {
	return s.echo
}

// JWTManager возвращает менеджер JWT (nil, если авторизация выключена)
func (s *HTTPServer) JWTManager() *auth.JWTManager {
	return s.jwtManager
}

// AuditLogger возвращает аудит логгер (nil, если аудит выключен)
func (s *HTTPServer) AuditLogger() audit.Logger {
	return s.auditLogger
}

// Run запускает сервер и блокируется до сигнала завершения
func (s *HTTPServer) Run() error {
	ctx := context.Background()

	if s.config.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     s.config.Tracing.Enabled,
			Endpoint:    s.config.Tracing.Endpoint,
			ServiceName: s.config.Tracing.ServiceName,
			Version:     s.config.App.Version,
			Environment: s.config.App.Environment,
			SampleRate:  s.config.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			s.telemetry = tp
			logger.Log.Info("Telemetry initialized",
				"endpoint", s.config.Tracing.Endpoint,
				"sample_rate", s.config.Tracing.SampleRate,
			)
		}
	}

	if s.config.Metrics.Enabled {
		go func() {
			logger.Log.Info("Starting metrics server",
				"port", s.config.Metrics.Port,
				"path", s.config.Metrics.Path,
			)
			if err := metrics.StartMetricsServer(s.config.Metrics.Port); err != nil {
				logger.Log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	if s.config.Swagger.Enabled {
		go func() {
			spec, err := openapi.GetSpec()
			if err != nil {
				logger.Log.Error("Failed to load OpenAPI spec", "error", err)
				return
			}

			swaggerCfg := &swagger.Config{
				Title:    s.config.Swagger.Title,
				BasePath: "/swagger",
			}

			server := swagger.NewServer(swaggerCfg, spec)
			if err := server.Start(s.config.Swagger.Port); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("Swagger server failed", "error", err)
			}
		}()
		logger.Log.Info("Swagger UI started", "port", s.config.Swagger.Port)
	}

	if m := metrics.Get(); m != nil {
		m.SetServiceInfo(s.config.App.Version, s.config.App.Environment)
	}

	// Аудит событие старта сервиса
	if s.auditLogger != nil {
		entry := audit.NewEntry().
			Service(s.serviceName).
			Method("server.Start").
			Action(audit.ActionCreate).
			Outcome(audit.OutcomeSuccess).
			Meta("port", s.config.HTTP.Port).
			Meta("version", s.config.App.Version).
			Meta("environment", s.config.App.Environment).
			Build()
		if err := s.auditLogger.Log(ctx, entry); err != nil {
			logger.Log.Warn("Failed to log audit entry", "error", err)
		}
	}

	s.echo.Server.ReadTimeout = s.config.HTTP.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.HTTP.WriteTimeout

	errCh := make(chan error, 1)

	go func() {
		logger.Log.Info("Starting HTTP server",
			"service", s.serviceName,
			"port", s.config.HTTP.Port,
			"environment", s.config.App.Environment,
			"version", s.config.App.Version,
		)
		if err := s.echo.Start(fmt.Sprintf(":%d", s.config.HTTP.Port)); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return s.waitForShutdown(errCh)
}

func (s *HTTPServer) waitForShutdown(errCh chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Log.Info("Received shutdown signal", "signal", sig)
	}

	// Аудит событие остановки
	if s.auditLogger != nil {
		entry := audit.NewEntry().
			Service(s.serviceName).
			Method("server.Shutdown").
			Action(audit.ActionUpdate).
			Outcome(audit.OutcomeSuccess).
			Meta("reason", "signal").
			Build()
		if err := s.auditLogger.Log(context.Background(), entry); err != nil {
			logger.Log.Warn("Failed to log audit entry", "error", err)
		}
	}

	shutdownTimeout := s.config.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			logger.Log.Warn("Failed to shutdown telemetry", "error", err)
		}
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Close(); err != nil {
			logger.Log.Warn("Failed to close rate limiter", "error", err)
		}
	}

	if s.auditLogger != nil {
		if err := s.auditLogger.Close(); err != nil {
			logger.Log.Warn("Failed to close audit logger", "error", err)
		}
	}

	if err := s.echo.Shutdown(ctx); err != nil {
		logger.Log.Warn("Forcing server stop", "error", err)
		return s.echo.Close()
	}

	logger.Log.Info("Server stopped gracefully")
	return nil
}

// Shutdown останавливает сервер
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ErrorHandler переводит ошибки приложения в HTTP ответы
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"
	code := apperror.CodeInternal

	var httpErr *echo.HTTPError
	var appErr *apperror.Error

	switch {
	case errors.As(err, &appErr):
		status = appErr.HTTPStatus()
		message = appErr.Message
		code = appErr.Code
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
		code = apperror.CodeInvalidArgument
	}

	if status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed", "error", err, "path", c.Path())
	}

	resp := map[string]any{
		"error": map[string]any{
			"code":    string(code),
			"message": message,
		},
	}

	if jsonErr := c.JSON(status, resp); jsonErr != nil {
		logger.Log.Error("Failed to write error response", "error", jsonErr)
	}
}
