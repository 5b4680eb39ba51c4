package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"routeguide/pkg/audit"
	"routeguide/pkg/auth"
	"routeguide/pkg/logger"
	"routeguide/pkg/metrics"
	"routeguide/pkg/ratelimit"
)

func requestIDGenerator() string {
	return uuid.NewString()
}

// RequestLoggerMiddleware логирует каждый запрос
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			log := logger.WithRequestID(requestID)

			log.Info("HTTP request",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			)

			return err
		}
	}
}

// MetricsMiddleware записывает Prometheus метрики запросов
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m := metrics.Get()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			m.RecordHTTPRequest(c.Request().Method, c.Path(),
				strconv.Itoa(status), time.Since(start))

			return err
		}
	}
}

// RateLimitMiddleware отклоняет запросы сверх лимита со статусом 429
func RateLimitMiddleware(limiter ratelimit.Limiter, keyFn ratelimit.KeyExtractor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := keyFn(c.Request())

			allowed, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				// Лимитер недоступен — пропускаем запрос
				logger.Log.Warn("Rate limiter check failed", "error", err)
				return next(c)
			}

			if !allowed {
				if info, infoErr := limiter.GetInfo(c.Request().Context(), key); infoErr == nil {
					c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
					c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
					c.Response().Header().Set("Retry-After",
						strconv.Itoa(int(time.Until(info.ResetAt).Seconds())))
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}

// JWTMiddleware проверяет Bearer токен и кладёт claims в контекст
func JWTMiddleware(manager *auth.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims, err := manager.Validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("user_role", claims.Role)

			return next(c)
		}
	}
}

// AuditConfig конфигурация аудит middleware
type AuditConfig struct {
	ServiceName    string
	ExcludeMethods map[string]bool
	Logger         audit.Logger
}

// AuditMiddleware пишет аудит запись на каждый запрос, кроме исключённых
func AuditMiddleware(cfg *AuditConfig) echo.MiddlewareFunc {
	if cfg.Logger == nil {
		cfg.Logger = audit.Get()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method + " " + c.Path()
			if cfg.ExcludeMethods != nil && cfg.ExcludeMethods[method] {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			userID, _ := c.Get("user_id").(string)
			username, _ := c.Get("username").(string)

			builder := audit.NewEntry().
				Service(cfg.ServiceName).
				Method(method).
				Action(routeToAction(c.Request().Method, c.Path())).
				User(userID, username).
				Client(c.RealIP(), c.Request().UserAgent()).
				RequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
				Duration(duration)

			if err != nil {
				builder.Outcome(audit.OutcomeFailure).
					Error(strconv.Itoa(c.Response().Status), err.Error())
			} else {
				builder.Outcome(audit.OutcomeSuccess)
			}

			entry := builder.Build()

			// Асинхронно логируем
			go func() {
				if logErr := cfg.Logger.Log(context.Background(), entry); logErr != nil {
					logger.Log.Warn("Failed to write audit log", "error", logErr)
				}
			}()

			return err
		}
	}
}

// routeToAction определяет действие по методу и пути запроса
func routeToAction(method, path string) audit.Action {
	switch {
	case strings.Contains(path, "/routes/export"):
		return audit.ActionExport
	case strings.Contains(path, "/routes"):
		return audit.ActionRoute
	case method == http.MethodPost:
		return audit.ActionCreate
	case method == http.MethodDelete:
		return audit.ActionDelete
	case method == http.MethodPut || method == http.MethodPatch:
		return audit.ActionUpdate
	default:
		return audit.ActionRead
	}
}
