package telemetry

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EchoMiddleware создаёт echo middleware для трейсинга HTTP запросов
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			ctx, span := StartSpan(req.Context(), c.Path(),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", c.Path()),
			)

			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				span.RecordError(err)
			} else {
				span.SetAttributes(attribute.Int("http.status_code", c.Response().Status))
				span.SetStatus(codes.Ok, "")
			}

			return err
		}
	}
}
