package interceptors

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Gelzieny/remix-of-economic-insight/internal/telemetry"
)

// httpRequestPayload is the JSON shape of http.request events.
type httpRequestPayload struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry returns middleware that emits an http.request event after each request.
// Best-effort: emits run asynchronously and failures are only logged. If emitter is nil, the
// middleware no-ops. skipRoutes holds "METHOD /route" keys not to emit (e.g. GET /health).
func Telemetry(emitter telemetry.EventEmitter, logger *zap.Logger, skipRoutes map[string]bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if emitter == nil || skipRoutes[c.Request().Method+" "+c.Path()] {
				return err
			}
			ctx := c.Request().Context()
			userID, _ := GetUserID(ctx)
			payload := httpRequestPayload{
				Method:     c.Request().Method,
				Route:      c.Path(),
				StatusCode: responseStatus(c, err),
				DurationMs: time.Since(start).Milliseconds(),
				ClientIP:   ClientIP(ctx),
			}
			telemetry.EmitAsync(emitter, logger, telemetry.NewEvent(telemetry.EventHTTPRequest, "http_middleware", userID, payload))
			return err
		}
	}
}

// Tracing returns middleware that starts a server span per request, continuing any W3C trace
// context carried by the request headers.
func Tracing(tp trace.TracerProvider) echo.MiddlewareFunc {
	tracer := tp.Tracer("github.com/Gelzieny/remix-of-economic-insight/internal/server")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracer.Start(ctx, req.Method+" "+c.Path(),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("http.route", c.Path()),
				))
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			span.SetAttributes(attribute.Int("http.response.status_code", responseStatus(c, err)))
			if err != nil {
				span.RecordError(err)
			}
			return err
		}
	}
}

// Metrics returns middleware recording request count and duration on meter.
func Metrics(meter metric.Meter) (echo.MiddlewareFunc, error) {
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			attrs := metric.WithAttributes(
				attribute.String("http.request.method", c.Request().Method),
				attribute.String("http.route", c.Path()),
				attribute.String("http.response.status_code", strconv.Itoa(responseStatus(c, err))),
			)
			ctx := c.Request().Context()
			requests.Add(ctx, 1, attrs)
			duration.Record(ctx, time.Since(start).Seconds(), attrs)
			return err
		}
	}, nil
}
