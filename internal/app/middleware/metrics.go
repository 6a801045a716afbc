package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

type httpInstruments struct {
	duration     metric.Int64Histogram
	requests     metric.Int64Counter
	successes    metric.Int64Counter
	failures     metric.Int64Counter
	requestSize  metric.Int64Histogram
	responseSize metric.Int64Histogram
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.duration, err = meter.Int64Histogram("http.server.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("The latency of HTTP requests.")); err != nil {
		return nil, err
	}
	if in.requests, err = meter.Int64Counter("http.server.requests_total",
		metric.WithDescription("The total number of HTTP requests.")); err != nil {
		return nil, err
	}
	if in.successes, err = meter.Int64Counter("http.server.success_requests_total",
		metric.WithDescription("The total number of successful HTTP requests.")); err != nil {
		return nil, err
	}
	if in.failures, err = meter.Int64Counter("http.server.error_requests_total",
		metric.WithDescription("The total number of failed HTTP requests.")); err != nil {
		return nil, err
	}
	if in.requestSize, err = meter.Int64Histogram("http.server.request_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP requests in bytes.")); err != nil {
		return nil, err
	}
	if in.responseSize, err = meter.Int64Histogram("http.server.response_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP responses in bytes.")); err != nil {
		return nil, err
	}
	return &in, nil
}

// NewMetricMiddleware records request counts, latency and payload sizes per route.
func NewMetricMiddleware(meter metric.Meter) (gin.HandlerFunc, error) {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestSize := c.Request.ContentLength

		c.Next()

		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			semconv.HTTPRouteKey.String(c.FullPath()),
			semconv.HTTPMethodKey.String(c.Request.Method),
			semconv.HTTPStatusCodeKey.Int(status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		ctx := c.Request.Context()

		in.duration.Record(ctx, time.Since(start).Milliseconds(), attrs)
		in.requests.Add(ctx, 1, attrs)
		if requestSize > 0 {
			in.requestSize.Record(ctx, requestSize, attrs)
		}
		in.responseSize.Record(ctx, int64(max(c.Writer.Size(), 0)), attrs)

		if status >= http.StatusOK && status < http.StatusBadRequest {
			in.successes.Add(ctx, 1, attrs)
		} else {
			in.failures.Add(ctx, 1, attrs)
		}
	}, nil
}
