package otel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const connectTimeout = 5 * time.Second

var (
	mu     sync.RWMutex
	tracer trace.Tracer
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Setup installs the OTLP/HTTP tracer provider. Without a collector URL, or
// when the exporter cannot be built, tracing stays a no-op.
func Setup(ctx context.Context, cfg config.OtelConfig) (ShutdownFunc, error) {
	noopShutdown := func(context.Context) error { return nil }

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if cfg.CollectorURL == "" {
		logger.Info("OTLP collector not configured, tracing disabled")
		return noopShutdown, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, err
	}

	connectionCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	exporter, err := otlptracehttp.New(connectionCtx,
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(cfg.CollectorURL),
	)
	if err != nil {
		logger.Error("OTLP exporter setup failed, tracing disabled", err, slog.String("collector", cfg.CollectorURL))
		return noopShutdown, nil
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	mu.Lock()
	tracer = provider.Tracer(cfg.ServiceName)
	mu.Unlock()

	return func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return provider.Shutdown(shutdownCtx)
	}, nil
}

func GetTracer() trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	if tracer == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return tracer
}
