package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// GetTraceID retrieves trace_id from context, returns empty string if missing
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(traceIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithTraceID returns a new context with the given trace ID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// Init sets up the global slog JSON logger with file:line info
func Init(level ...string) {
	lvl := slog.LevelInfo
	if len(level) > 0 {
		lvl = ParseLevel(level[0])
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler).With(slog.String("service", "loan-mpesa")))
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CONTEXT-AWARE LOGGING //

func withTrace(ctx context.Context, args []slog.Attr) []slog.Attr {
	if traceID := GetTraceID(ctx); traceID != "" {
		args = append(args, slog.String("trace_id", traceID))
	}
	return args
}

// CtxInfo logs an info message with the trace ID
func CtxInfo(ctx context.Context, msg string, args ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, withTrace(ctx, args)...)
}

func CtxError(ctx context.Context, msg string, err error, args ...slog.Attr) {
	args = append(withTrace(ctx, args), slog.Any("error", err))
	slog.LogAttrs(ctx, slog.LevelError, msg, args...)
}

// CtxDebug logs debug messages
func CtxDebug(ctx context.Context, msg string, args ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, withTrace(ctx, args)...)
}

// CtxWarn logs warnings
func CtxWarn(ctx context.Context, msg string, args ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, withTrace(ctx, args)...)
}

// NON-CONTEXT LOGGING //

func Info(msg string, args ...slog.Attr) {
	slog.LogAttrs(context.Background(), slog.LevelInfo, msg, args...)
}

func Debug(msg string, args ...slog.Attr) {
	slog.LogAttrs(context.Background(), slog.LevelDebug, msg, args...)
}

func Warn(msg string, args ...slog.Attr) {
	slog.LogAttrs(context.Background(), slog.LevelWarn, msg, args...)
}

func Error(msg string, err error, args ...slog.Attr) {
	args = append(args, slog.Any("error", err))
	slog.LogAttrs(context.Background(), slog.LevelError, msg, args...)
}
