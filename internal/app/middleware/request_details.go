package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maskedValue = "*****"

// AttachRequestDetails tags each request with a trace id and writes one
// access log line once the handler returns.
func AttachRequestDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()

		requestID := c.GetHeader(consts.RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		ctx := logger.WithTraceID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(consts.RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("http_method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Any("query", c.Request.URL.Query()),
			slog.Any("request_headers", extractHeaders(c.Request.Header)),
			slog.Any("response_headers", extractHeaders(c.Writer.Header())),
			slog.String("request_time", start.Format(time.RFC3339Nano)),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		if status >= http.StatusInternalServerError {
			logger.CtxWarn(ctx, "request completed", attrs...)
			return
		}
		logger.CtxInfo(ctx, "request completed", attrs...)
	}
}

func extractHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		result[key] = values[0]
	}
	return maskSensitiveData(result, consts.SensitiveKeys)
}

func maskSensitiveData(data map[string]string, keysToMask []string) map[string]string {
	masked := make(map[string]string, len(data))
	for key, value := range data {
		if slices.ContainsFunc(keysToMask, func(k string) bool { return strings.EqualFold(k, key) }) {
			masked[key] = maskedValue
			continue
		}
		masked[key] = value
	}
	return masked
}
