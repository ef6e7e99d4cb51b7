package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	ownerIDKey   contextKey = "owner_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and attaches it to the context logger
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return enrich(context.WithValue(ctx, requestIDKey, requestID), l, zap.String("request_id", requestID))
}

// WithUserID stores the authenticated user and attaches it to the context logger
func WithUserID(ctx context.Context, l *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return enrich(context.WithValue(ctx, userIDKey, userID), l, zap.String("user_id", userID))
}

// WithOwnerID stores the cart owner key (user or guest session)
func WithOwnerID(ctx context.Context, l *zap.Logger, ownerID string) (context.Context, *zap.Logger) {
	return enrich(context.WithValue(ctx, ownerIDKey, ownerID), l, zap.String("owner_id", ownerID))
}

func enrich(ctx context.Context, l *zap.Logger, f zap.Field) (context.Context, *zap.Logger) {
	enriched := l.With(f)
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	s, _ := ctx.Value(userIDKey).(string)
	return s
}

// GetOwnerID retrieves the cart owner key from context
func GetOwnerID(ctx context.Context) string {
	s, _ := ctx.Value(ownerIDKey).(string)
	return s
}

// TraceFields returns trace_id and span_id fields for the active span, if any
func TraceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// L returns the context logger with trace correlation fields added.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if fields := TraceFields(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

// Or returns L(ctx) when the context carries a logger and fallback otherwise
func Or(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if _, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return L(ctx)
	}
	if fields := TraceFields(ctx); len(fields) > 0 {
		return fallback.With(fields...)
	}
	return fallback
}
