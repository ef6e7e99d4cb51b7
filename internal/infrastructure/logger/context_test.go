package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestFromContext_WithoutLoggerIsNop(t *testing.T) {
	l := FromContext(context.Background())
	assert.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestContextEnrichment(t *testing.T) {
	base, logs := observed()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithOwnerID(ctx, FromContext(ctx), "guest:abc")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "user-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "guest:abc", GetOwnerID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))

	L(ctx).Info("cart updated")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "guest:abc", fields["owner_id"])
		assert.Equal(t, "user-9", fields["user_id"])
	}
}

func TestL_AddsTraceFields(t *testing.T) {
	base, logs := observed()
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(WithContext(context.Background(), base), sc)

	L(ctx).Info("payment verified")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.Equal(t, sc.SpanID().String(), fields["span_id"])
}

func TestOr(t *testing.T) {
	fallback, fallbackLogs := observed()
	Or(context.Background(), fallback).Info("from fallback")
	assert.Equal(t, 1, fallbackLogs.Len())

	scoped, scopedLogs := observed()
	Or(WithContext(context.Background(), scoped), fallback).Info("from context")
	assert.Equal(t, 1, scopedLogs.Len())
	assert.Equal(t, 1, fallbackLogs.Len())
}
