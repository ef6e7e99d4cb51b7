package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(
		config.AppConfig{Env: "staging", Version: "1.4.0"},
		config.TelemetryConfig{Enabled: true, CollectorEndpoint: "otel:4317", SamplingRatio: 0.5, ServiceName: "shop", Insecure: true},
	)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "1.4.0", cfg.ServiceVersion)
	assert.Equal(t, "shop", cfg.ServiceName)
	assert.True(t, cfg.Insecure)

	res, err := newResource(cfg)
	require.NoError(t, err)
	assert.Contains(t, res.String(), "service.name=shop")
}

func TestProvidersDisabled(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, Config{Enabled: true}, 0, false, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartServiceSpan(context.Background(), "payment", "verify",
		SpanAttrOrderID, "ord-1",
		SpanAttrAmountPaise, int64(19900),
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, SpanAttrItemCount, 3)
	RecordError(span, errors.New("signature mismatch"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "payment.verify", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "ord-1", attrs[SpanAttrOrderID])
	assert.Equal(t, "19900", attrs[SpanAttrAmountPaise])
	assert.Equal(t, "3", attrs[SpanAttrItemCount])

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestBusinessMetrics(t *testing.T) {
	_, err := NewBusinessMetrics(nil)
	require.ErrorIs(t, err, ErrMeterNil)

	reader := sdkmetric.NewManualReader()
	mp := NewMeterProviderWithReader(reader)
	bm, err := NewBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOrderPlaced(ctx, "mock")
	bm.RecordOrderPlaced(ctx, "mock")
	bm.RecordOrderPaid(ctx, "mock", decimal.NewFromInt(499))
	bm.RecordPaymentFailure(ctx, "SIGNATURE_MISMATCH")
	bm.RecordCouponApply(ctx, "PERCENTAGE", "applied")
	bm.RecordCartMutation(ctx, "add")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	var sawHistogram bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				sawHistogram = true
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, uint64(1), data.DataPoints[0].Count)
				assert.InDelta(t, 499.0, data.DataPoints[0].Sum, 0.001)
			}
		}
	}
	assert.True(t, sawHistogram)
	assert.Equal(t, int64(2), sums["storefront_orders_placed_total"])
	assert.Equal(t, int64(1), sums["storefront_orders_paid_total"])
	assert.Equal(t, int64(1), sums["storefront_payment_failures_total"])
	assert.Equal(t, int64(1), sums["storefront_coupon_applies_total"])
	assert.Equal(t, int64(1), sums["storefront_cart_mutations_total"])
}

func TestDBTracing_Disabled(t *testing.T) {
	p := NewDBTracing(config.TelemetryConfig{DBTraceEnabled: true}, zap.NewNop())
	assert.False(t, p.enabled)
	assert.NoError(t, p.Register(nil))
	assert.Greater(t, p.slowQuery.Milliseconds(), int64(0))
}
