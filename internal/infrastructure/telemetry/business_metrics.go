package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics records storefront business counters
type BusinessMetrics struct {
	ordersPlaced    *Counter
	ordersPaid      *Counter
	orderValue      *Histogram
	paymentFailures *Counter
	couponApplies   *Counter
	cartMutations   *Counter
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	var err error
	if bm.ordersPlaced, err = NewCounter(meter, "storefront_orders_placed_total", "Orders created awaiting payment", "{orders}"); err != nil {
		return nil, err
	}
	if bm.ordersPaid, err = NewCounter(meter, "storefront_orders_paid_total", "Orders whose payment was verified", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderValue, err = NewHistogram(meter, "storefront_order_value", "Value of paid orders", "INR", AmountBuckets...); err != nil {
		return nil, err
	}
	if bm.paymentFailures, err = NewCounter(meter, "storefront_payment_failures_total", "Payment failures by kind", "{failures}"); err != nil {
		return nil, err
	}
	if bm.couponApplies, err = NewCounter(meter, "storefront_coupon_applies_total", "Coupon apply attempts by outcome", "{attempts}"); err != nil {
		return nil, err
	}
	if bm.cartMutations, err = NewCounter(meter, "storefront_cart_mutations_total", "Cart mutations by operation", "{mutations}"); err != nil {
		return nil, err
	}
	return bm, nil
}

func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, gateway string) {
	bm.ordersPlaced.Inc(ctx, AttrGateway.String(gateway))
}

func (bm *BusinessMetrics) RecordOrderPaid(ctx context.Context, gateway string, total decimal.Decimal) {
	bm.ordersPaid.Inc(ctx, AttrGateway.String(gateway))
	bm.orderValue.Record(ctx, total.InexactFloat64(), AttrGateway.String(gateway))
}

func (bm *BusinessMetrics) RecordPaymentFailure(ctx context.Context, kind string) {
	bm.paymentFailures.Inc(ctx, AttrFailureKind.String(kind))
}

// RecordCouponApply counts an apply attempt; outcome is "applied" or a reason code
func (bm *BusinessMetrics) RecordCouponApply(ctx context.Context, discountType, outcome string) {
	bm.couponApplies.Inc(ctx, AttrDiscountType.String(discountType), AttrOutcome.String(outcome))
}

func (bm *BusinessMetrics) RecordCartMutation(ctx context.Context, op string) {
	bm.cartMutations.Inc(ctx, AttrCartOp.String(op))
}
