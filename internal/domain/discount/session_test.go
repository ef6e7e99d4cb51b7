package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ApplyFlow(t *testing.T) {
	d := newDiscount(t, nil)
	s := NewSession("owner-1")
	assert.Equal(t, StateNoCoupon, s.EffectiveState(testNow))

	require.NoError(t, s.BeginApply(" save20 ", testNow))
	assert.Equal(t, StateApplying, s.State)
	assert.Equal(t, "save20", s.Code)

	assert.ErrorIs(t, s.BeginApply("OTHER", testNow.Add(time.Second)), ErrApplyInProgress)

	require.NoError(t, s.MarkApplied(d, decimal.NewFromInt(100), testNow))
	assert.True(t, s.HasCoupon())
	assert.Equal(t, d.ID, *s.DiscountID)

	assert.ErrorIs(t, s.BeginApply("OTHER", testNow), ErrCouponAlreadyApplied)

	require.NoError(t, s.Remove(testNow))
	assert.Equal(t, StateNoCoupon, s.State)
	assert.Nil(t, s.DiscountID)
	assert.True(t, s.DiscountAmount.IsZero())
}

func TestSession_ErrorBehavesAsNoCoupon(t *testing.T) {
	s := NewSession("owner-1")
	require.NoError(t, s.BeginApply("BAD", testNow))
	require.NoError(t, s.MarkFailed("EXPIRED", "This coupon has expired", testNow))
	assert.Equal(t, StateError, s.State)
	assert.Equal(t, "EXPIRED", s.ErrorCode)

	require.NoError(t, s.BeginApply("GOOD", testNow))
	assert.Equal(t, StateApplying, s.State)
	assert.Empty(t, s.ErrorCode)
}

func TestSession_StaleApplying(t *testing.T) {
	s := NewSession("owner-1")
	require.NoError(t, s.BeginApply("SAVE20", testNow))

	later := testNow.Add(ApplyingTimeout + time.Second)
	assert.Equal(t, StateNoCoupon, s.EffectiveState(later))
	require.NoError(t, s.BeginApply("SAVE20", later))
	assert.Equal(t, later, s.StartedAt)
}

func TestSession_CompleteRequiresApplying(t *testing.T) {
	d := newDiscount(t, nil)
	s := NewSession("owner-1")
	assert.ErrorIs(t, s.MarkApplied(d, decimal.Zero, testNow), ErrNotApplying)
	assert.ErrorIs(t, s.MarkFailed("X", "y", testNow), ErrNotApplying)

	require.NoError(t, s.BeginApply("SAVE20", testNow))
	assert.ErrorIs(t, s.Remove(testNow), ErrApplyInProgress)
}
