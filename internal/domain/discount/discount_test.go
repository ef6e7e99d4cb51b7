package discount

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

var (
	testNow      = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	shirtsID     = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	accessoryCat = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	teeProduct   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	capProduct   = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func validInput() Input {
	return Input{
		Name:        "SAVE20",
		Type:        TypePercentage,
		Value:       decimal.NewFromInt(20),
		MaxDiscount: decimal.NewFromInt(100),
		UserType:    UserTypeAll,
		ValidFrom:   testNow.Add(-24 * time.Hour),
		ValidUntil:  testNow.Add(24 * time.Hour),
		IsActive:    true,
	}
}

func newDiscount(t *testing.T, mutate func(*Input)) *Discount {
	t.Helper()
	in := validInput()
	if mutate != nil {
		mutate(&in)
	}
	d, err := New(in)
	require.NoError(t, err)
	return d
}

func line(product, category uuid.UUID, price int64, qty int) Line {
	return Line{
		ProductID:  product,
		CategoryID: category,
		UnitPrice:  valueobject.NewMoneyINRFromInt(price),
		Quantity:   qty,
	}
}

func TestNew(t *testing.T) {
	d := newDiscount(t, nil)
	assert.Equal(t, "SAVE20", d.Name)
	assert.True(t, d.IsSitewide())
	assert.Len(t, d.GetDomainEvents(), 1)

	tests := []struct {
		name   string
		mutate func(*Input)
		code   string
	}{
		{"empty name", func(in *Input) { in.Name = "  " }, "INVALID_NAME"},
		{"unknown type", func(in *Input) { in.Type = "BOGO" }, "INVALID_DISCOUNT_TYPE"},
		{"percentage over 100", func(in *Input) { in.Value = decimal.NewFromInt(101) }, "INVALID_AMOUNT"},
		{"negative minimum", func(in *Input) { in.MinOrderAmount = decimal.NewFromInt(-1) }, "INVALID_AMOUNT"},
		{"fractional free quantity", func(in *Input) {
			in.Type = TypeBuyXGetY
			in.Value = decimal.NewFromFloat(1.5)
		}, "INVALID_AMOUNT"},
		{"window reversed", func(in *Input) { in.ValidUntil = in.ValidFrom.Add(-time.Hour) }, "INVALID_VALIDITY"},
		{"unknown user type", func(in *Input) { in.UserType = "VIP" }, "INVALID_USER_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := New(in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.code)
		})
	}

	t.Run("empty user type defaults to ALL", func(t *testing.T) {
		d := newDiscount(t, func(in *Input) { in.UserType = "" })
		assert.Equal(t, UserTypeAll, d.UserType)
	})
}

func TestEvaluate_Order(t *testing.T) {
	cartLines := []Line{line(teeProduct, shirtsID, 500, 2)}

	tests := []struct {
		name   string
		mutate func(*Input)
		ctx    func(*EligibilityContext)
		reason Reason
	}{
		{"inactive wins over expired", func(in *Input) {
			in.IsActive = false
			in.ValidUntil = testNow.Add(-time.Hour)
			in.ValidFrom = testNow.Add(-2 * time.Hour)
		}, nil, ReasonInactive},
		{"not started", func(in *Input) {
			in.ValidFrom = testNow.Add(time.Hour)
			in.ValidUntil = testNow.Add(2 * time.Hour)
		}, nil, ReasonNotStarted},
		{"expired", func(in *Input) {
			in.ValidFrom = testNow.Add(-2 * time.Hour)
			in.ValidUntil = testNow.Add(-time.Hour)
		}, nil, ReasonExpired},
		{"new customers only", func(in *Input) { in.UserType = UserTypeNew },
			func(c *EligibilityContext) { c.PriorOrders = 1 }, ReasonUserType},
		{"existing customers only", func(in *Input) { in.UserType = UserTypeExisting }, nil, ReasonUserType},
		{"usage limit reached", func(in *Input) { in.UsageLimit = 5 }, nil, ReasonUsageLimit},
		{"per user limit reached", func(in *Input) { in.PerUserLimit = 1 },
			func(c *EligibilityContext) { c.UserUsage = 1 }, ReasonPerUserLimit},
		{"out of scope", func(in *Input) { in.CategoryID = &accessoryCat }, nil, ReasonScope},
		{"not enough units", func(in *Input) { in.MinQuantity = 3 }, nil, ReasonMinQuantity},
		{"below minimum order", func(in *Input) { in.MinOrderAmount = decimal.NewFromInt(1500) }, nil, ReasonMinOrderAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDiscount(t, tt.mutate)
			if tt.reason == ReasonUsageLimit {
				d.UsageCount = 5
			}
			ctx := EligibilityContext{Lines: cartLines, Now: testNow}
			if tt.ctx != nil {
				tt.ctx(&ctx)
			}
			got := Evaluate(d, ctx)
			assert.False(t, got.Eligible)
			assert.Equal(t, tt.reason, got.Reason)
			assert.NotEmpty(t, got.Message)
			assert.True(t, got.Preview.IsZero())
		})
	}
}

func TestEvaluate_MinOrderShortfall(t *testing.T) {
	d := newDiscount(t, func(in *Input) { in.MinOrderAmount = decimal.NewFromInt(1000) })
	ctx := EligibilityContext{Lines: []Line{line(teeProduct, shirtsID, 400, 2)}, Now: testNow}

	got := Evaluate(d, ctx)

	assert.Equal(t, ReasonMinOrderAmount, got.Reason)
	require.NotNil(t, got.Shortfall)
	assert.True(t, got.Shortfall.Amount().Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "₹200 more needed", got.Message)
}

func TestEvaluate_MinQuantityMessage(t *testing.T) {
	d := newDiscount(t, func(in *Input) { in.MinQuantity = 3 })
	got := Evaluate(d, EligibilityContext{Lines: []Line{line(teeProduct, shirtsID, 500, 1)}, Now: testNow})

	assert.Equal(t, ReasonMinQuantity, got.Reason)
	assert.Equal(t, 2, got.MissingQuantity)
	assert.Equal(t, "Add 2 more item(s) to use this coupon", got.Message)
}

func TestEvaluate_Eligible(t *testing.T) {
	d := newDiscount(t, nil)
	got := Evaluate(d, EligibilityContext{Lines: []Line{line(teeProduct, shirtsID, 500, 2)}, Now: testNow})

	assert.True(t, got.Eligible)
	assert.Equal(t, ReasonNone, got.Reason)
	assert.True(t, got.Preview.Amount().Equal(decimal.NewFromInt(100)))
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Input)
		lines    []Line
		shipping int64
		want     int64
	}{
		{"percentage capped", nil, []Line{line(teeProduct, shirtsID, 1000, 1)}, 0, 100},
		{"percentage uncapped", func(in *Input) { in.MaxDiscount = decimal.Zero },
			[]Line{line(teeProduct, shirtsID, 1000, 1)}, 0, 200},
		{"percentage only on scoped lines", func(in *Input) {
			in.MaxDiscount = decimal.Zero
			in.ProductID = &capProduct
		}, []Line{line(teeProduct, shirtsID, 1000, 1), line(capProduct, accessoryCat, 300, 1)}, 0, 60},
		{"fixed amount", func(in *Input) {
			in.Type = TypeFixedAmount
			in.Value = decimal.NewFromInt(150)
		}, []Line{line(teeProduct, shirtsID, 1000, 1)}, 0, 150},
		{"fixed amount limited to scoped subtotal", func(in *Input) {
			in.Type = TypeFixedAmount
			in.Value = decimal.NewFromInt(500)
			in.ProductID = &capProduct
		}, []Line{line(teeProduct, shirtsID, 1000, 1), line(capProduct, accessoryCat, 300, 1)}, 0, 300},
		{"buy two get one", func(in *Input) {
			in.Type = TypeBuyXGetY
			in.Value = decimal.NewFromInt(1)
			in.MinQuantity = 2
			in.MaxDiscount = decimal.Zero
		}, []Line{line(teeProduct, shirtsID, 500, 2), line(capProduct, shirtsID, 200, 1)}, 0, 200},
		{"buy one get one over two groups", func(in *Input) {
			in.Type = TypeBuyXGetY
			in.Value = decimal.NewFromInt(1)
			in.MinQuantity = 1
			in.MaxDiscount = decimal.Zero
		}, []Line{line(teeProduct, shirtsID, 500, 3), line(capProduct, shirtsID, 200, 1)}, 0, 700},
		{"free shipping", func(in *Input) {
			in.Type = TypeFreeShipping
			in.Value = decimal.Zero
			in.MaxDiscount = decimal.Zero
		}, []Line{line(teeProduct, shirtsID, 500, 1)}, 60, 60},
		{"free shipping capped", func(in *Input) {
			in.Type = TypeFreeShipping
			in.Value = decimal.Zero
			in.MaxDiscount = decimal.NewFromInt(40)
		}, []Line{line(teeProduct, shirtsID, 500, 1)}, 60, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDiscount(t, tt.mutate)
			ctx := EligibilityContext{
				Lines:       tt.lines,
				ShippingFee: valueobject.NewMoneyINRFromInt(tt.shipping),
				Now:         testNow,
			}
			got := Calculate(d, ctx)
			assert.True(t, got.Amount().Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}

func TestCalculate_NeverExceedsTotal(t *testing.T) {
	d := newDiscount(t, func(in *Input) {
		in.Type = TypeFixedAmount
		in.Value = decimal.NewFromInt(5000)
	})
	got := Calculate(d, EligibilityContext{Lines: []Line{line(teeProduct, shirtsID, 100, 1)}, Now: testNow})
	assert.True(t, got.Amount().LessThanOrEqual(decimal.NewFromInt(100)))
}

func TestEvaluate_BuyXGetYNeedsFullGroup(t *testing.T) {
	d := newDiscount(t, func(in *Input) {
		in.Type = TypeBuyXGetY
		in.Value = decimal.NewFromInt(1)
		in.MinQuantity = 2
	})
	got := Evaluate(d, EligibilityContext{Lines: []Line{line(teeProduct, shirtsID, 500, 2)}, Now: testNow})
	assert.Equal(t, ReasonMinQuantity, got.Reason)
	assert.Equal(t, 1, got.MissingQuantity)
}

func TestInScope_Subcategory(t *testing.T) {
	sub := uuid.New()
	d := newDiscount(t, func(in *Input) { in.SubcategoryID = &sub })

	l := line(teeProduct, shirtsID, 100, 1)
	assert.False(t, d.InScope(l))
	l.SubcategoryID = &sub
	assert.True(t, d.InScope(l))
}

func TestStatusFilter(t *testing.T) {
	active := newDiscount(t, nil)
	inactive := newDiscount(t, func(in *Input) { in.IsActive = false })
	expired := newDiscount(t, func(in *Input) {
		in.ValidFrom = testNow.Add(-48 * time.Hour)
		in.ValidUntil = testNow.Add(-24 * time.Hour)
	})

	tests := []struct {
		filter StatusFilter
		want   []bool
	}{
		{StatusAll, []bool{true, true, true}},
		{StatusActive, []bool{true, false, false}},
		{StatusInactive, []bool{false, true, false}},
		{StatusExpired, []bool{false, false, true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := []bool{
				tt.filter.Matches(active, testNow),
				tt.filter.Matches(inactive, testNow),
				tt.filter.Matches(expired, testNow),
			}
			assert.Equal(t, tt.want, got)
		})
	}

	f, ok := ParseStatusFilter("expired")
	assert.True(t, ok)
	assert.Equal(t, StatusExpired, f)
	_, ok = ParseStatusFilter("archived")
	assert.False(t, ok)
}

func TestMatchesCode(t *testing.T) {
	d := newDiscount(t, nil)
	assert.True(t, d.MatchesCode(" save20 "))
	assert.False(t, d.MatchesCode("SAVE2"))
}
