package discount

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Calculator computes the raw reduction of one discount type over the in-scope lines
type Calculator interface {
	Type() Type
	Calculate(d *Discount, scoped []Line, ctx EligibilityContext) decimal.Decimal
}

type percentageCalculator struct{}

func (percentageCalculator) Type() Type { return TypePercentage }

func (percentageCalculator) Calculate(d *Discount, scoped []Line, _ EligibilityContext) decimal.Decimal {
	base := sumLines(scoped)
	amount := base.Mul(d.Value).Div(decimal.NewFromInt(100))
	return capAt(amount, d.MaxDiscount)
}

type fixedAmountCalculator struct{}

func (fixedAmountCalculator) Type() Type { return TypeFixedAmount }

func (fixedAmountCalculator) Calculate(d *Discount, scoped []Line, _ EligibilityContext) decimal.Decimal {
	return decimal.Min(d.Value, sumLines(scoped))
}

type buyXGetYCalculator struct{}

func (buyXGetYCalculator) Type() Type { return TypeBuyXGetY }

// Calculate expands the lines into unit prices sorted ascending and gives the
// cheapest Y units of every X+Y group away.
func (buyXGetYCalculator) Calculate(d *Discount, scoped []Line, _ EligibilityContext) decimal.Decimal {
	x, y := buyQuantity(d), freeQuantity(d)
	if y < 1 {
		return decimal.Zero
	}

	prices := make([]decimal.Decimal, 0, units(scoped))
	for _, l := range scoped {
		for i := 0; i < l.Quantity; i++ {
			prices = append(prices, l.UnitPrice.Amount())
		}
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })

	free := (len(prices) / (x + y)) * y
	amount := decimal.Zero
	for i := 0; i < free; i++ {
		amount = amount.Add(prices[i])
	}
	return capAt(amount, d.MaxDiscount)
}

type freeShippingCalculator struct{}

func (freeShippingCalculator) Type() Type { return TypeFreeShipping }

func (freeShippingCalculator) Calculate(d *Discount, _ []Line, ctx EligibilityContext) decimal.Decimal {
	return capAt(ctx.ShippingFee.Amount(), d.MaxDiscount)
}

var calculators = map[Type]Calculator{}

func registerCalculator(c Calculator) {
	calculators[c.Type()] = c
}

func init() {
	registerCalculator(percentageCalculator{})
	registerCalculator(fixedAmountCalculator{})
	registerCalculator(buyXGetYCalculator{})
	registerCalculator(freeShippingCalculator{})
}

// Calculate returns the reduction d grants on the cart described by ctx.
// It does not check eligibility. The result is rounded to paise and never
// exceeds subtotal plus shipping.
func Calculate(d *Discount, ctx EligibilityContext) valueobject.Money {
	calc, ok := calculators[d.Type]
	if !ok {
		return valueobject.ZeroINR()
	}

	amount := calc.Calculate(d, d.ScopedLines(ctx.Lines), ctx)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	ceiling := ctx.Subtotal().Amount().Add(ctx.ShippingFee.Amount())
	amount = decimal.Min(amount, ceiling)
	return valueobject.NewMoneyINR(amount.Round(2))
}

func sumLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total().Amount())
	}
	return total
}
