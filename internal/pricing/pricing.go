// Package pricing computes the authoritative, itemized price breakdown for
// an order. The same calculator backs the public quote endpoint and the
// server-side re-pricing step of order creation; only the latter is ever
// persisted or charged.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"dokan-be/internal/delivery"
	"dokan-be/internal/logger"
	"dokan-be/internal/promo"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrNoPriceableItems = errors.New("no priceable items")

type LineItem struct {
	ProductID   string
	ProductName string
	Color       string
	Size        string
	UnitPrice   decimal.Decimal
	Quantity    int
}

type PricedItem struct {
	LineItem
	Total decimal.Decimal
}

// Issue records a line item that could not be priced. Malformed items are
// reported but do not abort the rest of the computation.
type Issue struct {
	Index  int
	Reason string
}

type Breakdown struct {
	Subtotal       decimal.Decimal
	DeliveryCharge decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Zone           delivery.Zone
	PromoCode      string
	PromoReason    string
	Items          []PricedItem
	Issues         []Issue
}

// PromoResolver resolves a discount for a subtotal without side effects.
type PromoResolver interface {
	Resolve(ctx context.Context, subtotal decimal.Decimal, code string) (promo.Result, error)
}

type Calculator struct {
	promos PromoResolver
}

func NewCalculator(promos PromoResolver) *Calculator {
	return &Calculator{promos: promos}
}

// Price computes subtotal, delivery charge, discount and total for the
// given items. The delivery charge applies to the whole order and is never
// discountable; the total is floored at zero and rounded to 2 decimals.
func (c *Calculator) Price(ctx context.Context, items []LineItem, address, promoCode string) (*Breakdown, error) {
	b := &Breakdown{
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
	}

	for i, item := range items {
		if item.Quantity <= 0 {
			b.Issues = append(b.Issues, Issue{Index: i, Reason: fmt.Sprintf("invalid quantity %d", item.Quantity)})
			continue
		}
		if !item.UnitPrice.IsPositive() {
			b.Issues = append(b.Issues, Issue{Index: i, Reason: fmt.Sprintf("invalid unit price %s", item.UnitPrice)})
			continue
		}

		total := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		b.Items = append(b.Items, PricedItem{LineItem: item, Total: total})
		b.Subtotal = b.Subtotal.Add(total)
	}

	if len(b.Items) == 0 {
		return nil, ErrNoPriceableItems
	}

	quote := delivery.Classify(address)
	b.Zone = quote.Zone
	b.DeliveryCharge = quote.Charge

	if promoCode != "" {
		res, err := c.promos.Resolve(ctx, b.Subtotal, promoCode)
		if err != nil {
			return nil, fmt.Errorf("resolve promo: %w", err)
		}
		b.PromoReason = res.Reason
		if res.Valid {
			b.PromoCode = res.Code
			b.DiscountAmount = res.Discount
		}
	}

	total := b.Subtotal.Add(b.DeliveryCharge).Sub(b.DiscountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	b.Subtotal = b.Subtotal.Round(2)
	b.DeliveryCharge = b.DeliveryCharge.Round(2)
	b.DiscountAmount = b.DiscountAmount.Round(2)
	b.TotalAmount = total.Round(2)

	logger.FromCtx(ctx).Debug("order priced",
		zap.String("subtotal", b.Subtotal.String()),
		zap.String("delivery_charge", b.DeliveryCharge.String()),
		zap.String("discount", b.DiscountAmount.String()),
		zap.String("total", b.TotalAmount.String()),
		zap.String("zone", string(b.Zone)),
		zap.Int("issues", len(b.Issues)),
	)

	return b, nil
}
