package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"dokan-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the dynamic offer store consulted before the static table.
type Catalog interface {
	GetByCode(ctx context.Context, code string) (*Offer, error)
	GetActive(ctx context.Context) ([]Offer, error)
	MarkUsed(ctx context.Context, code string) error
}

// Result is the outcome of resolving a promo code against a subtotal.
// Resolution never mutates anything; usage counting happens separately
// through MarkUsed once an order is actually committed.
type Result struct {
	Valid    bool
	Code     string
	Discount decimal.Decimal
	Reason   string
}

type Resolver struct {
	catalog Catalog
	now     func() time.Time
}

func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog, now: time.Now}
}

// Resolve looks the code up in the dynamic catalog first, then the static
// table. Gates are checked in order and the first failure wins.
func (r *Resolver) Resolve(ctx context.Context, subtotal decimal.Decimal, code string) (Result, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Result{Discount: decimal.Zero, Reason: ReasonInvalidCode}, nil
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "promo"),
		zap.String("code", normalized),
	)

	offer, err := r.catalog.GetByCode(ctx, normalized)
	if err != nil && !errors.Is(err, ErrOfferNotFound) {
		return Result{}, err
	}

	if offer != nil {
		res := r.resolveDynamic(offer, subtotal, normalized)
		log.Debug("dynamic promo resolved",
			zap.Bool("valid", res.Valid),
			zap.String("reason", res.Reason),
		)
		return res, nil
	}

	res := resolveStatic(subtotal, normalized)
	log.Debug("static promo resolved",
		zap.Bool("valid", res.Valid),
		zap.String("reason", res.Reason),
	)
	return res, nil
}

// MarkUsed increments the usage counter of a dynamic offer. Static codes
// carry no usage state, so an unknown code is not an error here.
func (r *Resolver) MarkUsed(ctx context.Context, code string) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil
	}
	if _, isStatic := staticOffers[normalized]; isStatic {
		return nil
	}

	err := r.catalog.MarkUsed(ctx, normalized)
	if errors.Is(err, ErrOfferNotFound) {
		return nil
	}
	return err
}

func (r *Resolver) resolveDynamic(offer *Offer, subtotal decimal.Decimal, code string) Result {
	if subtotal.LessThan(offer.MinOrderValue) {
		return Result{Code: code, Discount: decimal.Zero, Reason: ReasonMinimumOrder}
	}

	now := r.now()
	switch {
	case !offer.IsActive:
		return Result{Code: code, Discount: decimal.Zero, Reason: ReasonInactive}
	case now.Before(offer.ValidFrom):
		return Result{Code: code, Discount: decimal.Zero, Reason: ReasonNotYetValid}
	case now.After(offer.ValidTo):
		return Result{Code: code, Discount: decimal.Zero, Reason: ReasonExpired}
	case offer.UsageLimit != nil && offer.UsedCount >= *offer.UsageLimit:
		return Result{Code: code, Discount: decimal.Zero, Reason: ReasonUsageExceeded}
	}

	return Result{
		Valid:    true,
		Code:     code,
		Discount: computeDiscount(offer.DiscountType, offer.DiscountValue, subtotal),
	}
}

func resolveStatic(subtotal decimal.Decimal, code string) Result {
	offer, ok := staticOffers[code]
	if !ok {
		return Result{Code: code, Discount: decimal.Zero, Reason: ReasonInvalidCode}
	}

	if subtotal.LessThan(offer.MinOrderValue) {
		return Result{Code: code, Discount: decimal.Zero, Reason: ReasonMinimumOrder}
	}

	return Result{
		Valid:    true,
		Code:     code,
		Discount: computeDiscount(offer.DiscountType, offer.DiscountValue, subtotal),
	}
}

// computeDiscount clamps the discount to the subtotal: a promo may zero an
// order out but never push it negative, and never discounts delivery.
func computeDiscount(dt DiscountType, value, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	if dt == DiscountPercentage {
		discount = subtotal.Mul(value).Div(decimal.NewFromInt(100))
	} else {
		discount = value
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount.Round(2)
}
