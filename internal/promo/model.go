package promo

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Offer is a dynamic, persisted promo record managed by admins.
type Offer struct {
	ID            int64
	Code          string
	Title         string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue decimal.Decimal
	UsageLimit    *int
	UsedCount     int
	ValidFrom     time.Time
	ValidTo       time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CurrentlyValid reports whether the offer can be applied at the given time,
// independent of any order subtotal.
func (o *Offer) CurrentlyValid(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	if now.Before(o.ValidFrom) || now.After(o.ValidTo) {
		return false
	}
	if o.UsageLimit != nil && o.UsedCount >= *o.UsageLimit {
		return false
	}
	return true
}
