package promo

import "github.com/shopspring/decimal"

// staticOffer is a built-in promo that exists without a database record.
// These act as the fallback tier when no dynamic offer matches the code.
type staticOffer struct {
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue decimal.Decimal
}

var staticOffers = map[string]staticOffer{
	"WELCOME10": {
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(500),
	},
	"FLAT50": {
		DiscountType:  DiscountFixed,
		DiscountValue: decimal.NewFromInt(50),
		MinOrderValue: decimal.NewFromInt(1000),
	},
	"EID15": {
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(15),
		MinOrderValue: decimal.NewFromInt(1500),
	},
}
