package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Variant is a (color, size) stock-keeping unit of a product. Stock and
// Reserved are separate pools: reserved units are earmarked for in-flight
// orders but not yet permanently deducted.
type Variant struct {
	ID        int64  `json:"id"`
	ProductID string `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
	Reserved  int    `json:"reserved"`
	Sold      int    `json:"sold"`
}

type Product struct {
	ID         string           `json:"id"`
	SellerID   string           `json:"seller_id"`
	Name       string           `json:"name"`
	BasePrice  decimal.Decimal  `json:"base_price"`
	OfferPrice *decimal.Decimal `json:"offer_price,omitempty"`
	ImageURL   string           `json:"image_url"`
	Status     string           `json:"status"`
	Variants   []Variant        `json:"variants"`
}

// EffectivePrice is the offer price when one is set, else the base price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.OfferPrice != nil {
		return *p.OfferPrice
	}
	return p.BasePrice
}

// FindVariant returns the variant matching color and size, or nil.
// Matching is case-insensitive since variants come from seller CRUD.
func (p *Product) FindVariant(color, size string) *Variant {
	for i := range p.Variants {
		v := &p.Variants[i]
		if strings.EqualFold(v.Color, color) && strings.EqualFold(v.Size, size) {
			return v
		}
	}
	return nil
}
