package handler

import (
	"time"

	"dokan-be/internal/order"
	"dokan-be/internal/promo"

	"github.com/shopspring/decimal"
)

// orderView is the buyer-facing shape of an order. Internal notes and the
// operational pending_review status never leave the backend through it.
type orderView struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Status      order.Status       `json:"status"`
	Customer    order.CustomerInfo `json:"customerInfo"`
	Items       []order.Item       `json:"items"`
	Pricing     order.Pricing      `json:"pricing"`
	Delivery    order.Delivery     `json:"delivery"`
	Payment     order.Payment      `json:"payment"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`

	// InternalNotes is populated only for admin reads.
	InternalNotes string `json:"internalNotes,omitempty"`
}

func newOrderView(o *order.Order, admin bool) orderView {
	v := orderView{
		ID:          o.ExternalID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status.Public(),
		Customer:    o.Customer,
		Items:       o.Items,
		Pricing:     o.Pricing,
		Delivery:    o.Delivery,
		Payment:     o.Payment,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if admin {
		v.Status = o.Status
		v.InternalNotes = o.InternalNotes
	}
	return v
}

func newOrderViews(orders []*order.Order, admin bool) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o, admin))
	}
	return views
}

type offerView struct {
	Code          string             `json:"code"`
	Title         string             `json:"title,omitempty"`
	DiscountType  promo.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
	MinOrderValue decimal.Decimal    `json:"minOrderValue"`
	ValidTo       time.Time          `json:"validTo"`
}

func newOfferView(o promo.Offer) offerView {
	return offerView{
		Code:          o.Code,
		Title:         o.Title,
		DiscountType:  o.DiscountType,
		DiscountValue: o.DiscountValue,
		MinOrderValue: o.MinOrderValue,
		ValidTo:       o.ValidTo,
	}
}
