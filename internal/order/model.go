package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusReadyToShip    Status = "ready_to_ship"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusReturned       Status = "returned"

	// StatusPendingReview marks orders whose stock deduction partially or
	// wholly failed after the order row was committed. Operators resolve
	// these by hand; buyers never see this status.
	StatusPendingReview Status = "pending_review"
)

// transitions maps each status to the statuses it may legally move to.
var transitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled, StatusPendingReview},
	StatusPendingReview:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusReadyToShip, StatusCancelled},
	StatusReadyToShip:    {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery, StatusReturned},
	StatusOutForDelivery: {StatusDelivered, StatusReturned},
	StatusDelivered:      {StatusReturned},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Public maps internal statuses to what buyers are shown. pending_review is
// an operational state; to the buyer the order is simply pending.
func (s Status) Public() Status {
	if s == StatusPendingReview {
		return StatusPending
	}
	return s
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Customization carries free-form personalization. It is opaque to pricing
// and inventory.
type Customization struct {
	DesignURL    string `json:"designUrl,omitempty"`
	Text         string `json:"text,omitempty"`
	Number       string `json:"number,omitempty"`
	Slogan       string `json:"slogan,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Item is a priced line captured at order time. Name, image and unit price
// are snapshots of the product as it was when the order was placed, never
// live references and never taken from client input.
type Item struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductImage  string          `json:"productImage,omitempty"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Customization *Customization  `json:"customization,omitempty"`
}

type Pricing struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	PromoCode      string          `json:"promoCode,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}

type Delivery struct {
	Address string          `json:"address"`
	IsDhaka bool            `json:"isDhaka"`
	Charge  decimal.Decimal `json:"charge"`
	Notes   string          `json:"notes,omitempty"`
}

type Payment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

type Order struct {
	ID          uint
	ExternalID  string
	OrderNumber string
	UserID      string
	Customer    CustomerInfo
	Items       []Item
	Pricing     Pricing
	Delivery    Delivery
	Payment     Payment
	Status      Status

	// InternalNotes records saga failure diagnostics for operators. It is
	// written only by the system and never rendered to buyers.
	InternalNotes string

	IdempotencyKey *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateOrderItemInput is one requested line of a draft order. Any client
// supplied price is ignored; the server re-prices from the product record.
type CreateOrderItemInput struct {
	ProductID     string         `json:"productId"`
	Color         string         `json:"color"`
	Size          string         `json:"size"`
	Quantity      int            `json:"quantity"`
	Customization *Customization `json:"customization,omitempty"`
}

// PaymentInput and DeliveryInput mirror the request's nested payment and
// delivery objects. Payment status is never accepted from the client.
type PaymentInput struct {
	Method string `json:"method"`
}

type DeliveryInput struct {
	DeliveryNotes string `json:"deliveryNotes,omitempty"`
}

type CreateOrderInput struct {
	Customer       CustomerInfo           `json:"customerInfo"`
	Items          []CreateOrderItemInput `json:"items"`
	Payment        PaymentInput           `json:"payment"`
	Delivery       DeliveryInput          `json:"delivery"`
	PromoCode      string                 `json:"promoCode,omitempty"`
	IdempotencyKey string                 `json:"-"`
}
