// Package inventory owns per-variant stock counters. Every operation
// reports per-item results so callers can act on partial success; single
// variant mutations use guarded conditional updates, so stock can never go
// negative regardless of how concurrent orders interleave.
package inventory

import "context"

// LowStockThreshold is the remaining-units level at or below which an
// available item gets an informational warning. Warnings never block.
const LowStockThreshold = 5

const (
	ReasonVariantNotFound   = "variant not found"
	ReasonInsufficientStock = "insufficient stock"
)

// Request identifies a quantity of one variant.
type Request struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// ItemStatus is the availability verdict for a single request.
type ItemStatus struct {
	Request
	Available bool   `json:"available"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}

type AvailabilityReport struct {
	AllAvailable bool         `json:"allAvailable"`
	Items        []ItemStatus `json:"items"`
	OutOfStock   []ItemStatus `json:"outOfStock,omitempty"`
	LowStock     []ItemStatus `json:"lowStock,omitempty"`
}

// FailedItem is a request that a mutation could not apply.
type FailedItem struct {
	Request
	Reason string `json:"reason"`
}

// MutationResult reports a stock mutation item by item. OK is true only
// when every item applied; Applied still lists the subset that succeeded
// when OK is false.
type MutationResult struct {
	OK      bool         `json:"ok"`
	Applied []Request    `json:"applied,omitempty"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// StockUpdate sets a variant's stock to an absolute value.
type StockUpdate struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	NewStock  int    `json:"newStock"`
}

// Ledger is the abstract stock capability the order saga depends on.
type Ledger interface {
	// CheckAvailability verifies every request against current variant
	// counters without mutating anything.
	CheckAvailability(ctx context.Context, reqs []Request) (*AvailabilityReport, error)

	// Deduct consumes stock for an order, item by item, preferring
	// reserved units. Items fail independently.
	Deduct(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error)

	// Restore returns units to stock for cancellation and refund flows,
	// rolling back the sales counter.
	Restore(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error)

	// Reserve earmarks stock units for an in-flight order.
	Reserve(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error)

	// BulkUpdateStock overwrites stock levels, one variant at a time.
	BulkUpdateStock(ctx context.Context, updates []StockUpdate) (*MutationResult, error)
}
