package order

import (
	"errors"
	"fmt"
	"strings"

	"dokan-be/internal/inventory"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every structural and referential problem in a
// draft order so clients can fix them all in one round trip.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// StockError rejects an order before persistence because at least one item
// is unavailable. It carries the full report so clients can adjust
// quantities, including warnings for items that are still available.
type StockError struct {
	OutOfStock []inventory.ItemStatus `json:"outOfStock"`
	LowStock   []inventory.ItemStatus `json:"lowStock,omitempty"`
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%d item(s) out of stock", len(e.OutOfStock))
}
