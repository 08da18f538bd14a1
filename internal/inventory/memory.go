package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryLedger is an in-process Ledger with the same per-item semantics as
// the database-backed one. It backs local development and tests that need
// real interleaving behavior rather than SQL expectations.
type MemoryLedger struct {
	mu       sync.Mutex
	variants map[string]*counters
}

type counters struct {
	Stock    int
	Reserved int
	Sold     int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{variants: map[string]*counters{}}
}

func variantKey(productID, color, size string) string {
	return fmt.Sprintf("%s|%s|%s", productID, strings.ToLower(color), strings.ToLower(size))
}

// SetStock seeds a variant's counters.
func (m *MemoryLedger) SetStock(productID, color, size string, stock, reserved int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variants[variantKey(productID, color, size)] = &counters{Stock: stock, Reserved: reserved}
}

// Counters returns a variant's current counters.
func (m *MemoryLedger) Counters(productID, color, size string) (stock, reserved, sold int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.variants[variantKey(productID, color, size)]
	if !ok {
		return 0, 0, 0, false
	}
	return c.Stock, c.Reserved, c.Sold, true
}

func (m *MemoryLedger) CheckAvailability(ctx context.Context, reqs []Request) (*AvailabilityReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := &AvailabilityReport{AllAvailable: true}
	for _, req := range reqs {
		c, ok := m.variants[variantKey(req.ProductID, req.Color, req.Size)]
		if !ok {
			status := ItemStatus{Request: req, Available: false, Reason: ReasonVariantNotFound}
			report.Items = append(report.Items, status)
			report.OutOfStock = append(report.OutOfStock, status)
			report.AllAvailable = false
			continue
		}

		status := ItemStatus{Request: req, Remaining: c.Stock}
		if c.Reserved >= req.Quantity || c.Stock >= req.Quantity {
			status.Available = true
			if c.Stock-req.Quantity <= LowStockThreshold {
				report.LowStock = append(report.LowStock, status)
			}
		} else {
			status.Reason = fmt.Sprintf("%s: %d remaining, %d requested", ReasonInsufficientStock, c.Stock, req.Quantity)
			report.OutOfStock = append(report.OutOfStock, status)
			report.AllAvailable = false
		}
		report.Items = append(report.Items, status)
	}
	return report, nil
}

func (m *MemoryLedger) Deduct(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &MutationResult{OK: true}
	for _, req := range reqs {
		c, ok := m.variants[variantKey(req.ProductID, req.Color, req.Size)]
		if !ok {
			result.fail(req, ReasonVariantNotFound)
			continue
		}

		switch {
		case c.Reserved >= req.Quantity:
			c.Reserved -= req.Quantity
			c.Sold += req.Quantity
			result.Applied = append(result.Applied, req)
		case c.Stock >= req.Quantity:
			c.Stock -= req.Quantity
			c.Sold += req.Quantity
			result.Applied = append(result.Applied, req)
		default:
			result.fail(req, ReasonInsufficientStock)
		}
	}
	return result, nil
}

func (m *MemoryLedger) Restore(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &MutationResult{OK: true}
	for _, req := range reqs {
		c, ok := m.variants[variantKey(req.ProductID, req.Color, req.Size)]
		if !ok {
			result.fail(req, ReasonVariantNotFound)
			continue
		}
		c.Stock += req.Quantity
		c.Sold -= req.Quantity
		if c.Sold < 0 {
			c.Sold = 0
		}
		result.Applied = append(result.Applied, req)
	}
	return result, nil
}

func (m *MemoryLedger) Reserve(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &MutationResult{OK: true}
	for _, req := range reqs {
		c, ok := m.variants[variantKey(req.ProductID, req.Color, req.Size)]
		if !ok {
			result.fail(req, ReasonVariantNotFound)
			continue
		}
		if c.Stock < req.Quantity {
			result.fail(req, ReasonInsufficientStock)
			continue
		}
		c.Stock -= req.Quantity
		c.Reserved += req.Quantity
		result.Applied = append(result.Applied, req)
	}
	return result, nil
}

func (m *MemoryLedger) BulkUpdateStock(ctx context.Context, updates []StockUpdate) (*MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &MutationResult{OK: true}
	for _, u := range updates {
		req := Request{ProductID: u.ProductID, Color: u.Color, Size: u.Size, Quantity: u.NewStock}
		if u.NewStock < 0 {
			result.fail(req, "stock must not be negative")
			continue
		}
		c, ok := m.variants[variantKey(u.ProductID, u.Color, u.Size)]
		if !ok {
			result.fail(req, ReasonVariantNotFound)
			continue
		}
		c.Stock = u.NewStock
		result.Applied = append(result.Applied, req)
	}
	return result, nil
}
