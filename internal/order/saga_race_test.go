package order

import (
	"context"
	"sync"
	"testing"

	"dokan-be/internal/cart"
	"dokan-be/internal/events"
	"dokan-be/internal/inventory"
	"dokan-be/internal/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is a thread-safe in-process Repository for interleaving tests.
type memoryRepo struct {
	mu     sync.Mutex
	nextID uint
	orders map[uint]*Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[uint]*Order{}}
}

func (r *memoryRepo) Create(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memoryRepo) GetByExternalID(ctx context.Context, externalID string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ExternalID == externalID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *memoryRepo) GetByIdempotencyKey(ctx context.Context, userID, key string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for _, o := range r.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, orderID uint, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *memoryRepo) FlagForReview(ctx context.Context, orderID uint, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = StatusPendingReview
	o.InternalNotes = notes
	return nil
}

func (r *memoryRepo) byStatus(status Status) []*Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// gatedLedger holds every caller at the availability check until all
// expected callers have passed it, forcing the check/deduct race window.
type gatedLedger struct {
	*inventory.MemoryLedger
	barrier *sync.WaitGroup
}

func (g *gatedLedger) CheckAvailability(ctx context.Context, reqs []inventory.Request) (*inventory.AvailabilityReport, error) {
	report, err := g.MemoryLedger.CheckAvailability(ctx, reqs)
	g.barrier.Done()
	g.barrier.Wait()
	return report, err
}

type staticProducts struct {
	products map[string]*product.Product
}

func (s *staticProducts) GetByID(ctx context.Context, id string) (*product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (s *staticProducts) GetMany(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	out := map[string]*product.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// Two buyers race for the last unit. Both pass the availability check, the
// order row commits for both, and only one deduction wins. The loser is not
// rolled back: it stays on the books flagged for operator review, and stock
// never goes negative.
func TestCreate_ConcurrentOrdersForLastUnit(t *testing.T) {
	ledger := inventory.NewMemoryLedger()
	ledger.SetStock("p1", "Red", "M", 1, 0)

	var barrier sync.WaitGroup
	barrier.Add(2)
	gated := &gatedLedger{MemoryLedger: ledger, barrier: &barrier}

	repo := newMemoryRepo()
	products := &staticProducts{products: map[string]*product.Product{
		"p1": testProduct(),
	}}

	b := dhakaBreakdown()
	b.Subtotal = decimal.NewFromInt(500)
	b.TotalAmount = decimal.NewFromInt(570)

	svc := NewService(repo, products, gated, &stubPricer{breakdown: b},
		new(MockPromoUsage), cart.NewMemoryStore(), &recordingDispatcher{},
		events.NopPublisher{}, "")

	input := validInput()
	input.Items[0].Quantity = 1

	var wg sync.WaitGroup
	results := make([]*Order, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Create(context.Background(), "user-1", input)
		}(i)
	}
	wg.Wait()

	// Both orders were created: the race is detected after the commit
	// point, never by failing the buyer.
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.Len(t, repo.byStatus(StatusPending), 1)
	flagged := repo.byStatus(StatusPendingReview)
	require.Len(t, flagged, 1)
	assert.Contains(t, flagged[0].InternalNotes, "insufficient stock")

	stock, reserved, sold, ok := ledger.Counters("p1", "Red", "M")
	require.True(t, ok)
	assert.Equal(t, 0, stock)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, 1, sold)
}
