package promo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetByCode(ctx context.Context, code string) (*Offer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offer), args.Error(1)
}

func (m *MockCatalog) GetActive(ctx context.Context) ([]Offer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Offer), args.Error(1)
}

func (m *MockCatalog) MarkUsed(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func intPtr(n int) *int { return &n }

func validOffer() *Offer {
	return &Offer{
		ID:            1,
		Code:          "SUMMER20",
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(20),
		MinOrderValue: decimal.NewFromInt(300),
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidTo:       time.Now().Add(time.Hour),
		IsActive:      true,
	}
}

func TestResolve_DynamicOffer(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetByCode", mock.Anything, "SUMMER20").Return(validOffer(), nil)

	r := NewResolver(catalog)
	res, err := r.Resolve(context.Background(), decimal.NewFromInt(1000), "summer20 ")

	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.True(t, res.Discount.Equal(decimal.NewFromInt(200)), "got %s", res.Discount)
	catalog.AssertExpectations(t)
}

func TestResolve_DynamicGates(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Offer)
		subtotal int64
		reason   string
	}{
		{"MinimumOrder", func(o *Offer) {}, 200, ReasonMinimumOrder},
		{"Inactive", func(o *Offer) { o.IsActive = false }, 1000, ReasonInactive},
		{"NotYetValid", func(o *Offer) { o.ValidFrom = time.Now().Add(time.Hour) }, 1000, ReasonNotYetValid},
		{"Expired", func(o *Offer) { o.ValidTo = time.Now().Add(-time.Minute) }, 1000, ReasonExpired},
		{"UsageExceeded", func(o *Offer) {
			o.UsageLimit = intPtr(5)
			o.UsedCount = 5
		}, 1000, ReasonUsageExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := validOffer()
			tt.mutate(offer)

			catalog := new(MockCatalog)
			catalog.On("GetByCode", mock.Anything, "SUMMER20").Return(offer, nil)

			r := NewResolver(catalog)
			res, err := r.Resolve(context.Background(), decimal.NewFromInt(tt.subtotal), "SUMMER20")

			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
			assert.True(t, res.Discount.IsZero())
		})
	}
}

func TestResolve_StaticFallback(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetByCode", mock.Anything, "WELCOME10").Return(nil, ErrOfferNotFound)

	r := NewResolver(catalog)
	res, err := r.Resolve(context.Background(), decimal.NewFromInt(1000), "welcome10")

	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.True(t, res.Discount.Equal(decimal.NewFromInt(100)), "got %s", res.Discount)
}

func TestResolve_StaticMinimumOrder(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetByCode", mock.Anything, "WELCOME10").Return(nil, ErrOfferNotFound)

	r := NewResolver(catalog)
	res, err := r.Resolve(context.Background(), decimal.NewFromInt(300), "WELCOME10")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMinimumOrder, res.Reason)
}

func TestResolve_UnknownCode(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetByCode", mock.Anything, "NOPE").Return(nil, ErrOfferNotFound)

	r := NewResolver(catalog)
	res, err := r.Resolve(context.Background(), decimal.NewFromInt(1000), "NOPE")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonInvalidCode, res.Reason)
}

func TestResolve_FixedDiscountClampedToSubtotal(t *testing.T) {
	offer := validOffer()
	offer.DiscountType = DiscountFixed
	offer.DiscountValue = decimal.NewFromInt(5000)
	offer.MinOrderValue = decimal.Zero

	catalog := new(MockCatalog)
	catalog.On("GetByCode", mock.Anything, "SUMMER20").Return(offer, nil)

	r := NewResolver(catalog)
	res, err := r.Resolve(context.Background(), decimal.NewFromInt(800), "SUMMER20")

	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.True(t, res.Discount.Equal(decimal.NewFromInt(800)), "got %s", res.Discount)
}

func TestResolve_DoesNotConsumeUsage(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("GetByCode", mock.Anything, "SUMMER20").Return(validOffer(), nil)

	r := NewResolver(catalog)
	for i := 0; i < 3; i++ {
		res, err := r.Resolve(context.Background(), decimal.NewFromInt(1000), "SUMMER20")
		require.NoError(t, err)
		assert.True(t, res.Valid)
	}

	// Resolving must never touch the usage counter.
	catalog.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
}

func TestMarkUsed_StaticCodeIsNoop(t *testing.T) {
	catalog := new(MockCatalog)
	r := NewResolver(catalog)

	require.NoError(t, r.MarkUsed(context.Background(), "WELCOME10"))
	catalog.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
}

func TestMarkUsed_Dynamic(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("MarkUsed", mock.Anything, "SUMMER20").Return(nil)

	r := NewResolver(catalog)
	require.NoError(t, r.MarkUsed(context.Background(), "summer20"))
	catalog.AssertExpectations(t)
}
