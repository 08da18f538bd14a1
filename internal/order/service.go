package order

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"dokan-be/internal/cart"
	"dokan-be/internal/delivery"
	"dokan-be/internal/events"
	"dokan-be/internal/inventory"
	"dokan-be/internal/logger"
	"dokan-be/internal/metrics"
	"dokan-be/internal/notification"
	"dokan-be/internal/pricing"
	"dokan-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pricer computes the authoritative price breakdown for a set of items.
type Pricer interface {
	Price(ctx context.Context, items []pricing.LineItem, address, promoCode string) (*pricing.Breakdown, error)
}

// PromoUsage increments a promo code's usage counter once an order using it
// has been committed.
type PromoUsage interface {
	MarkUsed(ctx context.Context, code string) error
}

// Dispatcher queues an email without blocking.
type Dispatcher interface {
	Dispatch(e notification.Email)
}

type Service interface {
	// Create runs the order-creation saga: validate, re-price, verify
	// stock, persist, deduct, then fire side effects.
	Create(ctx context.Context, userID string, input CreateOrderInput) (*Order, error)

	Get(ctx context.Context, userID, externalID string, isAdmin bool) (*Order, error)
	List(ctx context.Context, userID string) ([]*Order, error)
	UpdateStatus(ctx context.Context, externalID string, next Status) error
	Cancel(ctx context.Context, userID, externalID string) (*Order, error)
}

type service struct {
	repo     Repository
	products product.Repository
	ledger   inventory.Ledger
	pricer   Pricer
	promos   PromoUsage
	carts    cart.Store
	notifier Dispatcher
	events   events.Publisher
	opsEmail string
}

func NewService(
	repo Repository,
	products product.Repository,
	ledger inventory.Ledger,
	pricer Pricer,
	promos PromoUsage,
	carts cart.Store,
	notifier Dispatcher,
	publisher events.Publisher,
	opsEmail string,
) Service {
	return &service{
		repo:     repo,
		products: products,
		ledger:   ledger,
		pricer:   pricer,
		promos:   promos,
		carts:    carts,
		notifier: notifier,
		events:   publisher,
		opsEmail: opsEmail,
	}
}

func (s *service) Create(ctx context.Context, userID string, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("user_id", userID),
		zap.Int("item_count", len(input.Items)),
	)

	log.Info("order creation started")

	// Idempotent replay: a retried request with the same key gets the
	// order the first attempt created instead of a duplicate.
	if input.IdempotencyKey != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, userID, input.IdempotencyKey)
		if err == nil {
			log.Info("idempotency key replay", zap.String("order_number", existing.OrderNumber))
			return existing, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
	}

	// Step 1: structural validation. Every problem is collected so the
	// client fixes them in one round trip; nothing has been persisted.
	if verr := validateInput(userID, input); verr != nil {
		metrics.OrdersRejected.Inc()
		log.Warn("order validation failed", zap.Int("errors", len(verr.Errors)))
		return nil, verr
	}

	// Step 2: authoritative re-pricing from fresh product reads. Client
	// supplied prices are ignored entirely.
	items, lineItems, verr, err := s.repriceItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		metrics.OrdersRejected.Inc()
		log.Warn("order re-pricing rejected", zap.Int("errors", len(verr.Errors)))
		return nil, verr
	}

	// Step 3: stock verification, all-or-nothing. Any unavailable item
	// rejects the whole order before anything is written.
	reqs := stockRequests(input.Items)
	report, err := s.ledger.CheckAvailability(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if !report.AllAvailable {
		metrics.OrdersRejected.Inc()
		log.Warn("order rejected for stock",
			zap.Int("out_of_stock", len(report.OutOfStock)))
		return nil, &StockError{OutOfStock: report.OutOfStock, LowStock: report.LowStock}
	}

	breakdown, err := s.pricer.Price(ctx, lineItems, input.Customer.Address, input.PromoCode)
	if err != nil {
		return nil, fmt.Errorf("price order: %w", err)
	}

	// Step 4: persistence. This is the commit point; from here on the
	// order exists no matter what happens next.
	o := s.buildOrder(userID, input, items, breakdown)
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	metrics.OrdersCreated.Inc()

	log = log.With(
		zap.String("order_number", o.OrderNumber),
		zap.String("order_id", o.ExternalID),
	)
	log.Info("order persisted",
		zap.String("total", o.Pricing.TotalAmount.String()))

	// Step 5: best-effort stock deduction, item by item. A failure here is
	// a race lost against a concurrent order; the order stays on the books
	// and is routed to an operator instead of being rolled back.
	deduction, err := s.ledger.Deduct(ctx, reqs, o.OrderNumber)
	if err != nil {
		s.flagForReview(ctx, o, fmt.Sprintf("stock deduction error: %v", err))
	} else if !deduction.OK {
		metrics.StockDeductionFailures.Inc()
		s.flagForReview(ctx, o, deductionNotes(deduction))
	}

	// Step 6: fire-and-forget side effects. None of these may change the
	// order's outcome or surface a failure to the buyer.
	s.dispatchSideEffects(ctx, o)

	log.Info("order creation finished", zap.String("status", string(o.Status)))
	return o, nil
}

func validateInput(userID string, input CreateOrderInput) *ValidationError {
	verr := &ValidationError{}

	if userID == "" {
		verr.add("user", "not authenticated")
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		verr.add("customerInfo.name", "name is required")
	}
	if _, err := mail.ParseAddress(input.Customer.Email); err != nil {
		verr.add("customerInfo.email", "valid email is required")
	}
	if len(strings.TrimSpace(input.Customer.Phone)) < 7 {
		verr.add("customerInfo.phone", "valid phone number is required")
	}
	if strings.TrimSpace(input.Customer.Address) == "" {
		verr.add("customerInfo.address", "address is required")
	}
	if strings.TrimSpace(input.Payment.Method) == "" {
		verr.add("payment.method", "payment method is required")
	}

	if len(input.Items) == 0 {
		verr.add("items", "at least one item is required")
	}
	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == "" {
			verr.add(field+".productId", "product id is required")
		}
		if item.Color == "" {
			verr.add(field+".color", "color is required")
		}
		if item.Size == "" {
			verr.add(field+".size", "size is required")
		}
		if item.Quantity < 1 {
			verr.add(field+".quantity", "quantity must be at least 1")
		}
	}

	if len(verr.Errors) == 0 {
		return nil
	}
	return verr
}

// repriceItems re-fetches every referenced product and rebuilds each line
// with the product's current effective price and snapshot fields.
func (s *service) repriceItems(ctx context.Context, inputs []CreateOrderItemInput) ([]Item, []pricing.LineItem, *ValidationError, error) {
	ids := make([]string, 0, len(inputs))
	for _, item := range inputs {
		ids = append(ids, item.ProductID)
	}

	catalog, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch products: %w", err)
	}

	verr := &ValidationError{}
	items := make([]Item, 0, len(inputs))
	lineItems := make([]pricing.LineItem, 0, len(inputs))

	for i, in := range inputs {
		field := fmt.Sprintf("items[%d]", i)

		p, ok := catalog[in.ProductID]
		if !ok {
			verr.add(field, "product not found")
			continue
		}
		if p.FindVariant(in.Color, in.Size) == nil {
			verr.add(field, fmt.Sprintf("variant %s/%s not offered", in.Color, in.Size))
			continue
		}

		unitPrice := p.EffectivePrice()
		items = append(items, Item{
			ProductID:     p.ID,
			ProductName:   p.Name,
			ProductImage:  p.ImageURL,
			Color:         in.Color,
			Size:          in.Size,
			UnitPrice:     unitPrice,
			Quantity:      in.Quantity,
			TotalPrice:    unitPrice.Mul(decimalFromInt(in.Quantity)),
			Customization: in.Customization,
		})
		lineItems = append(lineItems, pricing.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Color:       in.Color,
			Size:        in.Size,
			UnitPrice:   unitPrice,
			Quantity:    in.Quantity,
		})
	}

	if len(verr.Errors) > 0 {
		return nil, nil, verr, nil
	}
	return items, lineItems, nil, nil
}

func (s *service) buildOrder(userID string, input CreateOrderInput, items []Item, b *pricing.Breakdown) *Order {
	var key *string
	if input.IdempotencyKey != "" {
		k := input.IdempotencyKey
		key = &k
	}

	return &Order{
		ExternalID:  uuid.New().String(),
		OrderNumber: GenerateOrderNumber(),
		UserID:      userID,
		Customer:    input.Customer,
		Items:       items,
		Pricing: Pricing{
			Subtotal:       b.Subtotal,
			DeliveryCharge: b.DeliveryCharge,
			DiscountAmount: b.DiscountAmount,
			PromoCode:      b.PromoCode,
			TotalAmount:    b.TotalAmount,
		},
		Delivery: Delivery{
			Address: input.Customer.Address,
			IsDhaka: b.Zone == delivery.ZoneDhaka,
			Charge:  b.DeliveryCharge,
			Notes:   input.Delivery.DeliveryNotes,
		},
		Payment: Payment{
			Method: input.Payment.Method,
			Status: "pending",
		},
		Status:         StatusPending,
		IdempotencyKey: key,
		CreatedAt:      time.Now(),
	}
}

// flagForReview routes a persisted order to operators. The order remains
// successfully created from the buyer's perspective.
func (s *service) flagForReview(ctx context.Context, o *Order, notes string) {
	metrics.OrdersFlaggedForReview.Inc()
	o.Status = StatusPendingReview
	o.InternalNotes = notes

	if err := s.repo.FlagForReview(ctx, o.ID, notes); err != nil {
		logger.FromCtx(ctx).Error("failed to flag order for review",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
	logger.FromCtx(ctx).Warn("order flagged for review",
		zap.String("order_number", o.OrderNumber),
		zap.String("notes", notes),
	)
}

func deductionNotes(res *inventory.MutationResult) string {
	var b strings.Builder
	b.WriteString("stock deduction failed for ")
	for i, f := range res.Failed {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s/%s x%d (%s)", f.ProductID, f.Color, f.Size, f.Quantity, f.Reason)
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(&b, " — %d item(s) already deducted and not compensated", len(res.Applied))
	}
	return b.String()
}

// dispatchSideEffects fires the post-commit effects: promo usage counting,
// cart clearing, emails and the order event. All are failure-tolerant.
func (s *service) dispatchSideEffects(ctx context.Context, o *Order) {
	log := logger.FromCtx(ctx)

	if o.Pricing.PromoCode != "" {
		if err := s.promos.MarkUsed(ctx, o.Pricing.PromoCode); err != nil {
			log.Warn("failed to mark promo used",
				zap.String("code", o.Pricing.PromoCode),
				zap.Error(err),
			)
		}
	}

	go func() {
		// Detached from the request context: the buyer's response must not
		// wait on these, and a request timeout must not cancel them.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.carts.Clear(ctx, o.UserID); err != nil {
			log.Warn("failed to clear cart after order",
				zap.String("user_id", o.UserID),
				zap.Error(err),
			)
		}

		s.events.PublishOrderCreated(ctx, events.OrderCreated{
			OrderID:     o.ExternalID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			Status:      string(o.Status.Public()),
			TotalAmount: o.Pricing.TotalAmount.String(),
			CreatedAt:   o.CreatedAt,
		})
	}()

	total := o.Pricing.TotalAmount.StringFixed(2)
	s.notifier.Dispatch(notification.OrderConfirmation(
		o.Customer.Email, o.Customer.Name, o.OrderNumber, total))
	if s.opsEmail != "" {
		s.notifier.Dispatch(notification.OpsNewOrderAlert(
			s.opsEmail, o.OrderNumber, o.Customer.Name, total))
	}
}

func (s *service) Get(ctx context.Context, userID, externalID string, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) List(ctx context.Context, userID string) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UpdateStatus(ctx context.Context, externalID string, next Status) error {
	o, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	return s.repo.UpdateStatus(ctx, o.ID, next)
}

// Cancel cancels an order that has not shipped and restores its stock.
func (s *service) Cancel(ctx context.Context, userID, externalID string) (*Order, error) {
	o, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return nil, ErrNotCancellable
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, StatusCancelled); err != nil {
		return nil, err
	}
	o.Status = StatusCancelled

	reqs := make([]inventory.Request, 0, len(o.Items))
	for _, item := range o.Items {
		reqs = append(reqs, inventory.Request{
			ProductID: item.ProductID,
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}
	if res, err := s.ledger.Restore(ctx, reqs, o.OrderNumber); err != nil {
		logger.FromCtx(ctx).Error("stock restore failed after cancellation",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	} else if !res.OK {
		logger.FromCtx(ctx).Warn("stock restore incomplete after cancellation",
			zap.String("order_number", o.OrderNumber),
			zap.Int("failed", len(res.Failed)),
		)
	}

	return o, nil
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func stockRequests(inputs []CreateOrderItemInput) []inventory.Request {
	reqs := make([]inventory.Request, 0, len(inputs))
	for _, in := range inputs {
		reqs = append(reqs, inventory.Request{
			ProductID: in.ProductID,
			Color:     in.Color,
			Size:      in.Size,
			Quantity:  in.Quantity,
		})
	}
	return reqs
}
