package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByExternalID(ctx context.Context, externalID string) (*Order, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status) error
	FlagForReview(ctx context.Context, orderID uint, notes string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create persists the order aggregate. The order row and its items commit
// together; this is the saga's commit point.
func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			external_id, order_number, user_id,
			customer_name, customer_email, customer_phone, customer_address,
			subtotal, delivery_charge, discount_amount, promo_code, total_amount,
			delivery_address, is_dhaka, delivery_notes,
			payment_method, payment_status,
			status, internal_notes, idempotency_key,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$21)
		RETURNING id
	`,
		o.ExternalID, o.OrderNumber, o.UserID,
		o.Customer.Name, o.Customer.Email, o.Customer.Phone, o.Customer.Address,
		o.Pricing.Subtotal, o.Pricing.DeliveryCharge, o.Pricing.DiscountAmount,
		nullString(o.Pricing.PromoCode), o.Pricing.TotalAmount,
		o.Delivery.Address, o.Delivery.IsDhaka, nullString(o.Delivery.Notes),
		o.Payment.Method, o.Payment.Status,
		o.Status, nullString(o.InternalNotes), o.IdempotencyKey,
		o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		var customization []byte
		if item.Customization != nil {
			customization, err = json.Marshal(item.Customization)
			if err != nil {
				return fmt.Errorf("encode customization: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, product_image,
				color, size, unit_price, quantity, total_price, customization
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			o.ID, item.ProductID, item.ProductName, nullString(item.ProductImage),
			item.Color, item.Size, item.UnitPrice, item.Quantity, item.TotalPrice,
			customization,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

const orderColumns = `id, external_id, order_number, user_id,
	customer_name, customer_email, customer_phone, customer_address,
	subtotal, delivery_charge, discount_amount, promo_code, total_amount,
	delivery_address, is_dhaka, delivery_notes,
	payment_method, payment_status,
	status, internal_notes, created_at, updated_at`

func (r *repository) GetByExternalID(ctx context.Context, externalID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM orders WHERE external_id = $1
	`, orderColumns), externalID)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM orders WHERE user_id = $1 AND idempotency_key = $2
	`, orderColumns), userID, key)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by idempotency key: %w", err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, orderColumns), userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uint, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireAffected(res)
}

func (r *repository) FlagForReview(ctx context.Context, orderID uint, notes string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, internal_notes = $2, updated_at = NOW()
		WHERE id = $3
	`, StatusPendingReview, notes, orderID)
	if err != nil {
		return fmt.Errorf("flag order for review: %w", err)
	}
	return requireAffected(res)
}

func (r *repository) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, product_name, product_image, color, size,
			unit_price, quantity, total_price, customization
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		var image sql.NullString
		var customization []byte
		if err := rows.Scan(&item.ProductID, &item.ProductName, &image, &item.Color,
			&item.Size, &item.UnitPrice, &item.Quantity, &item.TotalPrice, &customization); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.ProductImage = image.String
		if len(customization) > 0 {
			var c Customization
			if err := json.Unmarshal(customization, &c); err != nil {
				return fmt.Errorf("decode customization: %w", err)
			}
			item.Customization = &c
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var o Order
	var promoCode, deliveryNotes, internalNotes sql.NullString

	err := row.Scan(
		&o.ID, &o.ExternalID, &o.OrderNumber, &o.UserID,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Address,
		&o.Pricing.Subtotal, &o.Pricing.DeliveryCharge, &o.Pricing.DiscountAmount,
		&promoCode, &o.Pricing.TotalAmount,
		&o.Delivery.Address, &o.Delivery.IsDhaka, &deliveryNotes,
		&o.Payment.Method, &o.Payment.Status,
		&o.Status, &internalNotes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Pricing.PromoCode = promoCode.String
	o.Delivery.Notes = deliveryNotes.String
	o.InternalNotes = internalNotes.String
	o.Delivery.Charge = o.Pricing.DeliveryCharge
	return &o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
