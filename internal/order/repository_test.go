package order

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "external_id", "order_number", "user_id",
		"customer_name", "customer_email", "customer_phone", "customer_address",
		"subtotal", "delivery_charge", "discount_amount", "promo_code", "total_amount",
		"delivery_address", "is_dhaka", "delivery_notes",
		"payment_method", "payment_status",
		"status", "internal_notes", "created_at", "updated_at",
	})
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"product_id", "product_name", "product_image", "color", "size",
		"unit_price", "quantity", "total_price", "customization",
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	o := &Order{
		ExternalID:  "ext-1",
		OrderNumber: "ORD-20260829-101500-0042",
		UserID:      "user-1",
		Customer: CustomerInfo{
			Name: "Rahim Uddin", Email: "rahim@example.com",
			Phone: "01712345678", Address: "Dhanmondi, Dhaka",
		},
		Items: []Item{
			{
				ProductID: "p1", ProductName: "Home Jersey",
				Color: "Red", Size: "M",
				UnitPrice: decimal.NewFromInt(500), Quantity: 2,
				TotalPrice:    decimal.NewFromInt(1000),
				Customization: &Customization{Text: "RAHIM", Number: "10"},
			},
		},
		Pricing: Pricing{
			Subtotal:       decimal.NewFromInt(1000),
			DeliveryCharge: decimal.NewFromInt(70),
			DiscountAmount: decimal.Zero,
			TotalAmount:    decimal.NewFromInt(1070),
		},
		Delivery:  Delivery{Address: "Dhanmondi, Dhaka", IsDhaka: true, Charge: decimal.NewFromInt(70)},
		Payment:   Payment{Method: "cod", Status: "pending"},
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(context.Background(), o))
		assert.Equal(t, uint(7), o.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ItemInsertFailureRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		assert.Error(t, repo.Create(context.Background(), o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetByExternalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rows := orderRows().AddRow(
			7, "ext-1", "ORD-1", "user-1",
			"Rahim Uddin", "rahim@example.com", "01712345678", "Dhanmondi, Dhaka",
			"1000", "70", "0", nil, "1070",
			"Dhanmondi, Dhaka", true, nil,
			"cod", "pending",
			"pending_review", "stock deduction failed", now, now,
		)
		mock.ExpectQuery(`SELECT .* FROM orders WHERE external_id = \$1`).
			WithArgs("ext-1").
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT .* FROM order_items`).
			WithArgs(uint(7)).
			WillReturnRows(itemRows().AddRow(
				"p1", "Home Jersey", nil, "Red", "M",
				"500", 2, "1000", []byte(`{"text":"RAHIM"}`),
			))

		o, err := repo.GetByExternalID(context.Background(), "ext-1")
		require.NoError(t, err)
		assert.Equal(t, StatusPendingReview, o.Status)
		assert.Equal(t, "stock deduction failed", o.InternalNotes)
		assert.True(t, o.Pricing.TotalAmount.Equal(decimal.NewFromInt(1070)))
		require.Len(t, o.Items, 1)
		require.NotNil(t, o.Items[0].Customization)
		assert.Equal(t, "RAHIM", o.Items[0].Customization.Text)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE external_id = \$1`).
			WithArgs("missing").
			WillReturnRows(orderRows())

		_, err := repo.GetByExternalID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	rows := orderRows().
		AddRow(2, "ext-2", "ORD-2", "user-1",
			"Rahim", "r@example.com", "01712345678", "Dhaka",
			"500", "70", "0", nil, "570",
			"Dhaka", true, nil, "cod", "pending",
			"pending", nil, now, now).
		AddRow(1, "ext-1", "ORD-1", "user-1",
			"Rahim", "r@example.com", "01712345678", "Dhaka",
			"1000", "70", "100", "WELCOME10", "970",
			"Dhaka", true, "leave at gate", "cod", "paid",
			"delivered", nil, now.Add(-time.Hour), now)

	mock.ExpectQuery(`SELECT .* FROM orders WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(rows)

	orders, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "WELCOME10", orders[1].Pricing.PromoCode)
	assert.Equal(t, "leave at gate", orders[1].Delivery.Notes)
}

func TestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1`).
			WithArgs(StatusConfirmed, uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(context.Background(), 7, StatusConfirmed))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1`).
			WithArgs(StatusConfirmed, uint(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 99, StatusConfirmed), ErrOrderNotFound)
	})
}

func TestRepository_FlagForReview(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE orders`).
		WithArgs(StatusPendingReview, "stock deduction failed for p1", uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.FlagForReview(context.Background(), 7, "stock deduction failed for p1"))
}
