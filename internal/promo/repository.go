package promo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Catalog {
	return &repository{db: db}
}

const offerColumns = `id, code, title, discount_type, discount_value,
	min_order_value, usage_limit, used_count, valid_from, valid_to,
	is_active, created_at, updated_at`

func (r *repository) GetByCode(ctx context.Context, code string) (*Offer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM promo_offers
		WHERE UPPER(code) = $1
	`, offerColumns)

	row := r.db.QueryRowContext(ctx, query, strings.ToUpper(code))

	offer, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get offer by code: %w", err)
	}
	return offer, nil
}

func (r *repository) GetActive(ctx context.Context) ([]Offer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM promo_offers
		WHERE is_active = true
		  AND valid_from <= $1
		  AND valid_to >= $1
		  AND (usage_limit IS NULL OR used_count < usage_limit)
		ORDER BY valid_to ASC
	`, offerColumns)

	rows, err := r.db.QueryContext(ctx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("get active offers: %w", err)
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active offer: %w", err)
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

func (r *repository) MarkUsed(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE promo_offers
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE UPPER(code) = $1
	`, strings.ToUpper(code))
	if err != nil {
		return fmt.Errorf("mark offer used: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner) (*Offer, error) {
	var o Offer
	var usageLimit sql.NullInt64

	err := row.Scan(
		&o.ID, &o.Code, &o.Title, &o.DiscountType, &o.DiscountValue,
		&o.MinOrderValue, &usageLimit, &o.UsedCount, &o.ValidFrom, &o.ValidTo,
		&o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		o.UsageLimit = &limit
	}
	return &o, nil
}
