package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	products, err := r.GetMany(ctx, []string{id})
	if err != nil {
		return nil, err
	}

	p, ok := products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (r *repository) GetMany(ctx context.Context, ids []string) (map[string]*Product, error) {
	if len(ids) == 0 {
		return map[string]*Product{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, seller_id, name, base_price, offer_price, image_url, status
		FROM products
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := map[string]*Product{}
	for rows.Next() {
		var p Product
		var offerPrice decimal.NullDecimal
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.BasePrice, &offerPrice, &p.ImageURL, &p.Status); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if offerPrice.Valid {
			op := offerPrice.Decimal
			p.OfferPrice = &op
		}
		products[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return products, nil
	}

	variantRows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, color, size, stock, reserved, sold
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var v Variant
		if err := variantRows.Scan(&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Stock, &v.Reserved, &v.Sold); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		if p, ok := products[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}

	return products, variantRows.Err()
}
