package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"dokan-be/internal/logger"

	"go.uber.org/zap"
)

type ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) CheckAvailability(ctx context.Context, reqs []Request) (*AvailabilityReport, error) {
	report := &AvailabilityReport{AllAvailable: true}

	for _, req := range reqs {
		var stock, reserved int
		err := l.db.QueryRowContext(ctx, `
			SELECT stock, reserved
			FROM product_variants
			WHERE product_id = $1 AND LOWER(color) = LOWER($2) AND LOWER(size) = LOWER($3)
		`, req.ProductID, req.Color, req.Size).Scan(&stock, &reserved)

		if err == sql.ErrNoRows {
			status := ItemStatus{Request: req, Available: false, Reason: ReasonVariantNotFound}
			report.Items = append(report.Items, status)
			report.OutOfStock = append(report.OutOfStock, status)
			report.AllAvailable = false
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("check availability: %w", err)
		}

		status := ItemStatus{Request: req, Remaining: stock}
		// A request is satisfiable from either pool: reserved units alone,
		// or free stock alone. Deduct consumes from exactly one of them.
		if reserved >= req.Quantity || stock >= req.Quantity {
			status.Available = true
			if stock-req.Quantity <= LowStockThreshold {
				report.LowStock = append(report.LowStock, status)
			}
		} else {
			status.Reason = fmt.Sprintf("%s: %d remaining, %d requested", ReasonInsufficientStock, stock, req.Quantity)
			report.OutOfStock = append(report.OutOfStock, status)
			report.AllAvailable = false
		}
		report.Items = append(report.Items, status)
	}

	return report, nil
}

func (l *ledger) Deduct(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("op", "deduct"),
		zap.String("order_ref", orderRef),
	)

	result := &MutationResult{OK: true}

	for _, req := range reqs {
		var reserved int
		err := l.db.QueryRowContext(ctx, `
			SELECT reserved
			FROM product_variants
			WHERE product_id = $1 AND LOWER(color) = LOWER($2) AND LOWER(size) = LOWER($3)
		`, req.ProductID, req.Color, req.Size).Scan(&reserved)

		if err == sql.ErrNoRows {
			result.fail(req, ReasonVariantNotFound)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("deduct read variant: %w", err)
		}

		// Consume earmarked units first; otherwise fall through to free
		// stock. Both updates are guarded, so a concurrent order that wins
		// the race makes this one fail cleanly instead of going negative.
		applied := false
		if reserved >= req.Quantity {
			applied, err = l.exec(ctx, `
				UPDATE product_variants
				SET reserved = reserved - $1, sold = sold + $1
				WHERE product_id = $2 AND LOWER(color) = LOWER($3) AND LOWER(size) = LOWER($4)
				  AND reserved >= $1
			`, req)
			if err != nil {
				return nil, err
			}
		}
		if !applied {
			applied, err = l.exec(ctx, `
				UPDATE product_variants
				SET stock = stock - $1, sold = sold + $1
				WHERE product_id = $2 AND LOWER(color) = LOWER($3) AND LOWER(size) = LOWER($4)
				  AND stock >= $1
			`, req)
			if err != nil {
				return nil, err
			}
		}

		if applied {
			result.Applied = append(result.Applied, req)
			log.Info("stock deducted",
				zap.String("product_id", req.ProductID),
				zap.String("color", req.Color),
				zap.String("size", req.Size),
				zap.Int("quantity", req.Quantity),
			)
		} else {
			result.fail(req, ReasonInsufficientStock)
			log.Warn("stock deduction failed",
				zap.String("product_id", req.ProductID),
				zap.String("color", req.Color),
				zap.String("size", req.Size),
				zap.Int("quantity", req.Quantity),
			)
		}
	}

	return result, nil
}

func (l *ledger) Restore(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("op", "restore"),
		zap.String("order_ref", orderRef),
	)

	result := &MutationResult{OK: true}

	for _, req := range reqs {
		applied, err := l.exec(ctx, `
			UPDATE product_variants
			SET stock = stock + $1, sold = GREATEST(sold - $1, 0)
			WHERE product_id = $2 AND LOWER(color) = LOWER($3) AND LOWER(size) = LOWER($4)
		`, req)
		if err != nil {
			return nil, err
		}

		if applied {
			result.Applied = append(result.Applied, req)
			log.Info("stock restored",
				zap.String("product_id", req.ProductID),
				zap.Int("quantity", req.Quantity),
			)
		} else {
			result.fail(req, ReasonVariantNotFound)
		}
	}

	return result, nil
}

func (l *ledger) Reserve(ctx context.Context, reqs []Request, orderRef string) (*MutationResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("op", "reserve"),
		zap.String("order_ref", orderRef),
	)

	result := &MutationResult{OK: true}

	for _, req := range reqs {
		applied, err := l.exec(ctx, `
			UPDATE product_variants
			SET stock = stock - $1, reserved = reserved + $1
			WHERE product_id = $2 AND LOWER(color) = LOWER($3) AND LOWER(size) = LOWER($4)
			  AND stock >= $1
		`, req)
		if err != nil {
			return nil, err
		}

		if applied {
			result.Applied = append(result.Applied, req)
			log.Info("stock reserved",
				zap.String("product_id", req.ProductID),
				zap.Int("quantity", req.Quantity),
			)
		} else {
			result.fail(req, ReasonInsufficientStock)
		}
	}

	return result, nil
}

func (l *ledger) BulkUpdateStock(ctx context.Context, updates []StockUpdate) (*MutationResult, error) {
	result := &MutationResult{OK: true}

	for _, u := range updates {
		if u.NewStock < 0 {
			result.fail(Request{ProductID: u.ProductID, Color: u.Color, Size: u.Size}, "stock must not be negative")
			continue
		}

		res, err := l.db.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = $1
			WHERE product_id = $2 AND LOWER(color) = LOWER($3) AND LOWER(size) = LOWER($4)
		`, u.NewStock, u.ProductID, u.Color, u.Size)
		if err != nil {
			return nil, fmt.Errorf("bulk update stock: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}

		req := Request{ProductID: u.ProductID, Color: u.Color, Size: u.Size, Quantity: u.NewStock}
		if affected > 0 {
			result.Applied = append(result.Applied, req)
		} else {
			result.fail(req, ReasonVariantNotFound)
		}
	}

	return result, nil
}

func (l *ledger) exec(ctx context.Context, query string, req Request) (bool, error) {
	res, err := l.db.ExecContext(ctx, query, req.Quantity, req.ProductID, req.Color, req.Size)
	if err != nil {
		return false, fmt.Errorf("mutate variant: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *MutationResult) fail(req Request, reason string) {
	r.OK = false
	r.Failed = append(r.Failed, FailedItem{Request: req, Reason: reason})
}
