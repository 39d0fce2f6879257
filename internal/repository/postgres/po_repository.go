// internal/repository/postgres/po_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

type poRepository struct {
	db *DB
}

func NewPORepository(db *DB) repository.PORepository {
	return &poRepository{db: db}
}

func (r *poRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (
			po_number, product_id, supplier_id, order_date, expected_date,
			actual_date, quantity, unit_cost, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		po.PONumber, po.ProductID, po.SupplierID, po.OrderDate, po.ExpectedDate,
		po.ActualDate, po.Quantity, po.UnitCost, po.Status,
	).Scan(&po.CreatedAt, &po.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// unique_violation on the po_number primary key
		return fmt.Errorf("po %s: %w", po.PONumber, domain.ErrDuplicateIdentifier)
	}
	if err != nil {
		return fmt.Errorf("failed to insert purchase order: %w", err)
	}

	return nil
}

func (r *poRepository) GetByNumber(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	query := `
		SELECT po_number, product_id, supplier_id, order_date, expected_date,
		       actual_date, quantity, unit_cost, status, created_at, updated_at
		FROM purchase_orders
		WHERE po_number = $1
	`

	var po domain.PurchaseOrder
	err := withRetry(ctx, "get purchase order", func() error {
		return r.db.GetContext(ctx, &po, query, poNumber)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("po %s: %w", poNumber, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	return &po, nil
}

// Transition updates the status with the expected current status as a
// predicate of the UPDATE itself. Two concurrent receive attempts race
// on the row; the one that matches the predicate wins, the other sees
// zero rows and fails with ErrInvalidTransition.
func (r *poRepository) Transition(ctx context.Context, poNumber string, from, to domain.POStatus, actualDate *time.Time) error {
	query := `
		UPDATE purchase_orders
		SET status = $1,
		    actual_date = COALESCE($2, actual_date),
		    updated_at = NOW()
		WHERE po_number = $3 AND status = $4
	`

	res, err := r.db.ExecContext(ctx, query, to, actualDate, poNumber, from)
	if err != nil {
		return fmt.Errorf("failed to update purchase order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		current, getErr := r.GetByNumber(ctx, poNumber)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("po %s is %s, not %s: %w", poNumber, current.Status, from, domain.ErrInvalidTransition)
	}

	return nil
}

func (r *poRepository) List(ctx context.Context, status domain.POStatus) ([]domain.PurchaseOrder, error) {
	query := `
		SELECT po_number, product_id, supplier_id, order_date, expected_date,
		       actual_date, quantity, unit_cost, status, created_at, updated_at
		FROM purchase_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY po_number
	`

	var orders []domain.PurchaseOrder
	err := withRetry(ctx, "list purchase orders", func() error {
		return r.db.SelectContext(ctx, &orders, query, string(status))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	return orders, nil
}

func (r *poRepository) ReceivedQuantity(ctx context.Context, productID int64, date time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM purchase_orders
		WHERE product_id = $1 AND status = $2 AND actual_date = $3
	`

	var total int
	err := withRetry(ctx, "sum received quantity", func() error {
		return r.db.GetContext(ctx, &total, query, productID, domain.POReceived, date)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum received quantity: %w", err)
	}

	return total, nil
}

func (r *poRepository) LastSequence(ctx context.Context, year int) (int64, error) {
	query := `
		SELECT COALESCE(MAX(split_part(po_number, '-', 3)::bigint), 0)
		FROM purchase_orders
		WHERE po_number LIKE $1
	`

	var last int64
	err := withRetry(ctx, "get last po sequence", func() error {
		return r.db.GetContext(ctx, &last, query, fmt.Sprintf("PO-%d-%%", year))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get last po sequence: %w", err)
	}

	return last, nil
}
