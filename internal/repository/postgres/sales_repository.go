// internal/repository/postgres/sales_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Insert(ctx context.Context, rec *domain.SalesRecord) error {
	query := `
		INSERT INTO sales_records (sale_date, product_id, units_sold, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowxContext(ctx, query,
		rec.SaleDate, rec.ProductID, rec.UnitsSold, rec.UnitPrice,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert sales record: %w", err)
	}

	return nil
}

func (r *salesRepository) UnitsSold(ctx context.Context, productID int64, date time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(units_sold), 0)
		FROM sales_records
		WHERE product_id = $1 AND sale_date = $2
	`

	var total int
	err := withRetry(ctx, "sum units sold", func() error {
		return r.db.GetContext(ctx, &total, query, productID, date)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum units sold: %w", err)
	}

	return total, nil
}
