// internal/repository/postgres/catalog_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetProducts(ctx context.Context, ids []int64) ([]domain.Product, error) {
	query := `
		SELECT id, code, name, unit_cost, holding_cost_pct, annual_demand,
		       demand_std_dev, lead_time_days, preferred_supplier_id,
		       created_at, updated_at
		FROM products
		WHERE ($1::bigint[] IS NULL OR id = ANY($1::bigint[]))
		ORDER BY id
	`

	var scope interface{}
	if len(ids) > 0 {
		scope = pq.Array(ids)
	}

	var products []domain.Product
	err := withRetry(ctx, "get products", func() error {
		return r.db.SelectContext(ctx, &products, query, scope)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, code, name, unit_cost, holding_cost_pct, annual_demand,
		       demand_std_dev, lead_time_days, preferred_supplier_id,
		       created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p domain.Product
	err := withRetry(ctx, "get product", func() error {
		return r.db.GetContext(ctx, &p, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

func (r *catalogRepository) GetSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	query := `
		SELECT id, name, lead_time_days, on_time_rate, rating, created_at, updated_at
		FROM suppliers
		ORDER BY id
	`

	var suppliers []domain.Supplier
	err := withRetry(ctx, "get suppliers", func() error {
		return r.db.SelectContext(ctx, &suppliers, query)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return suppliers, nil
}

func (r *catalogRepository) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	query := `
		SELECT id, name, lead_time_days, on_time_rate, rating, created_at, updated_at
		FROM suppliers
		WHERE id = $1
	`

	var s domain.Supplier
	err := withRetry(ctx, "get supplier", func() error {
		return r.db.GetContext(ctx, &s, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("supplier %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	return &s, nil
}
