// internal/repository/postgres/snapshot_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Insert appends one snapshot row. The (snapshot_date, product_id)
// uniqueness check runs inside the same transaction as the insert, so
// at most one snapshot exists per key even under re-runs.
func (r *snapshotRepository) Insert(ctx context.Context, snap *domain.InventorySnapshot) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		err := tx.GetContext(ctx, &exists, `
			SELECT EXISTS (
				SELECT 1 FROM inventory_snapshots
				WHERE snapshot_date = $1 AND product_id = $2
			)
		`, snap.SnapshotDate, snap.ProductID)
		if err != nil {
			return fmt.Errorf("failed to check snapshot existence: %w", err)
		}
		if exists {
			return fmt.Errorf("snapshot for product %d on %s: %w",
				snap.ProductID, snap.SnapshotDate.Format("2006-01-02"), domain.ErrAlreadyExists)
		}

		query := `
			INSERT INTO inventory_snapshots (
				snapshot_date, product_id, current_stock, eoq_qty, safety_stock,
				reorder_point, daily_demand, lead_time_days, days_of_supply,
				excess_stock, stockout_risk_pct, alert_status, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
			RETURNING id, created_at
		`
		err = tx.QueryRowxContext(ctx, query,
			snap.SnapshotDate, snap.ProductID, snap.CurrentStock, snap.EOQQty,
			snap.SafetyStock, snap.ReorderPoint, snap.DailyDemand, snap.LeadTimeDays,
			snap.DaysOfSupply, snap.ExcessStock, snap.StockoutRiskPct, snap.AlertStatus,
		).Scan(&snap.ID, &snap.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
		return nil
	})
}

func (r *snapshotRepository) GetPrior(ctx context.Context, productID int64, before time.Time) (*domain.InventorySnapshot, error) {
	query := `
		SELECT id, snapshot_date, product_id, current_stock, eoq_qty, safety_stock,
		       reorder_point, daily_demand, lead_time_days, days_of_supply,
		       excess_stock, stockout_risk_pct, alert_status, created_at
		FROM inventory_snapshots
		WHERE product_id = $1 AND snapshot_date < $2
		ORDER BY snapshot_date DESC
		LIMIT 1
	`

	var snap domain.InventorySnapshot
	err := withRetry(ctx, "get prior snapshot", func() error {
		return r.db.GetContext(ctx, &snap, query, productID, before)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prior snapshot: %w", err)
	}

	return &snap, nil
}

func (r *snapshotRepository) GetLatest(ctx context.Context) ([]domain.InventorySnapshot, error) {
	query := `
		SELECT DISTINCT ON (product_id)
		       id, snapshot_date, product_id, current_stock, eoq_qty, safety_stock,
		       reorder_point, daily_demand, lead_time_days, days_of_supply,
		       excess_stock, stockout_risk_pct, alert_status, created_at
		FROM inventory_snapshots
		ORDER BY product_id, snapshot_date DESC
	`

	var snaps []domain.InventorySnapshot
	err := withRetry(ctx, "get latest snapshots", func() error {
		return r.db.SelectContext(ctx, &snaps, query)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshots: %w", err)
	}

	return snaps, nil
}

func (r *snapshotRepository) GetByDate(ctx context.Context, date time.Time) ([]domain.InventorySnapshot, error) {
	query := `
		SELECT id, snapshot_date, product_id, current_stock, eoq_qty, safety_stock,
		       reorder_point, daily_demand, lead_time_days, days_of_supply,
		       excess_stock, stockout_risk_pct, alert_status, created_at
		FROM inventory_snapshots
		WHERE snapshot_date = $1
		ORDER BY product_id
	`

	var snaps []domain.InventorySnapshot
	err := withRetry(ctx, "get snapshots by date", func() error {
		return r.db.SelectContext(ctx, &snaps, query, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots by date: %w", err)
	}

	return snaps, nil
}
