// internal/service/snapshot_service.go
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/supplydash/inventory-engine/internal/cache"
	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/engine"
	"github.com/supplydash/inventory-engine/internal/repository"
	"github.com/supplydash/inventory-engine/internal/storage"
)

// SnapshotService orchestrates roll-forward runs and serves the
// read-side reports built from the snapshot log.
type SnapshotService struct {
	engine      *engine.RollForward
	catalog     repository.CatalogRepository
	snapshots   repository.SnapshotRepository
	agg         *engine.Aggregator
	kpiCache    cache.KPICache
	store       storage.ObjectStorage
	baselineQty int
}

func NewSnapshotService(
	rollForward *engine.RollForward,
	catalog repository.CatalogRepository,
	snapshots repository.SnapshotRepository,
	agg *engine.Aggregator,
	kpiCache cache.KPICache,
	baselineQty int,
) *SnapshotService {
	if baselineQty <= 0 {
		baselineQty = 1000
	}
	return &SnapshotService{
		engine:      rollForward,
		catalog:     catalog,
		snapshots:   snapshots,
		agg:         agg,
		kpiCache:    kpiCache,
		baselineQty: baselineQty,
	}
}

// SetArchiveStorage enables CSV archival of run results.
func (s *SnapshotService) SetArchiveStorage(store storage.ObjectStorage) {
	s.store = store
}

// Run executes one roll-forward pass for the target date and product
// scope, then invalidates the KPI cache and archives the day's
// snapshot table when storage is configured.
func (s *SnapshotService) Run(ctx context.Context, date time.Time, scope []int64) (*engine.RunResult, error) {
	result, err := s.engine.Run(ctx, date, scope)
	if err != nil {
		return nil, err
	}

	if err := s.kpiCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate kpi cache")
	}

	if s.store != nil && result.Created > 0 {
		if err := s.archiveSnapshots(ctx, result.Date); err != nil {
			log.Warn().Err(err).Msg("failed to archive snapshot csv")
		}
	}

	return result, nil
}

// Alerts builds the alert feed from the latest snapshot per product.
func (s *SnapshotService) Alerts(ctx context.Context) ([]domain.Alert, error) {
	latest, err := s.snapshots.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.productIndex(ctx)
	if err != nil {
		return nil, err
	}

	return engine.BuildAlertFeed(latest, products, time.Now().UTC()), nil
}

// Costs returns the per-product annual cost breakdown.
func (s *SnapshotService) Costs(ctx context.Context) ([]domain.ProductCost, error) {
	latest, err := s.snapshots.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.productIndex(ctx)
	if err != nil {
		return nil, err
	}

	costs := make([]domain.ProductCost, 0, len(latest))
	for _, snap := range latest {
		p, ok := products[snap.ProductID]
		if !ok {
			continue
		}
		cost, err := s.agg.ProductCost(p, snap)
		if err != nil {
			log.Warn().Err(err).Int64("product_id", p.ID).Msg("skipping product cost")
			continue
		}
		costs = append(costs, cost)
	}

	return costs, nil
}

// KPIs returns the cached portfolio KPI set, computing and caching it
// on a miss.
func (s *SnapshotService) KPIs(ctx context.Context) (*domain.PortfolioKPIs, error) {
	if cached, hit, err := s.kpiCache.Get(ctx); err != nil {
		log.Warn().Err(err).Msg("kpi cache read failed")
	} else if hit {
		return cached, nil
	}

	latest, err := s.snapshots.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.GetProducts(ctx, nil)
	if err != nil {
		return nil, err
	}

	kpis := s.agg.PortfolioKPIs(products, latest, time.Now().UTC())
	if err := s.kpiCache.Set(ctx, &kpis); err != nil {
		log.Warn().Err(err).Msg("kpi cache write failed")
	}

	return &kpis, nil
}

// Savings runs the baseline-vs-EOQ cost comparison. A zero baseline
// uses the configured default.
func (s *SnapshotService) Savings(ctx context.Context, baselineQty int) ([]domain.CostSaving, error) {
	if baselineQty <= 0 {
		baselineQty = s.baselineQty
	}

	products, err := s.catalog.GetProducts(ctx, nil)
	if err != nil {
		return nil, err
	}

	return s.agg.CostSavings(products, baselineQty)
}

// Latest returns the newest snapshot per product.
func (s *SnapshotService) Latest(ctx context.Context) ([]domain.InventorySnapshot, error) {
	return s.snapshots.GetLatest(ctx)
}

// ByDate returns all snapshots for one date.
func (s *SnapshotService) ByDate(ctx context.Context, date time.Time) ([]domain.InventorySnapshot, error) {
	return s.snapshots.GetByDate(ctx, date)
}

func (s *SnapshotService) productIndex(ctx context.Context) (map[int64]domain.Product, error) {
	products, err := s.catalog.GetProducts(ctx, nil)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index, nil
}

func (s *SnapshotService) archiveSnapshots(ctx context.Context, date time.Time) error {
	snaps, err := s.snapshots.GetByDate(ctx, date)
	if err != nil {
		return err
	}

	payload, err := snapshotsCSV(snaps)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("snapshots/%s.csv", date.Format("2006-01-02"))
	if err := s.store.UploadObject(ctx, key, payload); err != nil {
		return err
	}

	log.Info().Str("key", key).Int("rows", len(snaps)).Msg("archived snapshot csv")
	return nil
}

func snapshotsCSV(snaps []domain.InventorySnapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"snapshot_date", "product_id", "current_stock", "eoq_qty", "safety_stock",
		"reorder_point", "daily_demand", "days_of_supply", "excess_stock",
		"stockout_risk_pct", "alert_status",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, snap := range snaps {
		record := []string{
			snap.SnapshotDate.Format("2006-01-02"),
			strconv.FormatInt(snap.ProductID, 10),
			strconv.Itoa(snap.CurrentStock),
			strconv.Itoa(snap.EOQQty),
			strconv.Itoa(snap.SafetyStock),
			strconv.Itoa(snap.ReorderPoint),
			strconv.FormatFloat(snap.DailyDemand, 'f', 4, 64),
			strconv.FormatFloat(snap.DaysOfSupply, 'f', 1, 64),
			strconv.Itoa(snap.ExcessStock),
			strconv.FormatFloat(snap.StockoutRiskPct, 'f', 1, 64),
			string(snap.AlertStatus),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
