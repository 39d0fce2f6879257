package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

const defaultWorkerCount = 4

// RollForward advances the snapshot log by one period. Each product is
// an independent stream: the engine reads only that product's prior
// snapshot, its receipts and its sales, so products run in parallel
// with no shared write target.
type RollForward struct {
	catalog   repository.CatalogRepository
	snapshots repository.SnapshotRepository
	orders    repository.PORepository
	sales     repository.SalesRepository
	calc      *Calculator
	workers   int
}

// NewRollForward wires the engine to its repositories.
func NewRollForward(
	catalog repository.CatalogRepository,
	snapshots repository.SnapshotRepository,
	orders repository.PORepository,
	sales repository.SalesRepository,
	calc *Calculator,
) *RollForward {
	return &RollForward{
		catalog:   catalog,
		snapshots: snapshots,
		orders:    orders,
		sales:     sales,
		calc:      calc,
		workers:   defaultWorkerCount,
	}
}

// SetWorkerCount bounds per-run parallelism.
func (e *RollForward) SetWorkerCount(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Outcome is the result of one (date, product) unit.
type Outcome struct {
	ProductID int64                     `json:"product_id"`
	Snapshot  *domain.InventorySnapshot `json:"snapshot,omitempty"`
	Stockout  *domain.StockoutEvent     `json:"stockout,omitempty"`
	Skipped   bool                      `json:"skipped"`
	Err       error                     `json:"-"`
	ErrMsg    string                    `json:"error,omitempty"`
}

// RunResult collects the batch outcome for one target date.
type RunResult struct {
	RunID     string                 `json:"run_id"`
	Date      time.Time              `json:"date"`
	Outcomes  []Outcome              `json:"outcomes"`
	Created   int                    `json:"created"`
	Skipped   int                    `json:"skipped"`
	Failed    int                    `json:"failed"`
	Stockouts []domain.StockoutEvent `json:"stockouts,omitempty"`
}

// Run rolls every product in scope forward to the target date. An
// empty scope means all products. A failure in one product unit is
// recorded in its outcome and never aborts the batch.
func (e *RollForward) Run(ctx context.Context, date time.Time, scope []int64) (*RunResult, error) {
	date = truncateDate(date)

	products, err := e.catalog.GetProducts(ctx, scope)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID: uuid.NewString(),
		Date:  date,
	}

	log.Info().
		Str("run_id", result.RunID).
		Time("date", date).
		Int("products", len(products)).
		Msg("starting roll-forward run")

	jobChan := make(chan domain.Product, len(products))
	outcomes := make([]Outcome, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	var wg sync.WaitGroup
	workers := e.workers
	if workers > len(products) {
		workers = len(products)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobChan {
				outcomes[index[p.ID]] = e.rollProduct(ctx, date, p)
			}
		}()
	}

	for _, p := range products {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- p:
		}
	}
	close(jobChan)
	wg.Wait()

	for _, out := range outcomes {
		switch {
		case out.Err != nil:
			result.Failed++
		case out.Skipped:
			result.Skipped++
		default:
			result.Created++
		}
		if out.Stockout != nil {
			result.Stockouts = append(result.Stockouts, *out.Stockout)
		}
	}
	result.Outcomes = outcomes

	log.Info().
		Str("run_id", result.RunID).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("stockouts", len(result.Stockouts)).
		Msg("roll-forward run finished")

	return result, nil
}

// rollProduct executes steps 1-9 for a single (date, product) unit.
func (e *RollForward) rollProduct(ctx context.Context, date time.Time, p domain.Product) Outcome {
	out := Outcome{ProductID: p.ID}

	prior, err := e.snapshots.GetPrior(ctx, p.ID, date)
	if err != nil {
		return failOutcome(out, err)
	}
	priorStock := 0
	if prior != nil {
		priorStock = prior.CurrentStock
	}

	receipts, err := e.orders.ReceivedQuantity(ctx, p.ID, date)
	if err != nil {
		return failOutcome(out, err)
	}

	sales, err := e.sales.UnitsSold(ctx, p.ID, date)
	if err != nil {
		return failOutcome(out, err)
	}

	currentStock := priorStock + receipts - sales
	if currentStock < 0 {
		out.Stockout = &domain.StockoutEvent{
			ProductID:    p.ID,
			SnapshotDate: date,
			PriorStock:   priorStock,
			Receipts:     receipts,
			Sales:        sales,
			Shortfall:    -currentStock,
		}
		currentStock = 0
		log.Warn().
			Int64("product_id", p.ID).
			Time("date", date).
			Int("shortfall", out.Stockout.Shortfall).
			Msg("sales exceeded available stock, clamped to zero")
	}

	plan, err := e.calc.PlanFor(p)
	if err != nil {
		return failOutcome(out, err)
	}

	snap := &domain.InventorySnapshot{
		SnapshotDate:    date,
		ProductID:       p.ID,
		CurrentStock:    currentStock,
		EOQQty:          plan.EOQQty,
		SafetyStock:     plan.SafetyStock,
		ReorderPoint:    plan.ReorderPoint,
		DailyDemand:     plan.DailyDemand,
		LeadTimeDays:    plan.LeadTimeDays,
		DaysOfSupply:    daysOfSupply(currentStock, plan.DailyDemand),
		ExcessStock:     ExcessStock(currentStock, plan.ReorderPoint, plan.EOQQty),
		StockoutRiskPct: StockoutRiskPct(currentStock, plan.ReorderPoint),
	}
	snap.AlertStatus = Classify(snap.CurrentStock, snap.SafetyStock, snap.ReorderPoint, snap.EOQQty)

	if err := e.snapshots.Insert(ctx, snap); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Safe re-run: the snapshot for this key already exists.
			out.Skipped = true
			return out
		}
		return failOutcome(out, err)
	}

	out.Snapshot = snap
	return out
}

func failOutcome(out Outcome, err error) Outcome {
	out.Err = err
	out.ErrMsg = err.Error()
	log.Error().Err(err).Int64("product_id", out.ProductID).Msg("roll-forward unit failed")
	return out
}

func daysOfSupply(currentStock int, dailyDemand float64) float64 {
	if dailyDemand <= 0 {
		return 0
	}
	return float64(currentStock) / dailyDemand
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
