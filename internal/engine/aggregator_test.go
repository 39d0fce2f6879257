package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/supplydash/inventory-engine/internal/domain"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(NewCalculator(DefaultParams))
}

func TestAnnualHoldingCost(t *testing.T) {
	agg := newTestAggregator()

	// (183/2 + 248) * 900 = 339.5 * 900 = 305550
	got := agg.AnnualHoldingCost(183, 248, 900)
	want := decimal.NewFromInt(305550)
	if !got.Equal(want) {
		t.Errorf("AnnualHoldingCost(183, 248, 900) = %s, want %s", got, want)
	}
}

func TestAnnualOrderingCost(t *testing.T) {
	agg := newTestAggregator()

	// (6060/183) * 2500 = 82786.89
	got, err := agg.AnnualOrderingCost(6060, 183)
	if err != nil {
		t.Fatalf("AnnualOrderingCost error: %v", err)
	}
	want := decimal.NewFromFloat(82786.89)
	if !got.Equal(want) {
		t.Errorf("AnnualOrderingCost(6060, 183) = %s, want %s", got, want)
	}

	if _, err := agg.AnnualOrderingCost(6060, 0); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("zero EOQ error = %v, want ErrInvalidParameter", err)
	}
}

func TestProductCost(t *testing.T) {
	agg := newTestAggregator()

	p := domain.Product{
		ID:             1,
		Name:           "Industrial Controller",
		UnitCost:       4500,
		HoldingCostPct: 0.20,
		AnnualDemand:   6060,
	}
	snap := domain.InventorySnapshot{
		ProductID:   1,
		EOQQty:      183,
		SafetyStock: 248,
		ExcessStock: 10,
	}

	cost, err := agg.ProductCost(p, snap)
	if err != nil {
		t.Fatalf("ProductCost error: %v", err)
	}

	if !cost.AnnualHoldingCost.Equal(decimal.NewFromInt(305550)) {
		t.Errorf("AnnualHoldingCost = %s, want 305550", cost.AnnualHoldingCost)
	}
	if !cost.AnnualOrderingCost.Equal(decimal.NewFromFloat(82786.89)) {
		t.Errorf("AnnualOrderingCost = %s, want 82786.89", cost.AnnualOrderingCost)
	}
	if !cost.TotalCost.Equal(decimal.NewFromFloat(388336.89)) {
		t.Errorf("TotalCost = %s, want 388336.89", cost.TotalCost)
	}
	// 10 excess units * 900 holding cost per unit
	if !cost.ExcessHoldingCost.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("ExcessHoldingCost = %s, want 9000", cost.ExcessHoldingCost)
	}
}

func TestPortfolioKPIs(t *testing.T) {
	agg := newTestAggregator()
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	products := []domain.Product{
		{ID: 1, UnitCost: 100, HoldingCostPct: 0.2, AnnualDemand: 1000},
		{ID: 2, UnitCost: 200, HoldingCostPct: 0.1, AnnualDemand: 500},
	}
	latest := []domain.InventorySnapshot{
		{ProductID: 1, EOQQty: 500, SafetyStock: 50, DaysOfSupply: 12, ExcessStock: 0, AlertStatus: domain.AlertHealthy},
		{ProductID: 2, EOQQty: 354, SafetyStock: 30, DaysOfSupply: 4, ExcessStock: 20, AlertStatus: domain.AlertCritical},
	}

	kpis := agg.PortfolioKPIs(products, latest, now)

	if kpis.TotalProducts != 2 {
		t.Errorf("TotalProducts = %d, want 2", kpis.TotalProducts)
	}
	if kpis.CountByStatus["HEALTHY"] != 1 || kpis.CountByStatus["CRITICAL"] != 1 {
		t.Errorf("CountByStatus = %v, want one HEALTHY and one CRITICAL", kpis.CountByStatus)
	}
	if kpis.AvgDaysOfSupply != 8 {
		t.Errorf("AvgDaysOfSupply = %v, want 8", kpis.AvgDaysOfSupply)
	}
	if kpis.TotalExcessUnits != 20 {
		t.Errorf("TotalExcessUnits = %d, want 20", kpis.TotalExcessUnits)
	}
	// Product 2: 20 excess * (200*0.1) = 400
	if !kpis.TotalExcessCost.Equal(decimal.NewFromInt(400)) {
		t.Errorf("TotalExcessCost = %s, want 400", kpis.TotalExcessCost)
	}
	if !kpis.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", kpis.GeneratedAt, now)
	}
}

func TestPortfolioKPIsEmpty(t *testing.T) {
	agg := newTestAggregator()

	kpis := agg.PortfolioKPIs(nil, nil, time.Now())
	if kpis.TotalProducts != 0 || kpis.AvgDaysOfSupply != 0 {
		t.Errorf("empty portfolio KPIs = %+v, want zeros", kpis)
	}
}

func TestCostSavings(t *testing.T) {
	agg := newTestAggregator()

	products := []domain.Product{
		{ID: 1, Name: "Industrial Controller", UnitCost: 4500, HoldingCostPct: 0.20, AnnualDemand: 6060, DemandStdDev: 220, LeadTimeDays: 14},
		{ID: 2, Name: "Warehouse Rack", UnitCost: 1200, HoldingCostPct: 0.15, AnnualDemand: 2400, DemandStdDev: 95, LeadTimeDays: 21},
	}

	rows, err := agg.CostSavings(products, 1000)
	if err != nil {
		t.Fatalf("CostSavings error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 2 products + TOTAL", len(rows))
	}

	total := rows[len(rows)-1]
	if total.Product != "TOTAL" || total.ProductID != 0 {
		t.Fatalf("last row = %+v, want TOTAL", total)
	}

	wantBefore := rows[0].BeforeCost.Add(rows[1].BeforeCost)
	if !total.BeforeCost.Equal(wantBefore) {
		t.Errorf("TOTAL before = %s, want %s", total.BeforeCost, wantBefore)
	}
	wantSaving := total.BeforeCost.Sub(total.AfterCost)
	if !total.Saving.Equal(wantSaving.Round(2)) {
		t.Errorf("TOTAL saving = %s, want %s", total.Saving, wantSaving)
	}

	// Ordering in EOQ-sized lots beats a 1000-unit baseline for these
	// demand profiles.
	for _, row := range rows {
		if row.Saving.IsNegative() {
			t.Errorf("row %s has negative saving %s", row.Product, row.Saving)
		}
	}
}

func TestCostSavingsInvalidBaseline(t *testing.T) {
	agg := newTestAggregator()

	for _, qty := range []int{0, -5} {
		if _, err := agg.CostSavings(nil, qty); !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("CostSavings(baseline %d) error = %v, want ErrInvalidParameter", qty, err)
		}
	}
}
