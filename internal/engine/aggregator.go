package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/supplydash/inventory-engine/internal/domain"
)

// Aggregator is the read-side cost and KPI model. It never writes;
// everything derives from products and their latest snapshots.
type Aggregator struct {
	calc *Calculator
}

func NewAggregator(calc *Calculator) *Aggregator {
	return &Aggregator{calc: calc}
}

// AnnualHoldingCost is (EOQ/2 + safety stock) * holding cost per unit.
func (a *Aggregator) AnnualHoldingCost(eoqQty, safetyStock int, holdingCostPerUnit float64) decimal.Decimal {
	avgInventory := decimal.NewFromInt(int64(eoqQty)).
		Div(decimal.NewFromInt(2)).
		Add(decimal.NewFromInt(int64(safetyStock)))
	return avgInventory.Mul(decimal.NewFromFloat(holdingCostPerUnit)).Round(2)
}

// AnnualOrderingCost is (D/EOQ) * ordering cost. A zero EOQ is a
// caller error, not a division by zero.
func (a *Aggregator) AnnualOrderingCost(annualDemand float64, eoqQty int) (decimal.Decimal, error) {
	if eoqQty == 0 {
		return decimal.Zero, domain.InvalidParameterf("eoq must be > 0 for ordering cost")
	}

	return decimal.NewFromFloat(annualDemand).
		Div(decimal.NewFromInt(int64(eoqQty))).
		Mul(decimal.NewFromFloat(a.calc.Params().OrderingCost)).
		Round(2), nil
}

// ProductCost computes the annual cost breakdown of one product from
// its latest snapshot.
func (a *Aggregator) ProductCost(p domain.Product, snap domain.InventorySnapshot) (domain.ProductCost, error) {
	holding := a.AnnualHoldingCost(snap.EOQQty, snap.SafetyStock, p.HoldingCostPerUnit())
	ordering, err := a.AnnualOrderingCost(p.AnnualDemand, snap.EOQQty)
	if err != nil {
		return domain.ProductCost{}, err
	}

	excessCost := decimal.NewFromInt(int64(snap.ExcessStock)).
		Mul(decimal.NewFromFloat(p.HoldingCostPerUnit())).
		Round(2)

	return domain.ProductCost{
		ProductID:          p.ID,
		ProductName:        p.Name,
		AnnualHoldingCost:  holding,
		AnnualOrderingCost: ordering,
		TotalCost:          holding.Add(ordering),
		ExcessStock:        snap.ExcessStock,
		ExcessHoldingCost:  excessCost,
	}, nil
}

// PortfolioKPIs aggregates the latest-snapshot set. Products whose
// cost breakdown fails (zero EOQ) still count toward status totals.
func (a *Aggregator) PortfolioKPIs(products []domain.Product, latest []domain.InventorySnapshot, now time.Time) domain.PortfolioKPIs {
	byProduct := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byProduct[p.ID] = p
	}

	kpis := domain.PortfolioKPIs{
		CountByStatus:   make(map[string]int),
		TotalExcessCost: decimal.Zero,
		TotalAnnualCost: decimal.Zero,
		GeneratedAt:     now,
	}

	var supplySum float64
	for _, snap := range latest {
		kpis.TotalProducts++
		kpis.CountByStatus[string(snap.AlertStatus)]++
		kpis.TotalExcessUnits += snap.ExcessStock
		supplySum += snap.DaysOfSupply

		p, ok := byProduct[snap.ProductID]
		if !ok {
			continue
		}
		cost, err := a.ProductCost(p, snap)
		if err != nil {
			continue
		}
		kpis.TotalExcessCost = kpis.TotalExcessCost.Add(cost.ExcessHoldingCost)
		kpis.TotalAnnualCost = kpis.TotalAnnualCost.Add(cost.TotalCost)
	}

	if kpis.TotalProducts > 0 {
		kpis.AvgDaysOfSupply = supplySum / float64(kpis.TotalProducts)
	}

	return kpis
}

// CostSavings compares the cost of ordering a fixed baseline quantity
// against the EOQ-optimized quantity for each product, with a TOTAL
// row appended.
func (a *Aggregator) CostSavings(products []domain.Product, baselineQty int) ([]domain.CostSaving, error) {
	if baselineQty <= 0 {
		return nil, domain.InvalidParameterf("baseline quantity must be > 0, got %d", baselineQty)
	}

	rows := make([]domain.CostSaving, 0, len(products)+1)
	totalBefore := decimal.Zero
	totalAfter := decimal.Zero

	for _, p := range products {
		plan, err := a.calc.PlanFor(p)
		if err != nil {
			return nil, err
		}

		before, err := a.totalCostAtQty(p, baselineQty, plan.SafetyStock)
		if err != nil {
			return nil, err
		}
		after, err := a.totalCostAtQty(p, plan.EOQQty, plan.SafetyStock)
		if err != nil {
			return nil, err
		}

		rows = append(rows, savingRow(p.ID, p.Name, before, after))
		totalBefore = totalBefore.Add(before)
		totalAfter = totalAfter.Add(after)
	}

	rows = append(rows, savingRow(0, "TOTAL", totalBefore, totalAfter))
	return rows, nil
}

func (a *Aggregator) totalCostAtQty(p domain.Product, orderQty, safetyStock int) (decimal.Decimal, error) {
	holding := a.AnnualHoldingCost(orderQty, safetyStock, p.HoldingCostPerUnit())
	ordering, err := a.AnnualOrderingCost(p.AnnualDemand, orderQty)
	if err != nil {
		return decimal.Zero, err
	}
	return holding.Add(ordering), nil
}

func savingRow(id int64, name string, before, after decimal.Decimal) domain.CostSaving {
	saving := before.Sub(after)
	pct := 0.0
	if before.IsPositive() {
		pct, _ = saving.Div(before).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	}

	return domain.CostSaving{
		ProductID:  id,
		Product:    name,
		BeforeCost: before,
		AfterCost:  after,
		Saving:     saving.Round(2),
		SavingPct:  pct,
	}
}
