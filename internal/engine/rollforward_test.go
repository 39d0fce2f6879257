package engine

import (
	"context"
	"testing"
	"time"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository/memory"
)

type rollForwardFixture struct {
	engine    *RollForward
	catalog   *memory.CatalogRepository
	snapshots *memory.SnapshotRepository
	orders    *memory.PORepository
	sales     *memory.SalesRepository
}

func newRollForwardFixture() *rollForwardFixture {
	f := &rollForwardFixture{
		catalog:   memory.NewCatalogRepository(),
		snapshots: memory.NewSnapshotRepository(),
		orders:    memory.NewPORepository(),
		sales:     memory.NewSalesRepository(),
	}
	f.engine = NewRollForward(f.catalog, f.snapshots, f.orders, f.sales, NewCalculator(DefaultParams))
	return f
}

func testProduct(id int64) domain.Product {
	return domain.Product{
		ID:             id,
		Code:           "ELEC-001",
		Name:           "Industrial Controller",
		UnitCost:       4500,
		HoldingCostPct: 0.20,
		AnnualDemand:   6060,
		DemandStdDev:   220,
		LeadTimeDays:   14,
	}
}

func mustSeedSnapshot(t *testing.T, f *rollForwardFixture, productID int64, date time.Time, stock int) {
	t.Helper()
	err := f.snapshots.Insert(context.Background(), &domain.InventorySnapshot{
		SnapshotDate: date,
		ProductID:    productID,
		CurrentStock: stock,
	})
	if err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
}

func mustSeedSale(t *testing.T, f *rollForwardFixture, productID int64, date time.Time, units int) {
	t.Helper()
	err := f.sales.Insert(context.Background(), &domain.SalesRecord{
		SaleDate:  date,
		ProductID: productID,
		UnitsSold: units,
	})
	if err != nil {
		t.Fatalf("seeding sale: %v", err)
	}
}

func mustSeedReceivedPO(t *testing.T, f *rollForwardFixture, poNumber string, productID int64, date time.Time, qty int) {
	t.Helper()
	err := f.orders.Create(context.Background(), &domain.PurchaseOrder{
		PONumber:   poNumber,
		ProductID:  productID,
		SupplierID: 1,
		OrderDate:  date.AddDate(0, 0, -14),
		Quantity:   qty,
		Status:     domain.POReceived,
		ActualDate: &date,
	})
	if err != nil {
		t.Fatalf("seeding received PO: %v", err)
	}
}

func TestRunColdStart(t *testing.T) {
	f := newRollForwardFixture()
	f.catalog.AddProduct(testProduct(1))

	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	mustSeedSale(t, f, 1, date, 10)

	result, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.Created != 1 || result.Failed != 0 || result.Skipped != 0 {
		t.Fatalf("created/skipped/failed = %d/%d/%d, want 1/0/0",
			result.Created, result.Skipped, result.Failed)
	}

	snap := result.Outcomes[0].Snapshot
	if snap == nil {
		t.Fatal("expected a snapshot in the outcome")
	}
	// No prior snapshot means prior stock 0: 0 + 0 - 10 clamps to 0.
	if snap.CurrentStock != 0 {
		t.Errorf("CurrentStock = %d, want 0", snap.CurrentStock)
	}
	if result.Outcomes[0].Stockout == nil {
		t.Error("expected a stockout event on cold-start oversell")
	}
	if snap.AlertStatus != domain.AlertCritical {
		t.Errorf("AlertStatus = %s, want CRITICAL", snap.AlertStatus)
	}
}

func TestRunStockEquation(t *testing.T) {
	f := newRollForwardFixture()
	f.catalog.AddProduct(testProduct(1))

	prior := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	mustSeedSnapshot(t, f, 1, prior, 600)
	mustSeedReceivedPO(t, f, "PO-2026-0001", 1, date, 183)
	mustSeedSale(t, f, 1, date, 40)

	result, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	snap := result.Outcomes[0].Snapshot
	if snap == nil {
		t.Fatalf("outcome has no snapshot: %+v", result.Outcomes[0])
	}
	if want := 600 + 183 - 40; snap.CurrentStock != want {
		t.Errorf("CurrentStock = %d, want %d", snap.CurrentStock, want)
	}
	if snap.EOQQty != 183 || snap.SafetyStock != 248 || snap.ReorderPoint != 587 {
		t.Errorf("plan = EOQ %d / SS %d / ROP %d, want 183/248/587",
			snap.EOQQty, snap.SafetyStock, snap.ReorderPoint)
	}
	if snap.AlertStatus != domain.AlertHealthy {
		t.Errorf("AlertStatus = %s, want HEALTHY", snap.AlertStatus)
	}
	if result.Outcomes[0].Stockout != nil {
		t.Error("unexpected stockout event")
	}
}

func TestRunStockoutClamp(t *testing.T) {
	f := newRollForwardFixture()
	f.catalog.AddProduct(testProduct(1))

	prior := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	mustSeedSnapshot(t, f, 1, prior, 30)
	mustSeedSale(t, f, 1, date, 75)

	result, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	out := result.Outcomes[0]
	if out.Snapshot == nil || out.Snapshot.CurrentStock != 0 {
		t.Fatalf("expected clamped snapshot at 0, got %+v", out.Snapshot)
	}
	if out.Stockout == nil {
		t.Fatal("expected a stockout event")
	}
	if out.Stockout.Shortfall != 45 {
		t.Errorf("Shortfall = %d, want 45", out.Stockout.Shortfall)
	}
	if out.Stockout.PriorStock != 30 || out.Stockout.Sales != 75 {
		t.Errorf("event = %+v, want prior 30 sales 75", out.Stockout)
	}
	if len(result.Stockouts) != 1 {
		t.Errorf("run recorded %d stockouts, want 1", len(result.Stockouts))
	}
}

func TestRunIdempotent(t *testing.T) {
	f := newRollForwardFixture()
	f.catalog.AddProduct(testProduct(1))

	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	first, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	if first.Created != 1 {
		t.Fatalf("first run created %d, want 1", first.Created)
	}

	second, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if second.Created != 0 || second.Skipped != 1 {
		t.Errorf("second run created/skipped = %d/%d, want 0/1", second.Created, second.Skipped)
	}
	if f.snapshots.Count() != 1 {
		t.Errorf("snapshot count = %d, want 1", f.snapshots.Count())
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	f := newRollForwardFixture()
	f.catalog.AddProduct(testProduct(1))
	// Product 2 has no holding cost, so its plan fails.
	broken := testProduct(2)
	broken.HoldingCostPct = 0
	f.catalog.AddProduct(broken)
	f.catalog.AddProduct(testProduct(3))

	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	result, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if result.Created != 2 || result.Failed != 1 {
		t.Fatalf("created/failed = %d/%d, want 2/1", result.Created, result.Failed)
	}
	for _, out := range result.Outcomes {
		if out.ProductID == 2 {
			if out.Err == nil || out.ErrMsg == "" {
				t.Errorf("expected recorded error on product 2, got %+v", out)
			}
		} else if out.Snapshot == nil {
			t.Errorf("product %d missing snapshot", out.ProductID)
		}
	}
}

func TestRunScope(t *testing.T) {
	f := newRollForwardFixture()
	f.catalog.AddProduct(testProduct(1))
	f.catalog.AddProduct(testProduct(2))
	f.catalog.AddProduct(testProduct(3))

	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	result, err := f.engine.Run(context.Background(), date, []int64{1, 3})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(result.Outcomes))
	}
	if result.Outcomes[0].ProductID != 1 || result.Outcomes[1].ProductID != 3 {
		t.Errorf("scoped run touched products %d, %d; want 1, 3",
			result.Outcomes[0].ProductID, result.Outcomes[1].ProductID)
	}
}

func TestRunTruncatesDate(t *testing.T) {
	f := newRollForwardFixture()
	f.catalog.AddProduct(testProduct(1))

	date := time.Date(2026, 8, 25, 17, 42, 3, 0, time.UTC)

	result, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	if !result.Date.Equal(want) {
		t.Errorf("run date = %v, want %v", result.Date, want)
	}
	if snap := result.Outcomes[0].Snapshot; !snap.SnapshotDate.Equal(want) {
		t.Errorf("snapshot date = %v, want %v", snap.SnapshotDate, want)
	}
}

func TestRunManyProductsParallel(t *testing.T) {
	f := newRollForwardFixture()
	const n = 40
	for i := int64(1); i <= n; i++ {
		f.catalog.AddProduct(testProduct(i))
	}
	f.engine.SetWorkerCount(8)

	date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	result, err := f.engine.Run(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Created != n {
		t.Fatalf("created = %d, want %d", result.Created, n)
	}
	for i, out := range result.Outcomes {
		if out.ProductID != int64(i+1) {
			t.Fatalf("outcomes out of order at %d: product %d", i, out.ProductID)
		}
	}
}

func TestDaysOfSupply(t *testing.T) {
	if got := daysOfSupply(242, 24.2); got < 9.99 || got > 10.01 {
		t.Errorf("daysOfSupply(242, 24.2) = %v, want 10", got)
	}
	if got := daysOfSupply(100, 0); got != 0 {
		t.Errorf("daysOfSupply with zero demand = %v, want 0", got)
	}
}
