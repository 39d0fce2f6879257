package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/supplydash/inventory-engine/internal/cache"
	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/engine"
	"github.com/supplydash/inventory-engine/internal/repository/memory"
	"github.com/supplydash/inventory-engine/internal/service"
)

func newSnapshotRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := memory.NewCatalogRepository()
	catalog.AddProduct(domain.Product{
		ID:             1,
		Code:           "ELEC-001",
		Name:           "Industrial Controller",
		UnitCost:       4500,
		HoldingCostPct: 0.20,
		AnnualDemand:   6060,
		DemandStdDev:   220,
		LeadTimeDays:   14,
	})

	snapshots := memory.NewSnapshotRepository()
	calc := engine.NewCalculator(engine.DefaultParams)
	rollForward := engine.NewRollForward(catalog, snapshots, memory.NewPORepository(), memory.NewSalesRepository(), calc)
	svc := service.NewSnapshotService(rollForward, catalog, snapshots, engine.NewAggregator(calc), cache.NewNoopKPICache(), 1000)

	handler := NewSnapshotHandler(svc)
	router := gin.New()
	router.POST("/rollforward", handler.RunRollForward)
	router.GET("/snapshots/latest", handler.GetLatestSnapshots)
	router.GET("/snapshots/:date", handler.GetSnapshotsByDate)
	router.GET("/reports/alerts", handler.GetAlerts)
	router.GET("/reports/kpis", handler.GetKPIs)
	router.GET("/reports/savings", handler.GetSavings)
	return router
}

func TestRunRollForwardEndpoint(t *testing.T) {
	router := newSnapshotRouter(t)

	w := doRequest(router, http.MethodPost, "/rollforward", `{"target_date": "2026-08-25"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body)
	}

	var result engine.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Created != 1 || result.RunID == "" {
		t.Errorf("result = created %d run_id %q, want 1 created with a run id", result.Created, result.RunID)
	}

	w = doRequest(router, http.MethodGet, "/snapshots/2026-08-25", "")
	if w.Code != http.StatusOK {
		t.Fatalf("by-date status = %d", w.Code)
	}
	var snaps []domain.InventorySnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snaps); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("got %d snapshots for the run date, want 1", len(snaps))
	}
}

func TestRunRollForwardEndpointValidation(t *testing.T) {
	router := newSnapshotRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing date", `{}`},
		{"bad date format", `{"target_date": "08/25/2026"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/rollforward", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body %s", w.Code, w.Body)
			}
		})
	}
}

func TestGetSavingsEndpoint(t *testing.T) {
	router := newSnapshotRouter(t)

	w := doRequest(router, http.MethodGet, "/reports/savings?baseline_qty=500", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body)
	}

	var rows []domain.CostSaving
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(rows) != 2 || rows[1].Product != "TOTAL" {
		t.Errorf("rows = %+v, want product row plus TOTAL", rows)
	}

	// Absent baseline falls back to the configured default.
	w = doRequest(router, http.MethodGet, "/reports/savings", "")
	if w.Code != http.StatusOK {
		t.Errorf("default baseline status = %d, want 200", w.Code)
	}
}

func TestGetSavingsEndpointRejectsBadBaseline(t *testing.T) {
	router := newSnapshotRouter(t)

	for _, qty := range []string{"abc", "-5", "0", "1.5"} {
		w := doRequest(router, http.MethodGet, "/reports/savings?baseline_qty="+qty, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("baseline_qty=%s status = %d, want 400", qty, w.Code)
		}
	}
}

func TestGetSnapshotsByDateValidation(t *testing.T) {
	router := newSnapshotRouter(t)

	w := doRequest(router, http.MethodGet, "/snapshots/not-a-date", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
