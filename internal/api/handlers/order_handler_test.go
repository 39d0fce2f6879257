package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/engine"
	"github.com/supplydash/inventory-engine/internal/repository/memory"
	"github.com/supplydash/inventory-engine/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.PORepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := memory.NewCatalogRepository()
	catalog.AddSupplier(domain.Supplier{ID: 1, Name: "Acme Components", LeadTimeDays: 14})
	catalog.AddProduct(domain.Product{
		ID:                  1,
		Code:                "ELEC-001",
		Name:                "Industrial Controller",
		UnitCost:            4500,
		HoldingCostPct:      0.20,
		AnnualDemand:        6060,
		DemandStdDev:        220,
		LeadTimeDays:        14,
		PreferredSupplierID: 1,
	})

	orders := memory.NewPORepository()
	calc := engine.NewCalculator(engine.DefaultParams)
	svc := service.NewOrderService(orders, catalog, memory.NewSnapshotRepository(), calc, engine.NewPONumberSource(2026, 0))

	handler := NewOrderHandler(svc)
	router := gin.New()
	router.POST("/orders", handler.PlaceOrder)
	router.GET("/orders", handler.ListOrders)
	router.GET("/orders/:po_number", handler.GetOrder)
	router.POST("/orders/:po_number/ship", handler.ShipOrder)
	router.POST("/orders/:po_number/receive", handler.ReceiveOrder)
	router.POST("/orders/:po_number/cancel", handler.CancelOrder)
	return router, orders
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/orders",
		`{"product_id": 1, "quantity": 200, "order_date": "2026-08-25"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body)
	}

	var po domain.PurchaseOrder
	if err := json.Unmarshal(w.Body.Bytes(), &po); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if po.PONumber != "PO-2026-0001" || po.Status != domain.POPending {
		t.Errorf("response = %+v, want PO-2026-0001 PENDING", po)
	}
}

func TestPlaceOrderEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing product", `{"quantity": 10}`, http.StatusBadRequest},
		{"bad date", `{"product_id": 1, "order_date": "25-08-2026"}`, http.StatusBadRequest},
		{"unknown product", `{"product_id": 99}`, http.StatusNotFound},
		{"negative quantity", `{"product_id": 1, "quantity": -5}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/orders", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body %s", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestOrderLifecycleEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/orders", `{"product_id": 1}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("place status = %d; body %s", w.Code, w.Body)
	}

	// Receive before ship conflicts with the state machine.
	w = doRequest(router, http.MethodPost, "/orders/PO-2026-0001/receive", `{"actual_date": "2026-09-08"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("premature receive status = %d, want 409", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/orders/PO-2026-0001/ship", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ship status = %d; body %s", w.Code, w.Body)
	}

	w = doRequest(router, http.MethodPost, "/orders/PO-2026-0001/receive", `{"actual_date": "2026-09-08"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("receive status = %d; body %s", w.Code, w.Body)
	}

	var po domain.PurchaseOrder
	if err := json.Unmarshal(w.Body.Bytes(), &po); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if po.Status != domain.POReceived || po.ActualDate == nil {
		t.Errorf("received PO = %+v, want RECEIVED with actual date", po)
	}

	// Terminal: cancel now conflicts.
	w = doRequest(router, http.MethodPost, "/orders/PO-2026-0001/cancel", "")
	if w.Code != http.StatusConflict {
		t.Errorf("cancel after receive status = %d, want 409", w.Code)
	}
}

func TestGetAndListOrderEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(router, http.MethodPost, "/orders", `{"product_id": 1}`)
	doRequest(router, http.MethodPost, "/orders", `{"product_id": 1}`)
	doRequest(router, http.MethodPost, "/orders/PO-2026-0002/ship", "")

	w := doRequest(router, http.MethodGet, "/orders/PO-2026-0001", "")
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", w.Code)
	}
	w = doRequest(router, http.MethodGet, "/orders/PO-2026-9999", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get missing status = %d, want 404", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/orders?status=pending", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var orders []domain.PurchaseOrder
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(orders) != 1 || orders[0].PONumber != "PO-2026-0001" {
		t.Errorf("list pending = %+v, want just PO-2026-0001", orders)
	}

	w = doRequest(router, http.MethodGet, "/orders?status=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("list bogus status = %d, want 400", w.Code)
	}
}
