// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product holds the per-product parameters the optimization runs on.
// Immutable within a roll-forward run; changed only by explicit updates.
type Product struct {
	ID                  int64     `json:"id" db:"id"`
	Code                string    `json:"code" db:"code"`
	Name                string    `json:"name" db:"name"`
	UnitCost            float64   `json:"unit_cost" db:"unit_cost"`
	HoldingCostPct      float64   `json:"holding_cost_pct" db:"holding_cost_pct"`
	AnnualDemand        float64   `json:"annual_demand" db:"annual_demand"`
	DemandStdDev        float64   `json:"demand_std_dev" db:"demand_std_dev"`
	LeadTimeDays        int       `json:"lead_time_days" db:"lead_time_days"`
	PreferredSupplierID int64     `json:"preferred_supplier_id" db:"preferred_supplier_id"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// HoldingCostPerUnit is unit cost times the holding fraction.
func (p Product) HoldingCostPerUnit() float64 {
	return p.UnitCost * p.HoldingCostPct
}

// Supplier represents a supplier and its delivery performance.
type Supplier struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	LeadTimeDays int       `json:"lead_time_days" db:"lead_time_days"`
	OnTimeRate   float64   `json:"on_time_rate" db:"on_time_rate"`
	Rating       float64   `json:"rating" db:"rating"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// InventorySnapshot is one row of the append-only snapshot log,
// keyed by (snapshot_date, product_id). Never updated in place.
type InventorySnapshot struct {
	ID              int64       `json:"id" db:"id"`
	SnapshotDate    time.Time   `json:"snapshot_date" db:"snapshot_date"`
	ProductID       int64       `json:"product_id" db:"product_id"`
	CurrentStock    int         `json:"current_stock" db:"current_stock"`
	EOQQty          int         `json:"eoq_qty" db:"eoq_qty"`
	SafetyStock     int         `json:"safety_stock" db:"safety_stock"`
	ReorderPoint    int         `json:"reorder_point" db:"reorder_point"`
	DailyDemand     float64     `json:"daily_demand" db:"daily_demand"`
	LeadTimeDays    int         `json:"lead_time_days" db:"lead_time_days"`
	DaysOfSupply    float64     `json:"days_of_supply" db:"days_of_supply"`
	ExcessStock     int         `json:"excess_stock" db:"excess_stock"`
	StockoutRiskPct float64     `json:"stockout_risk_pct" db:"stockout_risk_pct"`
	AlertStatus     AlertStatus `json:"alert_status" db:"alert_status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// PurchaseOrder is a single order tracked through the PO lifecycle.
// Owned exclusively by the order service; snapshot code only reads
// aggregated receipt quantities.
type PurchaseOrder struct {
	PONumber     string     `json:"po_number" db:"po_number"`
	ProductID    int64      `json:"product_id" db:"product_id"`
	SupplierID   int64      `json:"supplier_id" db:"supplier_id"`
	OrderDate    time.Time  `json:"order_date" db:"order_date"`
	ExpectedDate time.Time  `json:"expected_date" db:"expected_date"`
	ActualDate   *time.Time `json:"actual_date,omitempty" db:"actual_date"`
	Quantity     int        `json:"quantity" db:"quantity"`
	UnitCost     float64    `json:"unit_cost" db:"unit_cost"`
	Status       POStatus   `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// SalesRecord is one day of sales for a product. Append-only, supplied
// by the surrounding system, never written by the engine.
type SalesRecord struct {
	ID        int64     `json:"id" db:"id"`
	SaleDate  time.Time `json:"sale_date" db:"sale_date"`
	ProductID int64     `json:"product_id" db:"product_id"`
	UnitsSold int       `json:"units_sold" db:"units_sold"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
}

// ProductCost is the per-product annual cost breakdown.
type ProductCost struct {
	ProductID          int64           `json:"product_id"`
	ProductName        string          `json:"product_name"`
	AnnualHoldingCost  decimal.Decimal `json:"annual_holding_cost"`
	AnnualOrderingCost decimal.Decimal `json:"annual_ordering_cost"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	ExcessStock        int             `json:"excess_stock"`
	ExcessHoldingCost  decimal.Decimal `json:"excess_holding_cost"`
}

// PortfolioKPIs aggregates the latest snapshot per product.
type PortfolioKPIs struct {
	TotalProducts    int             `json:"total_products"`
	CountByStatus    map[string]int  `json:"count_by_status"`
	AvgDaysOfSupply  float64         `json:"avg_days_of_supply"`
	TotalExcessUnits int             `json:"total_excess_units"`
	TotalExcessCost  decimal.Decimal `json:"total_excess_cost"`
	TotalAnnualCost  decimal.Decimal `json:"total_annual_cost"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// Alert is one row of the alert feed: a non-healthy product with its
// recommended action, ordered by priority then stockout risk descending.
type Alert struct {
	ProductID       int64       `json:"product_id"`
	ProductName     string      `json:"product_name"`
	CurrentStock    int         `json:"current_stock"`
	SafetyStock     int         `json:"safety_stock"`
	ReorderPoint    int         `json:"reorder_point"`
	EOQQty          int         `json:"eoq_qty"`
	DaysOfSupply    float64     `json:"days_of_supply"`
	StockoutRiskPct float64     `json:"stockout_risk_pct"`
	Status          AlertStatus `json:"status"`
	Priority        int         `json:"priority"`
	Action          string      `json:"action"`
	GeneratedAt     time.Time   `json:"generated_at"`
}

// CostSaving compares total annual cost at a fixed baseline order
// quantity against the EOQ-optimized cost.
type CostSaving struct {
	ProductID  int64           `json:"product_id"`
	Product    string          `json:"product"`
	BeforeCost decimal.Decimal `json:"before_cost"`
	AfterCost  decimal.Decimal `json:"after_cost"`
	Saving     decimal.Decimal `json:"saving"`
	SavingPct  float64         `json:"saving_pct"`
}
