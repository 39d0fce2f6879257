package engine

import (
	"math"

	"github.com/supplydash/inventory-engine/internal/domain"
)

// Params are the optimization constants shared by every calculation.
type Params struct {
	OrderingCost    float64
	ZScore          float64
	WorkingDays     int
	DefaultLeadTime int
}

// DefaultParams matches a 95% service level with 250 working days.
var DefaultParams = Params{
	OrderingCost:    2500,
	ZScore:          1.65,
	WorkingDays:     250,
	DefaultLeadTime: 14,
}

func (p Params) withDefaults() Params {
	if p.OrderingCost == 0 {
		p.OrderingCost = DefaultParams.OrderingCost
	}
	if p.ZScore == 0 {
		p.ZScore = DefaultParams.ZScore
	}
	if p.WorkingDays == 0 {
		p.WorkingDays = DefaultParams.WorkingDays
	}
	if p.DefaultLeadTime == 0 {
		p.DefaultLeadTime = DefaultParams.DefaultLeadTime
	}
	return p
}

// Calculator derives order quantity, safety stock and reorder point
// from product parameters. Pure and deterministic.
type Calculator struct {
	params Params
}

// NewCalculator creates a calculator with the given constants; zero
// fields fall back to the defaults.
func NewCalculator(params Params) *Calculator {
	return &Calculator{params: params.withDefaults()}
}

// Params returns the constants the calculator runs with.
func (c *Calculator) Params() Params {
	return c.params
}

// EOQ computes round(sqrt(2*D*S/H)) for annual demand D, ordering cost
// S and holding cost per unit H.
func (c *Calculator) EOQ(annualDemand, holdingCostPerUnit float64) (int, error) {
	if holdingCostPerUnit <= 0 {
		return 0, domain.InvalidParameterf("holding cost per unit must be > 0, got %v", holdingCostPerUnit)
	}
	if annualDemand < 0 {
		return 0, domain.InvalidParameterf("annual demand must be >= 0, got %v", annualDemand)
	}
	if c.params.OrderingCost < 0 {
		return 0, domain.InvalidParameterf("ordering cost must be >= 0, got %v", c.params.OrderingCost)
	}

	return roundHalfUp(math.Sqrt(2 * annualDemand * c.params.OrderingCost / holdingCostPerUnit)), nil
}

// SafetyStock computes round(z * sigma * sqrt(LT/30)).
func (c *Calculator) SafetyStock(demandStdDev float64, leadTimeDays int) (int, error) {
	if demandStdDev < 0 {
		return 0, domain.InvalidParameterf("demand std dev must be >= 0, got %v", demandStdDev)
	}
	if leadTimeDays < 0 {
		return 0, domain.InvalidParameterf("lead time must be >= 0, got %d", leadTimeDays)
	}

	leadTimeMonths := float64(leadTimeDays) / 30
	return roundHalfUp(c.params.ZScore * demandStdDev * math.Sqrt(leadTimeMonths)), nil
}

// ReorderPoint computes round((D/workingDays)*LT + safetyStock).
func (c *Calculator) ReorderPoint(annualDemand float64, leadTimeDays, safetyStock int) (int, error) {
	if annualDemand < 0 {
		return 0, domain.InvalidParameterf("annual demand must be >= 0, got %v", annualDemand)
	}
	if leadTimeDays < 0 {
		return 0, domain.InvalidParameterf("lead time must be >= 0, got %d", leadTimeDays)
	}

	daily := annualDemand / float64(c.params.WorkingDays)
	return roundHalfUp(daily*float64(leadTimeDays) + float64(safetyStock)), nil
}

// DailyDemand is annual demand spread over the working days.
func (c *Calculator) DailyDemand(annualDemand float64) float64 {
	return annualDemand / float64(c.params.WorkingDays)
}

// Plan is the full set of ordering parameters for one product.
type Plan struct {
	EOQQty       int
	SafetyStock  int
	ReorderPoint int
	DailyDemand  float64
	LeadTimeDays int
}

// PlanFor computes all ordering parameters for a product, falling back
// to the default lead time when the product carries none.
func (c *Calculator) PlanFor(p domain.Product) (Plan, error) {
	leadTime := p.LeadTimeDays
	if leadTime <= 0 {
		leadTime = c.params.DefaultLeadTime
	}

	eoq, err := c.EOQ(p.AnnualDemand, p.HoldingCostPerUnit())
	if err != nil {
		return Plan{}, err
	}

	ss, err := c.SafetyStock(p.DemandStdDev, leadTime)
	if err != nil {
		return Plan{}, err
	}

	rop, err := c.ReorderPoint(p.AnnualDemand, leadTime, ss)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		EOQQty:       eoq,
		SafetyStock:  ss,
		ReorderPoint: rop,
		DailyDemand:  c.DailyDemand(p.AnnualDemand),
		LeadTimeDays: leadTime,
	}, nil
}

// roundHalfUp rounds to the nearest integer with halves going up.
// Inputs here are never negative, but Floor(x+0.5) keeps the contract
// explicit either way.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
