package engine

import (
	"sort"
	"time"

	"github.com/supplydash/inventory-engine/internal/domain"
)

// Classify maps a stock level against its thresholds. The checks run
// in strict priority order; thresholds can overlap numerically, so the
// first match wins.
func Classify(currentStock, safetyStock, reorderPoint, eoqQty int) domain.AlertStatus {
	switch {
	case currentStock < safetyStock:
		return domain.AlertCritical
	case currentStock < reorderPoint:
		return domain.AlertReorder
	case currentStock > reorderPoint+eoqQty:
		return domain.AlertExcess
	default:
		return domain.AlertHealthy
	}
}

// StockoutRiskPct is the percentage gap below the reorder point, used
// as a stockout-risk proxy. Zero when the reorder point is zero.
func StockoutRiskPct(currentStock, reorderPoint int) float64 {
	if reorderPoint <= 0 {
		return 0
	}

	risk := (1 - float64(currentStock)/float64(reorderPoint)) * 100
	if risk < 0 {
		return 0
	}
	return risk
}

// ExcessStock is stock above reorder point plus one order quantity.
func ExcessStock(currentStock, reorderPoint, eoqQty int) int {
	excess := currentStock - (reorderPoint + eoqQty)
	if excess < 0 {
		return 0
	}
	return excess
}

// BuildAlertFeed turns the latest snapshots into the alert feed:
// non-healthy products only, ordered by ascending priority, then
// descending stockout risk.
func BuildAlertFeed(snapshots []domain.InventorySnapshot, products map[int64]domain.Product, now time.Time) []domain.Alert {
	alerts := make([]domain.Alert, 0)
	for _, snap := range snapshots {
		if snap.AlertStatus == domain.AlertHealthy {
			continue
		}

		name := ""
		if p, ok := products[snap.ProductID]; ok {
			name = p.Name
		}

		alerts = append(alerts, domain.Alert{
			ProductID:       snap.ProductID,
			ProductName:     name,
			CurrentStock:    snap.CurrentStock,
			SafetyStock:     snap.SafetyStock,
			ReorderPoint:    snap.ReorderPoint,
			EOQQty:          snap.EOQQty,
			DaysOfSupply:    snap.DaysOfSupply,
			StockoutRiskPct: snap.StockoutRiskPct,
			Status:          snap.AlertStatus,
			Priority:        snap.AlertStatus.Priority(),
			Action:          snap.AlertStatus.Action(),
			GeneratedAt:     now,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Priority != alerts[j].Priority {
			return alerts[i].Priority < alerts[j].Priority
		}
		return alerts[i].StockoutRiskPct > alerts[j].StockoutRiskPct
	})

	return alerts
}
