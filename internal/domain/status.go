package domain

import "strings"

// AlertStatus classifies stock health for a snapshot.
type AlertStatus string

const (
	AlertCritical AlertStatus = "CRITICAL"
	AlertReorder  AlertStatus = "REORDER"
	AlertExcess   AlertStatus = "EXCESS"
	AlertHealthy  AlertStatus = "HEALTHY"
)

var alertPriorities = map[AlertStatus]int{
	AlertCritical: 1,
	AlertReorder:  2,
	AlertExcess:   3,
	AlertHealthy:  4,
}

var alertActions = map[AlertStatus]string{
	AlertCritical: "Place EMERGENCY order immediately",
	AlertReorder:  "Place standard replenishment order within 2 days",
	AlertExcess:   "Review excess units; consider promotion or markdown",
	AlertHealthy:  "No action required",
}

// Priority returns the numeric feed priority (CRITICAL=1 .. HEALTHY=4).
func (s AlertStatus) Priority() int {
	if p, ok := alertPriorities[s]; ok {
		return p
	}

	return len(alertPriorities)
}

// Action returns the fixed recommended-action message for a status.
func (s AlertStatus) Action() string {
	if a, ok := alertActions[s]; ok {
		return a
	}

	return alertActions[AlertHealthy]
}

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	POPending   POStatus = "PENDING"
	POInTransit POStatus = "IN_TRANSIT"
	POReceived  POStatus = "RECEIVED"
	POCancelled POStatus = "CANCELLED"
)

var poStatusCodes = map[string]POStatus{
	"pending":    POPending,
	"in_transit": POInTransit,
	"received":   POReceived,
	"cancelled":  POCancelled,
}

// ParsePOStatus returns the status for a given label (case-insensitive).
func ParsePOStatus(label string) (POStatus, bool) {
	status, ok := poStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// Terminal reports whether no further transitions are permitted.
func (s POStatus) Terminal() bool {
	return s == POReceived || s == POCancelled
}
