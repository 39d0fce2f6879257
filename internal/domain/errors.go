package domain

import (
	"errors"
	"fmt"
	"time"
)

// Failure taxonomy. All business-rule failures cross component
// boundaries as wrapped instances of these sentinels, matchable with
// errors.Is. None of them is retried automatically.
var (
	// ErrInvalidParameter marks malformed or out-of-range numeric input.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrAlreadyExists marks an idempotent no-op, safe for callers to ignore.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidTransition marks a purchase-order state-machine violation.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrDuplicateIdentifier marks a PO number collision; retry with a
	// regenerated identifier.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
)

// InvalidParameterf wraps ErrInvalidParameter with detail.
func InvalidParameterf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// StockoutEvent records a day where sales exceeded available stock and
// the roll-forward clamped the level to zero. Informational, not an error.
type StockoutEvent struct {
	ProductID    int64     `json:"product_id"`
	SnapshotDate time.Time `json:"snapshot_date"`
	PriorStock   int       `json:"prior_stock"`
	Receipts     int       `json:"receipts"`
	Sales        int       `json:"sales"`
	Shortfall    int       `json:"shortfall"`
}

func (e StockoutEvent) String() string {
	return fmt.Sprintf("stockout: product %d on %s short by %d units",
		e.ProductID, e.SnapshotDate.Format("2006-01-02"), e.Shortfall)
}
