// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/supplydash/inventory-engine/internal/domain"
)

// CatalogRepository reads the immutable parameter tables.
type CatalogRepository interface {
	GetProducts(ctx context.Context, ids []int64) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)
}

// SnapshotRepository owns the append-only snapshot log. Insert must be
// atomic and exclusive per (date, product): a second insert for the
// same key fails with domain.ErrAlreadyExists, never an overwrite.
type SnapshotRepository interface {
	// GetPrior returns the snapshot at the latest date strictly before
	// the given date, or nil when the product has no history.
	GetPrior(ctx context.Context, productID int64, before time.Time) (*domain.InventorySnapshot, error)
	Insert(ctx context.Context, snap *domain.InventorySnapshot) error
	// GetLatest returns the newest snapshot per product.
	GetLatest(ctx context.Context) ([]domain.InventorySnapshot, error)
	GetByDate(ctx context.Context, date time.Time) ([]domain.InventorySnapshot, error)
}

// PORepository owns purchase-order rows. Transition enforces the
// from-status predicate so that concurrent writers cannot both win.
type PORepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	GetByNumber(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error)
	// Transition moves a PO from one status to another, recording the
	// actual date for receipts. Fails with domain.ErrInvalidTransition
	// when the current status is not the expected one.
	Transition(ctx context.Context, poNumber string, from, to domain.POStatus, actualDate *time.Time) error
	List(ctx context.Context, status domain.POStatus) ([]domain.PurchaseOrder, error)
	// ReceivedQuantity sums quantities of orders received on a date for
	// one product.
	ReceivedQuantity(ctx context.Context, productID int64, date time.Time) (int, error)
	// LastSequence returns the highest PO sequence issued for a year,
	// used to seed the in-process counter.
	LastSequence(ctx context.Context, year int) (int64, error)
}

// SalesRepository reads the externally supplied sales stream.
type SalesRepository interface {
	UnitsSold(ctx context.Context, productID int64, date time.Time) (int, error)
	Insert(ctx context.Context, rec *domain.SalesRecord) error
}
