package memory

import (
	"context"
	"sync"
	"time"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

// SalesRepository is an in-memory append-only sales stream.
type SalesRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.SalesRecord
}

func NewSalesRepository() *SalesRepository {
	return &SalesRepository{}
}

// Verify interface compliance
var _ repository.SalesRepository = (*SalesRepository)(nil)

func (r *SalesRepository) Insert(ctx context.Context, rec *domain.SalesRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	r.rows = append(r.rows, *rec)
	return nil
}

func (r *SalesRepository) UnitsSold(ctx context.Context, productID int64, date time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, rec := range r.rows {
		if rec.ProductID == productID && sameDay(rec.SaleDate, date) {
			total += rec.UnitsSold
		}
	}
	return total, nil
}
