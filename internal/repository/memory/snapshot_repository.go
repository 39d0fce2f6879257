package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

// SnapshotRepository is an in-memory append-only snapshot log.
type SnapshotRepository struct {
	mu     sync.RWMutex
	nextID int64
	byKey  map[string]int // key -> index into rows
	rows   []domain.InventorySnapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{byKey: make(map[string]int)}
}

// Verify interface compliance
var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

func snapshotKey(productID int64, date time.Time) string {
	return fmt.Sprintf("%d|%s", productID, date.Format("2006-01-02"))
}

func (r *SnapshotRepository) Insert(ctx context.Context, snap *domain.InventorySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := snapshotKey(snap.ProductID, snap.SnapshotDate)
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("snapshot for product %d on %s: %w",
			snap.ProductID, snap.SnapshotDate.Format("2006-01-02"), domain.ErrAlreadyExists)
	}

	r.nextID++
	snap.ID = r.nextID
	snap.CreatedAt = time.Now()
	r.rows = append(r.rows, *snap)
	r.byKey[key] = len(r.rows) - 1
	return nil
}

func (r *SnapshotRepository) GetPrior(ctx context.Context, productID int64, before time.Time) (*domain.InventorySnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var prior *domain.InventorySnapshot
	for i := range r.rows {
		snap := r.rows[i]
		if snap.ProductID != productID || !snap.SnapshotDate.Before(before) {
			continue
		}
		if prior == nil || snap.SnapshotDate.After(prior.SnapshotDate) {
			copied := snap
			prior = &copied
		}
	}
	return prior, nil
}

func (r *SnapshotRepository) GetLatest(ctx context.Context) ([]domain.InventorySnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[int64]domain.InventorySnapshot)
	for _, snap := range r.rows {
		cur, ok := latest[snap.ProductID]
		if !ok || snap.SnapshotDate.After(cur.SnapshotDate) {
			latest[snap.ProductID] = snap
		}
	}

	out := make([]domain.InventorySnapshot, 0, len(latest))
	for _, snap := range latest {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *SnapshotRepository) GetByDate(ctx context.Context, date time.Time) ([]domain.InventorySnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.InventorySnapshot
	for _, snap := range r.rows {
		if snap.SnapshotDate.Equal(date) {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// Count returns the number of stored snapshots.
func (r *SnapshotRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
