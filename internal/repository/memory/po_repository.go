package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

// PORepository is an in-memory purchase-order store. All mutations run
// under one lock, so concurrent receive attempts on the same PO see a
// single winner.
type PORepository struct {
	mu     sync.RWMutex
	orders map[string]domain.PurchaseOrder
}

func NewPORepository() *PORepository {
	return &PORepository{orders: make(map[string]domain.PurchaseOrder)}
}

// Verify interface compliance
var _ repository.PORepository = (*PORepository)(nil)

func (r *PORepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[po.PONumber]; ok {
		return fmt.Errorf("po %s: %w", po.PONumber, domain.ErrDuplicateIdentifier)
	}

	now := time.Now()
	po.CreatedAt = now
	po.UpdatedAt = now
	r.orders[po.PONumber] = *po
	return nil
}

func (r *PORepository) GetByNumber(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	po, ok := r.orders[poNumber]
	if !ok {
		return nil, fmt.Errorf("po %s: %w", poNumber, domain.ErrNotFound)
	}
	return &po, nil
}

func (r *PORepository) Transition(ctx context.Context, poNumber string, from, to domain.POStatus, actualDate *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	po, ok := r.orders[poNumber]
	if !ok {
		return fmt.Errorf("po %s: %w", poNumber, domain.ErrNotFound)
	}
	if po.Status != from {
		return fmt.Errorf("po %s is %s, not %s: %w", poNumber, po.Status, from, domain.ErrInvalidTransition)
	}

	po.Status = to
	if actualDate != nil {
		d := *actualDate
		po.ActualDate = &d
	}
	po.UpdatedAt = time.Now()
	r.orders[poNumber] = po
	return nil
}

func (r *PORepository) List(ctx context.Context, status domain.POStatus) ([]domain.PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.PurchaseOrder
	for _, po := range r.orders {
		if status == "" || po.Status == status {
			out = append(out, po)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PONumber < out[j].PONumber })
	return out, nil
}

func (r *PORepository) ReceivedQuantity(ctx context.Context, productID int64, date time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, po := range r.orders {
		if po.Status != domain.POReceived || po.ProductID != productID || po.ActualDate == nil {
			continue
		}
		if sameDay(*po.ActualDate, date) {
			total += po.Quantity
		}
	}
	return total, nil
}

func (r *PORepository) LastSequence(ctx context.Context, year int) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := fmt.Sprintf("PO-%d-", year)
	var last int64
	for number := range r.orders {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		seq, err := strconv.ParseInt(strings.TrimPrefix(number, prefix), 10, 64)
		if err != nil {
			continue
		}
		if seq > last {
			last = seq
		}
	}
	return last, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
