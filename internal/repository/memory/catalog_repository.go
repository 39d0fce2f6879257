// Package memory provides in-memory repository implementations used by
// tests and by tools that run without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/repository"
)

// CatalogRepository is an in-memory product/supplier store.
type CatalogRepository struct {
	mu        sync.RWMutex
	products  map[int64]domain.Product
	suppliers map[int64]domain.Supplier
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products:  make(map[int64]domain.Product),
		suppliers: make(map[int64]domain.Supplier),
	}
}

// Verify interface compliance
var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// AddProduct loads a product into the repository.
func (r *CatalogRepository) AddProduct(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

// AddSupplier loads a supplier into the repository.
func (r *CatalogRepository) AddSupplier(s domain.Supplier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppliers[s.ID] = s
}

func (r *CatalogRepository) GetProducts(ctx context.Context, ids []int64) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []domain.Product
	if len(ids) == 0 {
		for _, p := range r.products {
			products = append(products, p)
		}
	} else {
		for _, id := range ids {
			if p, ok := r.products[id]; ok {
				products = append(products, p)
			}
		}
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (r *CatalogRepository) GetSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var suppliers []domain.Supplier
	for _, s := range r.suppliers {
		suppliers = append(suppliers, s)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].ID < suppliers[j].ID })
	return suppliers, nil
}

func (r *CatalogRepository) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("supplier %d: %w", id, domain.ErrNotFound)
	}
	return &s, nil
}
