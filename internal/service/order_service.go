// internal/service/order_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/engine"
	"github.com/supplydash/inventory-engine/internal/repository"
)

// OrderService owns the purchase-order lifecycle. It is the only
// writer of PO records.
type OrderService struct {
	orders    repository.PORepository
	catalog   repository.CatalogRepository
	snapshots repository.SnapshotRepository
	calc      *engine.Calculator
	numbers   *engine.PONumberSource
}

func NewOrderService(
	orders repository.PORepository,
	catalog repository.CatalogRepository,
	snapshots repository.SnapshotRepository,
	calc *engine.Calculator,
	numbers *engine.PONumberSource,
) *OrderService {
	return &OrderService{
		orders:    orders,
		catalog:   catalog,
		snapshots: snapshots,
		calc:      calc,
		numbers:   numbers,
	}
}

// PlaceOrderInput describes a new order. SupplierID 0 falls back to
// the product's preferred supplier; Quantity 0 defaults to the current
// EOQ.
type PlaceOrderInput struct {
	ProductID  int64      `json:"product_id"`
	SupplierID int64      `json:"supplier_id"`
	Quantity   int        `json:"quantity"`
	OrderDate  *time.Time `json:"order_date,omitempty"`
}

// PlaceOrder creates a PENDING purchase order. The expected date is
// the order date plus the supplier's lead time. A PO number collision
// fails with ErrDuplicateIdentifier; the counter has already advanced,
// so the caller retries with a fresh number.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.PurchaseOrder, error) {
	product, err := s.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	supplierID := in.SupplierID
	if supplierID == 0 {
		supplierID = product.PreferredSupplierID
	}
	supplier, err := s.catalog.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	quantity := in.Quantity
	if quantity == 0 {
		quantity, err = s.currentEOQ(ctx, *product)
		if err != nil {
			return nil, err
		}
	}
	if quantity <= 0 {
		return nil, domain.InvalidParameterf("order quantity must be > 0, got %d", quantity)
	}

	orderDate := time.Now().UTC().Truncate(24 * time.Hour)
	if in.OrderDate != nil {
		orderDate = in.OrderDate.UTC().Truncate(24 * time.Hour)
	}

	po := &domain.PurchaseOrder{
		PONumber:     s.numbers.Next(),
		ProductID:    product.ID,
		SupplierID:   supplier.ID,
		OrderDate:    orderDate,
		ExpectedDate: orderDate.AddDate(0, 0, supplier.LeadTimeDays),
		Quantity:     quantity,
		UnitCost:     product.UnitCost,
		Status:       domain.POPending,
	}

	if err := s.orders.Create(ctx, po); err != nil {
		return nil, err
	}

	log.Info().
		Str("po_number", po.PONumber).
		Int64("product_id", po.ProductID).
		Int("quantity", po.Quantity).
		Time("expected", po.ExpectedDate).
		Msg("purchase order placed")

	return po, nil
}

// currentEOQ sizes an order from the latest snapshot, or directly from
// the product parameters when no snapshot exists yet.
func (s *OrderService) currentEOQ(ctx context.Context, product domain.Product) (int, error) {
	latest, err := s.snapshots.GetLatest(ctx)
	if err != nil {
		return 0, err
	}
	for _, snap := range latest {
		if snap.ProductID == product.ID {
			return snap.EOQQty, nil
		}
	}

	plan, err := s.calc.PlanFor(product)
	if err != nil {
		return 0, err
	}
	return plan.EOQQty, nil
}

// Ship confirms shipment: PENDING -> IN_TRANSIT.
func (s *OrderService) Ship(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	if err := s.orders.Transition(ctx, poNumber, domain.POPending, domain.POInTransit, nil); err != nil {
		return nil, err
	}

	log.Info().Str("po_number", poNumber).Msg("purchase order in transit")
	return s.orders.GetByNumber(ctx, poNumber)
}

// Receive books a delivery: IN_TRANSIT -> RECEIVED. The actual date
// feeds the next roll-forward pass for the product. Only one of two
// concurrent receive attempts can win; the loser gets
// ErrInvalidTransition.
func (s *OrderService) Receive(ctx context.Context, poNumber string, actualDate time.Time) (*domain.PurchaseOrder, error) {
	day := actualDate.UTC().Truncate(24 * time.Hour)
	if err := s.orders.Transition(ctx, poNumber, domain.POInTransit, domain.POReceived, &day); err != nil {
		return nil, err
	}

	log.Info().Str("po_number", poNumber).Time("actual_date", day).Msg("purchase order received")
	return s.orders.GetByNumber(ctx, poNumber)
}

// Cancel moves any non-terminal order to CANCELLED.
func (s *OrderService) Cancel(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	po, err := s.orders.GetByNumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	if po.Status.Terminal() {
		return nil, fmt.Errorf("po %s is %s: %w", poNumber, po.Status, domain.ErrInvalidTransition)
	}

	if err := s.orders.Transition(ctx, poNumber, po.Status, domain.POCancelled, nil); err != nil {
		return nil, err
	}

	log.Info().Str("po_number", poNumber).Msg("purchase order cancelled")
	return s.orders.GetByNumber(ctx, poNumber)
}

// List returns orders, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status domain.POStatus) ([]domain.PurchaseOrder, error) {
	return s.orders.List(ctx, status)
}

// Get returns a single order by PO number.
func (s *OrderService) Get(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	return s.orders.GetByNumber(ctx, poNumber)
}
