// internal/api/handlers/order_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type placeOrderRequest struct {
	ProductID  int64  `json:"product_id" binding:"required"`
	SupplierID int64  `json:"supplier_id"`
	Quantity   int    `json:"quantity"`
	OrderDate  string `json:"order_date"`
}

// PlaceOrder creates a new PENDING purchase order.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := service.PlaceOrderInput{
		ProductID:  req.ProductID,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
	}
	if req.OrderDate != "" {
		date, err := time.Parse("2006-01-02", req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_date must be YYYY-MM-DD"})
			return
		}
		in.OrderDate = &date
	}

	po, err := h.orders.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, po)
}

type receiveOrderRequest struct {
	ActualDate string `json:"actual_date" binding:"required"`
}

// ReceiveOrder books a delivery for an in-transit order.
func (h *OrderHandler) ReceiveOrder(c *gin.Context) {
	poNumber := c.Param("po_number")

	var req receiveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actualDate, err := time.Parse("2006-01-02", req.ActualDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actual_date must be YYYY-MM-DD"})
		return
	}

	po, err := h.orders.Receive(c.Request.Context(), poNumber, actualDate)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// ShipOrder confirms shipment of a pending order.
func (h *OrderHandler) ShipOrder(c *gin.Context) {
	po, err := h.orders.Ship(c.Request.Context(), c.Param("po_number"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// CancelOrder cancels a non-terminal order.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	po, err := h.orders.Cancel(c.Request.Context(), c.Param("po_number"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// GetOrder returns one purchase order.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	po, err := h.orders.Get(c.Request.Context(), c.Param("po_number"))
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// ListOrders returns orders, optionally filtered by status.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var status domain.POStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := domain.ParsePOStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}
		status = parsed
	}

	orders, err := h.orders.List(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrDuplicateIdentifier):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed", "details": err.Error()})
	}
}
