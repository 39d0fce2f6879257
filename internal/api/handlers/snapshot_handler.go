// internal/api/handlers/snapshot_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplydash/inventory-engine/internal/domain"
	"github.com/supplydash/inventory-engine/internal/service"
)

type SnapshotHandler struct {
	snapshots *service.SnapshotService
}

func NewSnapshotHandler(snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

type rollForwardRequest struct {
	TargetDate   string  `json:"target_date" binding:"required"`
	ProductScope []int64 `json:"product_scope"`
}

// RunRollForward executes one roll-forward pass for the target date.
func (h *SnapshotHandler) RunRollForward(c *gin.Context) {
	var req rollForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_date must be YYYY-MM-DD"})
		return
	}

	result, err := h.snapshots.Run(c.Request.Context(), date, req.ProductScope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "roll-forward run failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLatestSnapshots returns the newest snapshot per product.
func (h *SnapshotHandler) GetLatestSnapshots(c *gin.Context) {
	snaps, err := h.snapshots.Latest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch snapshots"})
		return
	}

	c.JSON(http.StatusOK, snaps)
}

// GetSnapshotsByDate returns all snapshots for one date.
func (h *SnapshotHandler) GetSnapshotsByDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	snaps, err := h.snapshots.ByDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch snapshots"})
		return
	}

	c.JSON(http.StatusOK, snaps)
}

// GetAlerts returns the alert feed.
func (h *SnapshotHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.snapshots.Alerts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build alert feed"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// GetCosts returns the per-product cost breakdown.
func (h *SnapshotHandler) GetCosts(c *gin.Context) {
	costs, err := h.snapshots.Costs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute costs"})
		return
	}

	c.JSON(http.StatusOK, costs)
}

// GetKPIs returns the portfolio KPI set.
func (h *SnapshotHandler) GetKPIs(c *gin.Context) {
	kpis, err := h.snapshots.KPIs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute kpis"})
		return
	}

	c.JSON(http.StatusOK, kpis)
}

// GetSavings returns the baseline-vs-EOQ savings comparison. An absent
// baseline_qty falls back to the configured default; a malformed or
// non-positive one is a caller error.
func (h *SnapshotHandler) GetSavings(c *gin.Context) {
	baseline := 0
	if raw := strings.TrimSpace(c.Query("baseline_qty")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "baseline_qty must be a positive integer"})
			return
		}
		baseline = v
	}

	savings, err := h.snapshots.Savings(c.Request.Context(), baseline)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute savings"})
		return
	}

	c.JSON(http.StatusOK, savings)
}
