package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GudTech/spree-retailops/internal/application/export"
	ordersync "github.com/GudTech/spree-retailops/internal/application/sync"
	"github.com/GudTech/spree-retailops/internal/domain/channel"
)

// OrderHandler exposes the channel order endpoints
type OrderHandler struct {
	BaseHandler
	exports *export.Service
	syncs   *ordersync.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(exports *export.Service, syncs *ordersync.Service) *OrderHandler {
	return &OrderHandler{exports: exports, syncs: syncs}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.GET("", h.List)
	orders.POST("/export", h.Export)
	orders.POST("/synchronize", h.Synchronize)
}

type listOrdersRequest struct {
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=500"`
	RefnumPrefix    string `form:"refnum_prefix"`
	CompletedAfter  string `form:"completed_after"`
	CompletedBefore string `form:"completed_before"`
}

type exportOrdersRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// List handles GET /orders - orders awaiting import
func (h *OrderHandler) List(c *gin.Context) {
	var req listOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := channel.ImportableFilter{
		RefnumPrefix: req.RefnumPrefix,
		Limit:        req.Limit,
	}
	if req.CompletedAfter != "" {
		t, err := time.Parse(time.RFC3339, req.CompletedAfter)
		if err != nil {
			h.BadRequest(c, "completed_after must be RFC3339")
			return
		}
		filter.CompletedAfter = &t
	}
	if req.CompletedBefore != "" {
		t, err := time.Parse(time.RFC3339, req.CompletedBefore)
		if err != nil {
			h.BadRequest(c, "completed_before must be RFC3339")
			return
		}
		filter.CompletedBefore = &t
	}

	orders, err := h.exports.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, orders)
}

// Export handles POST /orders/export - acknowledge a completed import batch
func (h *OrderHandler) Export(c *gin.Context) {
	var req exportOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid order id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	if err := h.exports.Acknowledge(c.Request.Context(), ids); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, gin.H{"exported": len(ids)})
}

// Synchronize handles POST /orders/synchronize - order state writeback
func (h *OrderHandler) Synchronize(c *gin.Context) {
	var req ordersync.SynchronizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.OrderRefnum == "" {
		h.BadRequest(c, "order_refnum is required")
		return
	}

	resp, err := h.syncs.Synchronize(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
