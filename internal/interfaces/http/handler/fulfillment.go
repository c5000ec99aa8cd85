package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdropship "github.com/markethub/backend/internal/application/dropship"
	"github.com/markethub/backend/internal/interfaces/http/dto"
)

// SweepTrigger fires background reconciliation sweeps on demand
type SweepTrigger interface {
	TriggerStatusSweep(ctx context.Context) error
	TriggerInventorySweep(ctx context.Context) error
	TriggerRetrySweep(ctx context.Context) error
	IsRunning() bool
}

// FulfillmentHandler handles order forwarding and supplier order endpoints
type FulfillmentHandler struct {
	BaseHandler
	fulfillment *appdropship.FulfillmentService
	sweeps      SweepTrigger
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(fulfillment *appdropship.FulfillmentService, sweeps SweepTrigger) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillment: fulfillment, sweeps: sweeps}
}

// Fulfill godoc
// @Summary      Forward a paid order to its suppliers
// @Description  Forwards each line item to the first active linked supplier.
// @Description  Safe to call repeatedly, items already forwarded are skipped.
// @Tags         fulfillment
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=appdropship.FulfillmentResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/fulfill [post]
func (h *FulfillmentHandler) Fulfill(c *gin.Context) {
	id, ok := h.bindID(c, "Invalid order ID")
	if !ok {
		return
	}

	result, err := h.fulfillment.FulfillOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListByOrder returns the supplier order records for a marketplace order
func (h *FulfillmentHandler) ListByOrder(c *gin.Context) {
	id, ok := h.bindID(c, "Invalid order ID")
	if !ok {
		return
	}

	resp, err := h.fulfillment.ListByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListFailed returns supplier orders awaiting retry
func (h *FulfillmentHandler) ListFailed(c *gin.Context) {
	resp, err := h.fulfillment.ListFailed(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Retry godoc
// @Summary      Retry a failed supplier order
// @Tags         fulfillment
// @Produce      json
// @Param        id path string true "Supplier order ID"
// @Success      200 {object} dto.Response{data=appdropship.SupplierOrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /supplier-orders/{id}/retry [post]
func (h *FulfillmentHandler) Retry(c *gin.Context) {
	id, ok := h.bindID(c, "Invalid supplier order ID")
	if !ok {
		return
	}

	resp, err := h.fulfillment.RetryOne(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TriggerStatusSweep fires a status poll of all open supplier orders
func (h *FulfillmentHandler) TriggerStatusSweep(c *gin.Context) {
	h.triggerSweep(c, h.sweeps.TriggerStatusSweep)
}

// TriggerInventorySweep fires a stock refresh of all active product links
func (h *FulfillmentHandler) TriggerInventorySweep(c *gin.Context) {
	h.triggerSweep(c, h.sweeps.TriggerInventorySweep)
}

// TriggerRetrySweep fires a retry pass over failed supplier orders
func (h *FulfillmentHandler) TriggerRetrySweep(c *gin.Context) {
	h.triggerSweep(c, h.sweeps.TriggerRetrySweep)
}

func (h *FulfillmentHandler) triggerSweep(c *gin.Context, trigger func(context.Context) error) {
	if err := trigger(c.Request.Context()); err != nil {
		h.Conflict(c, err.Error())
		return
	}
	h.Success(c, gin.H{"triggered": true})
}

func (h *FulfillmentHandler) bindID(c *gin.Context, msg string) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, msg)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, msg)
		return uuid.Nil, false
	}
	return id, true
}
