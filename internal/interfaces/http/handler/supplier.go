package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdropship "github.com/markethub/backend/internal/application/dropship"
	"github.com/markethub/backend/internal/interfaces/http/dto"
)

// SupplierHandler handles supplier management endpoints
type SupplierHandler struct {
	BaseHandler
	suppliers *appdropship.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(suppliers *appdropship.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// Create godoc
// @Summary      Register a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body appdropship.CreateSupplierRequest true "Supplier registration request"
// @Success      201 {object} dto.Response{data=appdropship.SupplierResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req appdropship.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.suppliers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @Summary      Reconfigure a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Param        request body appdropship.UpdateSupplierRequest true "Supplier update request"
// @Success      200 {object} dto.Response{data=appdropship.SupplierResponse}
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req appdropship.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.suppliers.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID godoc
// @Summary      Get a supplier by ID
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Success      200 {object} dto.Response{data=appdropship.SupplierResponse}
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.suppliers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appdropship.SupplierResponse}
// @Router       /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	resp, err := h.suppliers.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Pause stops new forwards to the supplier without removing its configuration
func (h *SupplierHandler) Pause(c *gin.Context) {
	h.transition(c, h.suppliers.Pause)
}

// Resume reactivates a paused supplier
func (h *SupplierHandler) Resume(c *gin.Context) {
	h.transition(c, h.suppliers.Resume)
}

// Archive retires a supplier permanently
func (h *SupplierHandler) Archive(c *gin.Context) {
	h.transition(c, h.suppliers.Archive)
}

func (h *SupplierHandler) transition(
	c *gin.Context,
	apply func(context.Context, uuid.UUID) (*appdropship.SupplierResponse, error),
) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *SupplierHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return uuid.Nil, false
	}
	return id, true
}
