package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdropship "github.com/markethub/backend/internal/application/dropship"
	"github.com/markethub/backend/internal/interfaces/http/dto"
)

// ProductLinkHandler handles supplier product link endpoints
type ProductLinkHandler struct {
	BaseHandler
	links *appdropship.ProductLinkService
}

// NewProductLinkHandler creates a new ProductLinkHandler
func NewProductLinkHandler(links *appdropship.ProductLinkService) *ProductLinkHandler {
	return &ProductLinkHandler{links: links}
}

// Create godoc
// @Summary      Link a catalog product to a supplier SKU
// @Tags         product-links
// @Accept       json
// @Produce      json
// @Param        request body appdropship.CreateProductLinkRequest true "Product link request"
// @Success      201 {object} dto.Response{data=appdropship.ProductLinkResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /product-links [post]
func (h *ProductLinkHandler) Create(c *gin.Context) {
	var req appdropship.CreateProductLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.links.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListBySupplier returns every link owned by a supplier
func (h *ProductLinkHandler) ListBySupplier(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.links.ListBySupplier(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByProduct returns every supplier link for a catalog product
func (h *ProductLinkHandler) ListByProduct(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.links.ListByProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate excludes the link from fulfillment and inventory sweeps while
// keeping its history
func (h *ProductLinkHandler) Deactivate(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.links.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Unlink removes the link entirely
func (h *ProductLinkHandler) Unlink(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.links.Unlink(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ProductLinkHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}
