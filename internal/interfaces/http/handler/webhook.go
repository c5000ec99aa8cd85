package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appdropship "github.com/markethub/backend/internal/application/dropship"
	"github.com/markethub/backend/internal/interfaces/http/dto"
)

// Signature headers carry the HMAC digest of the raw webhook body. Most
// suppliers send X-Webhook-Signature; a few older integrations use
// X-Supplier-Signature instead.
const (
	SignatureHeader       = "X-Webhook-Signature"
	LegacySignatureHeader = "X-Supplier-Signature"
)

// WebhookHandler receives supplier push notifications
type WebhookHandler struct {
	BaseHandler
	webhooks *appdropship.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhooks *appdropship.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Receive godoc
// @Summary      Receive a supplier status webhook
// @Description  Verifies the body signature against the supplier's shared
// @Description  secret, then applies the status update to the matching
// @Description  supplier order.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID"
// @Param        X-Webhook-Signature header string false "Hex HMAC-SHA256 of the request body"
// @Success      200 {object} dto.Response{data=appdropship.SupplierOrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /suppliers/{id}/webhook [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}
	supplierID, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		signature = c.GetHeader(LegacySignatureHeader)
	}

	resp, err := h.webhooks.HandleWebhook(
		c.Request.Context(),
		supplierID,
		body,
		signature,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
