package dropship

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

// WebhookService verifies and applies supplier-initiated push updates. It
// shares the status application logic with StatusSyncService, so a webhook
// and a poll racing for the same record converge on the same state.
type WebhookService struct {
	suppliers      dropship.SupplierRepository
	supplierOrders dropship.SupplierOrderRepository
	shipments      dropship.ShipmentTrackingWriter
	registry       dropship.AdapterRegistry
	logger         *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	suppliers dropship.SupplierRepository,
	supplierOrders dropship.SupplierOrderRepository,
	shipments dropship.ShipmentTrackingWriter,
	registry dropship.AdapterRegistry,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		suppliers:      suppliers,
		supplierOrders: supplierOrders,
		shipments:      shipments,
		registry:       registry,
		logger:         logger,
	}
}

// HandleWebhook verifies the signature against the raw body and applies the
// carried status update. Signature verification happens before any state is
// read or written; when a secret is configured there is no unsigned path.
func (s *WebhookService) HandleWebhook(ctx context.Context, supplierID uuid.UUID, rawBody []byte, signature string) (*SupplierOrderResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if supplier.WebhookSecret != "" {
		if !verifySignature(rawBody, signature, supplier.WebhookSecret) {
			s.logger.Warn("webhook rejected: bad signature",
				zap.String("supplier_id", supplierID.String()),
			)
			return nil, dropship.ErrWebhookSignatureInvalid
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", dropship.ErrWebhookMissingOrderID, err)
	}
	externalOrderID := payload.OrderID()
	if externalOrderID == "" {
		return nil, dropship.ErrWebhookMissingOrderID
	}

	record, err := s.supplierOrders.FindByExternalID(ctx, supplierID, externalOrderID)
	if err != nil {
		return nil, err
	}

	status := s.registry.ResolveFor(supplier).StatusMap().Normalize(payload.Status)
	updated, err := applyRemoteUpdate(ctx, record, status, payload.Tracking(), payload.Carrier,
		s.supplierOrders, s.shipments, s.logger)
	if err != nil {
		return nil, err
	}

	s.logger.Info("webhook applied",
		zap.String("supplier_id", supplierID.String()),
		zap.String("external_order_id", externalOrderID),
		zap.String("status", record.Status.String()),
		zap.Bool("updated", updated),
	)
	response := ToSupplierOrderResponse(record)
	return &response, nil
}

// verifySignature compares the lowercase-hex HMAC-SHA256 of the raw body in
// constant time. A "sha256=" prefix on the inbound header is tolerated.
func verifySignature(rawBody []byte, signature, secret string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
