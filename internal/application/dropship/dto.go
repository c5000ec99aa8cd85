package dropship

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/dropship"
)

// CreateSupplierRequest carries the admin payload for registering a supplier
type CreateSupplierRequest struct {
	Name          string                    `json:"name" binding:"required"`
	Kind          string                    `json:"kind" binding:"required"`
	BaseURL       string                    `json:"base_url"`
	APIKey        string                    `json:"api_key"`
	WebhookSecret string                    `json:"webhook_secret"`
	Currency      string                    `json:"currency"`
	LeadTimeDays  int                       `json:"lead_time_days" binding:"omitempty,min=0"`
	CustomConfig  *dropship.CustomAPIConfig `json:"custom_config"`
}

// UpdateSupplierRequest carries the admin payload for reconfiguring a supplier.
// Nil fields are left untouched.
type UpdateSupplierRequest struct {
	Name          *string                   `json:"name"`
	BaseURL       *string                   `json:"base_url"`
	APIKey        *string                   `json:"api_key"`
	WebhookSecret *string                   `json:"webhook_secret"`
	Currency      *string                   `json:"currency"`
	LeadTimeDays  *int                      `json:"lead_time_days" binding:"omitempty,min=0"`
	CustomConfig  *dropship.CustomAPIConfig `json:"custom_config"`
}

// SupplierResponse is the outward view of a supplier. The API key and webhook
// secret never leave the service.
type SupplierResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	BaseURL      string    `json:"base_url,omitempty"`
	Status       string    `json:"status"`
	Currency     string    `json:"currency"`
	LeadTimeDays int       `json:"lead_time_days"`
	HasCustomAPI bool      `json:"has_custom_api"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a supplier to its response DTO
func ToSupplierResponse(s *dropship.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:           s.ID,
		Name:         s.Name,
		Kind:         s.Kind.String(),
		BaseURL:      s.BaseURL,
		Status:       s.Status.String(),
		Currency:     s.Currency,
		LeadTimeDays: s.LeadTimeDays,
		HasCustomAPI: s.CustomConfig != nil,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// CreateProductLinkRequest carries the admin payload for linking a catalog
// product to a supplier SKU
type CreateProductLinkRequest struct {
	SupplierID   uuid.UUID       `json:"supplier_id" binding:"required"`
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	SupplierSKU  string          `json:"supplier_sku" binding:"required"`
	SupplierCost decimal.Decimal `json:"supplier_cost"`
	SupplierURL  string          `json:"supplier_url"`
}

// ProductLinkResponse is the outward view of a supplier product link
type ProductLinkResponse struct {
	ID              uuid.UUID  `json:"id"`
	SupplierID      uuid.UUID  `json:"supplier_id"`
	ProductID       uuid.UUID  `json:"product_id"`
	SupplierSKU     string     `json:"supplier_sku"`
	SupplierCost    string     `json:"supplier_cost"`
	SupplierURL     string     `json:"supplier_url,omitempty"`
	LastSyncedStock *int       `json:"last_synced_stock,omitempty"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToProductLinkResponse converts a link to its response DTO
func ToProductLinkResponse(l *dropship.SupplierProductLink) ProductLinkResponse {
	return ProductLinkResponse{
		ID:              l.ID,
		SupplierID:      l.SupplierID,
		ProductID:       l.ProductID,
		SupplierSKU:     l.SupplierSKU,
		SupplierCost:    l.SupplierCost.StringFixed(2),
		SupplierURL:     l.SupplierURL,
		LastSyncedStock: l.LastSyncedStock,
		LastSyncedAt:    l.LastSyncedAt,
		IsActive:        l.IsActive,
		CreatedAt:       l.CreatedAt,
	}
}

// SupplierOrderResponse is the outward view of a fulfillment record
type SupplierOrderResponse struct {
	ID              uuid.UUID  `json:"id"`
	SupplierID      uuid.UUID  `json:"supplier_id"`
	OrderID         uuid.UUID  `json:"order_id"`
	OrderItemID     uuid.UUID  `json:"order_item_id"`
	ExternalOrderID string     `json:"external_order_id,omitempty"`
	Status          string     `json:"status"`
	TrackingNumber  string     `json:"tracking_number,omitempty"`
	Carrier         string     `json:"carrier,omitempty"`
	SupplierCost    string     `json:"supplier_cost"`
	Currency        string     `json:"currency"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	FailedAt        *time.Time `json:"failed_at,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToSupplierOrderResponse converts a fulfillment record to its response DTO
func ToSupplierOrderResponse(o *dropship.SupplierOrder) SupplierOrderResponse {
	return SupplierOrderResponse{
		ID:              o.ID,
		SupplierID:      o.SupplierID,
		OrderID:         o.OrderID,
		OrderItemID:     o.OrderItemID,
		ExternalOrderID: o.ExternalOrderID,
		Status:          o.Status.String(),
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		SupplierCost:    o.SupplierCost.StringFixed(2),
		Currency:        o.Currency,
		SentAt:          o.SentAt,
		ConfirmedAt:     o.ConfirmedAt,
		FailedAt:        o.FailedAt,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToSupplierOrderResponses converts a slice of fulfillment records
func ToSupplierOrderResponses(orders []dropship.SupplierOrder) []SupplierOrderResponse {
	responses := make([]SupplierOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToSupplierOrderResponse(&orders[i]))
	}
	return responses
}

// WebhookPayload is the inbound push notification body. Suppliers disagree on
// field naming, so both conventions are accepted for the order id and the
// tracking fields.
type WebhookPayload struct {
	ExternalOrderID      string `json:"externalOrderId"`
	ExternalOrderIDSnake string `json:"order_id"`
	Status               string `json:"status"`
	TrackingNumber       string `json:"trackingNumber"`
	TrackingNumberSnake  string `json:"tracking_number"`
	Carrier              string `json:"carrier"`
}

// OrderID returns the external order id under either naming convention
func (p *WebhookPayload) OrderID() string {
	if p.ExternalOrderID != "" {
		return p.ExternalOrderID
	}
	return p.ExternalOrderIDSnake
}

// Tracking returns the tracking number under either naming convention
func (p *WebhookPayload) Tracking() string {
	if p.TrackingNumber != "" {
		return p.TrackingNumber
	}
	return p.TrackingNumberSnake
}
