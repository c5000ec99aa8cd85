package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/dropship"
)

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	ID               uuid.UUID               `gorm:"type:uuid;primary_key"`
	Name             string                  `gorm:"type:varchar(200);not null"`
	Kind             dropship.AdapterKind    `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	BaseURL          string                  `gorm:"type:varchar(500)"`
	APIKey           string                  `gorm:"type:varchar(500)"`
	WebhookSecret    string                  `gorm:"type:varchar(200)"`
	Status           dropship.SupplierStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Currency         string                  `gorm:"type:varchar(3);not null;default:'USD'"`
	LeadTimeDays     int                     `gorm:"not null;default:0"`
	CustomConfigJSON string                  `gorm:"type:jsonb;column:custom_config"`
	CreatedAt        time.Time               `gorm:"not null"`
	UpdatedAt        time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *dropship.Supplier {
	s := &dropship.Supplier{
		ID:            m.ID,
		Name:          m.Name,
		Kind:          m.Kind,
		BaseURL:       m.BaseURL,
		APIKey:        m.APIKey,
		WebhookSecret: m.WebhookSecret,
		Status:        m.Status,
		Currency:      m.Currency,
		LeadTimeDays:  m.LeadTimeDays,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	if m.CustomConfigJSON != "" {
		var cfg dropship.CustomAPIConfig
		if err := json.Unmarshal([]byte(m.CustomConfigJSON), &cfg); err == nil {
			s.CustomConfig = &cfg
		}
	}

	return s
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *dropship.Supplier) {
	m.ID = s.ID
	m.Name = s.Name
	m.Kind = s.Kind
	m.BaseURL = s.BaseURL
	m.APIKey = s.APIKey
	m.WebhookSecret = s.WebhookSecret
	m.Status = s.Status
	m.Currency = s.Currency
	m.LeadTimeDays = s.LeadTimeDays
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt

	if s.CustomConfig != nil {
		if jsonBytes, err := json.Marshal(s.CustomConfig); err == nil {
			m.CustomConfigJSON = string(jsonBytes)
		}
	} else {
		m.CustomConfigJSON = ""
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *dropship.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}

// SupplierProductLinkModel is the persistence model for the
// SupplierProductLink domain entity. The (supplier, product) pair is unique.
type SupplierProductLinkModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_link_supplier_product,priority:1"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_link_supplier_product,priority:2;index:idx_link_product"`
	SupplierSKU     string          `gorm:"type:varchar(100);not null"`
	SupplierCost    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SupplierURL     string          `gorm:"type:varchar(500)"`
	LastSyncedStock *int            `gorm:""`
	LastSyncedAt    *time.Time      `gorm:""`
	IsActive        bool            `gorm:"not null;default:true;index"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierProductLinkModel) TableName() string {
	return "supplier_product_links"
}

// ToDomain converts the persistence model to a domain SupplierProductLink entity.
func (m *SupplierProductLinkModel) ToDomain() *dropship.SupplierProductLink {
	return &dropship.SupplierProductLink{
		ID:              m.ID,
		SupplierID:      m.SupplierID,
		ProductID:       m.ProductID,
		SupplierSKU:     m.SupplierSKU,
		SupplierCost:    m.SupplierCost,
		SupplierURL:     m.SupplierURL,
		LastSyncedStock: m.LastSyncedStock,
		LastSyncedAt:    m.LastSyncedAt,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SupplierProductLink entity.
func (m *SupplierProductLinkModel) FromDomain(l *dropship.SupplierProductLink) {
	m.ID = l.ID
	m.SupplierID = l.SupplierID
	m.ProductID = l.ProductID
	m.SupplierSKU = l.SupplierSKU
	m.SupplierCost = l.SupplierCost
	m.SupplierURL = l.SupplierURL
	m.LastSyncedStock = l.LastSyncedStock
	m.LastSyncedAt = l.LastSyncedAt
	m.IsActive = l.IsActive
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// SupplierProductLinkModelFromDomain creates a new persistence model from a
// domain SupplierProductLink entity.
func SupplierProductLinkModelFromDomain(l *dropship.SupplierProductLink) *SupplierProductLinkModel {
	m := &SupplierProductLinkModel{}
	m.FromDomain(l)
	return m
}

// SupplierOrderModel is the persistence model for the SupplierOrder domain
// entity, one fulfillment record per forwarded order line item.
type SupplierOrderModel struct {
	ID              uuid.UUID                  `gorm:"type:uuid;primary_key"`
	SupplierID      uuid.UUID                  `gorm:"type:uuid;not null;index:idx_supplier_order_supplier"`
	OrderID         uuid.UUID                  `gorm:"type:uuid;not null;index:idx_supplier_order_item,priority:1"`
	OrderItemID     uuid.UUID                  `gorm:"type:uuid;not null;index:idx_supplier_order_item,priority:2"`
	ExternalOrderID string                     `gorm:"type:varchar(100);index:idx_supplier_order_external"`
	Status          dropship.FulfillmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TrackingNumber  string                     `gorm:"type:varchar(100)"`
	Carrier         string                     `gorm:"type:varchar(100)"`
	SupplierCost    decimal.Decimal            `gorm:"type:decimal(12,2);not null;default:0"`
	Currency        string                     `gorm:"type:varchar(3);not null;default:'USD'"`
	SentAt          *time.Time                 `gorm:""`
	ConfirmedAt     *time.Time                 `gorm:""`
	FailedAt        *time.Time                 `gorm:""`
	Notes           string                     `gorm:"type:text"`
	CreatedAt       time.Time                  `gorm:"not null"`
	UpdatedAt       time.Time                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierOrderModel) TableName() string {
	return "supplier_orders"
}

// ToDomain converts the persistence model to a domain SupplierOrder entity.
func (m *SupplierOrderModel) ToDomain() *dropship.SupplierOrder {
	return &dropship.SupplierOrder{
		ID:              m.ID,
		SupplierID:      m.SupplierID,
		OrderID:         m.OrderID,
		OrderItemID:     m.OrderItemID,
		ExternalOrderID: m.ExternalOrderID,
		Status:          m.Status,
		TrackingNumber:  m.TrackingNumber,
		Carrier:         m.Carrier,
		SupplierCost:    m.SupplierCost,
		Currency:        m.Currency,
		SentAt:          m.SentAt,
		ConfirmedAt:     m.ConfirmedAt,
		FailedAt:        m.FailedAt,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SupplierOrder entity.
func (m *SupplierOrderModel) FromDomain(o *dropship.SupplierOrder) {
	m.ID = o.ID
	m.SupplierID = o.SupplierID
	m.OrderID = o.OrderID
	m.OrderItemID = o.OrderItemID
	m.ExternalOrderID = o.ExternalOrderID
	m.Status = o.Status
	m.TrackingNumber = o.TrackingNumber
	m.Carrier = o.Carrier
	m.SupplierCost = o.SupplierCost
	m.Currency = o.Currency
	m.SentAt = o.SentAt
	m.ConfirmedAt = o.ConfirmedAt
	m.FailedAt = o.FailedAt
	m.Notes = o.Notes
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
}

// SupplierOrderModelFromDomain creates a new persistence model from a domain
// SupplierOrder entity.
func SupplierOrderModelFromDomain(o *dropship.SupplierOrder) *SupplierOrderModel {
	m := &SupplierOrderModel{}
	m.FromDomain(o)
	return m
}
