package models

import (
	"time"

	"github.com/google/uuid"
)

// Slim persistence models for the marketplace tables the fulfillment layer
// collaborates with. These tables are owned by the order, catalog and
// shipping subsystems; fulfillment only reads orders and writes back stock
// and tracking.

// OrderModel is the read/write shape of a marketplace order.
type OrderModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	Number         string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	BuyerName      string    `gorm:"type:varchar(100)"`
	BuyerPhone     string    `gorm:"type:varchar(50)"`
	ShipName       string    `gorm:"type:varchar(100)"`
	ShipPhone      string    `gorm:"type:varchar(50)"`
	ShipLine1      string    `gorm:"type:varchar(200)"`
	ShipLine2      string    `gorm:"type:varchar(200)"`
	ShipCity       string    `gorm:"type:varchar(100)"`
	ShipState      string    `gorm:"type:varchar(100)"`
	ShipPostalCode string    `gorm:"type:varchar(20)"`
	ShipCountry    string    `gorm:"type:varchar(2)"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one marketplace order line item.
type OrderItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ProductModel is the catalog product shape the inventory sweep writes back
// to.
type ProductModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	SKU       string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Stock     int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ShipmentModel carries tracking information for one order item.
type ShipmentModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderItemID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TrackingNumber string     `gorm:"type:varchar(100)"`
	Carrier        string     `gorm:"type:varchar(100)"`
	ShippedAt      *time.Time `gorm:""`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}
