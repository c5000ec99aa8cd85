package dropship

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierProductLink associates a catalog product with a supplier's SKU,
// making order items for that product eligible for forwarding. Unique per
// (supplier, product). Once linked, the supplier is the source of truth for
// the product's stock.
type SupplierProductLink struct {
	// ID is the unique identifier
	ID uuid.UUID
	// SupplierID is the supplier side of the association
	SupplierID uuid.UUID
	// ProductID is the catalog product side of the association
	ProductID uuid.UUID
	// SupplierSKU is the product's SKU on the supplier side
	SupplierSKU string
	// SupplierCost is the per-unit cost charged by the supplier
	SupplierCost decimal.Decimal
	// SupplierURL is the product page on the supplier side, when known
	SupplierURL string
	// LastSyncedStock is the stock level from the last inventory sweep;
	// nil until the first successful sweep
	LastSyncedStock *int
	// LastSyncedAt is when stock was last reconciled
	LastSyncedAt *time.Time
	// IsActive controls whether the link participates in forwarding and sweeps
	IsActive bool
	// CreatedAt is when the link was created
	CreatedAt time.Time
	// UpdatedAt is when the link was last updated
	UpdatedAt time.Time
}

// NewSupplierProductLink creates an active link between a product and a
// supplier SKU.
func NewSupplierProductLink(supplierID, productID uuid.UUID, supplierSKU string, cost decimal.Decimal) *SupplierProductLink {
	now := time.Now()
	return &SupplierProductLink{
		ID:           uuid.New(),
		SupplierID:   supplierID,
		ProductID:    productID,
		SupplierSKU:  supplierSKU,
		SupplierCost: cost,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RecordStock stores the stock level observed by an inventory sweep and
// reports whether it differs from the previously cached value.
func (l *SupplierProductLink) RecordStock(quantity int) bool {
	now := time.Now()
	changed := l.LastSyncedStock == nil || *l.LastSyncedStock != quantity
	l.LastSyncedStock = &quantity
	l.LastSyncedAt = &now
	if changed {
		l.UpdatedAt = now
	}
	return changed
}

// Deactivate removes the link from forwarding and sweeps without deleting it.
func (l *SupplierProductLink) Deactivate() {
	l.IsActive = false
	l.UpdatedAt = time.Now()
}
