package dropship

import (
	"context"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Repository Interfaces
// ---------------------------------------------------------------------------

// SupplierRepository persists Supplier aggregates.
type SupplierRepository interface {
	// FindByID finds a supplier by its id
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindAll returns all suppliers
	FindAll(ctx context.Context) ([]Supplier, error)

	// FindActive returns all suppliers in ACTIVE status
	FindActive(ctx context.Context) ([]Supplier, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error
}

// SupplierProductLinkRepository persists product/supplier-SKU associations.
type SupplierProductLinkRepository interface {
	// FindByID finds a link by its id
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierProductLink, error)

	// FindActiveByProduct returns the active links for a catalog product,
	// oldest first, so the first active-supplier link wins
	FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]SupplierProductLink, error)

	// FindActive returns every active link, for the inventory sweep
	FindActive(ctx context.Context) ([]SupplierProductLink, error)

	// FindBySupplierAndProduct finds the unique link for a pair
	FindBySupplierAndProduct(ctx context.Context, supplierID, productID uuid.UUID) (*SupplierProductLink, error)

	// FindBySupplier returns all links for a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]SupplierProductLink, error)

	// Save creates or updates a link
	Save(ctx context.Context, link *SupplierProductLink) error

	// Delete removes a link (unlink)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierOrderRepository persists fulfillment records. Writes to a single
// record must be applied atomically (read-check-write inside a transaction)
// to preserve the per-(order, order item) idempotency invariant under
// concurrent triggers.
type SupplierOrderRepository interface {
	// FindByID finds a record by its id
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierOrder, error)

	// FindByOrderItem finds the record for an (order, order item) pair,
	// preferring a non-failed record when both exist
	FindByOrderItem(ctx context.Context, orderID, orderItemID uuid.UUID) (*SupplierOrder, error)

	// FindByExternalID finds the record for a supplier's external order id
	FindByExternalID(ctx context.Context, supplierID uuid.UUID, externalOrderID string) (*SupplierOrder, error)

	// FindByOrder returns all records for a marketplace order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]SupplierOrder, error)

	// FindOpen returns records not yet in a terminal state, for the status sweep
	FindOpen(ctx context.Context, limit int) ([]SupplierOrder, error)

	// FindFailed returns FAILED records, for the retry sweep
	FindFailed(ctx context.Context, limit int) ([]SupplierOrder, error)

	// CreateIfAbsent atomically inserts the record unless a non-failed
	// record already exists for the same (order, order item) pair. It
	// returns the surviving record and whether the insert happened.
	CreateIfAbsent(ctx context.Context, order *SupplierOrder) (*SupplierOrder, bool, error)

	// Save updates an existing record
	Save(ctx context.Context, order *SupplierOrder) error
}

// ---------------------------------------------------------------------------
// Collaborator Ports
// ---------------------------------------------------------------------------

// FulfillmentOrderItem is one marketplace order line item, as much of it as
// forwarding needs.
type FulfillmentOrderItem struct {
	// ID is the order item id
	ID uuid.UUID
	// ProductID is the catalog product ordered
	ProductID uuid.UUID
	// Quantity is the ordered quantity
	Quantity int
}

// FulfillmentOrder is the read model of a paid marketplace order used by the
// orchestrator: line items, saved shipping address and buyer contact info.
type FulfillmentOrder struct {
	// ID is the order id
	ID uuid.UUID
	// Number is the human-facing order number
	Number string
	// Items are the order line items
	Items []FulfillmentOrderItem
	// Address is the saved shipping address
	Address ShippingAddress
	// BuyerName is the purchasing user's name
	BuyerName string
	// BuyerPhone is the purchasing user's phone
	BuyerPhone string
}

// OrderReader loads paid orders from the order subsystem.
type OrderReader interface {
	// GetOrderForFulfillment loads the order, its items, its address and
	// the buyer's contact info
	GetOrderForFulfillment(ctx context.Context, orderID uuid.UUID) (*FulfillmentOrder, error)
}

// OrderStatusAdvancer advances the parent order on the order subsystem once
// at least one item was forwarded.
type OrderStatusAdvancer interface {
	// MarkProcessing moves the order into its "processing" state
	MarkProcessing(ctx context.Context, orderID uuid.UUID) error
}

// CatalogStockWriter writes supplier-reported stock back to the catalog.
type CatalogStockWriter interface {
	// SetProductStock overwrites the catalog product's stock level
	SetProductStock(ctx context.Context, productID uuid.UUID, quantity int) error
}

// ShipmentTrackingWriter propagates tracking numbers onto the shipment
// record owned by the shipping subsystem.
type ShipmentTrackingWriter interface {
	// SetTracking records the tracking number and carrier for an order item
	SetTracking(ctx context.Context, orderItemID uuid.UUID, trackingNumber, carrier string) error
}
