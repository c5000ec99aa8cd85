package dropship

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Supplier Adapter Errors
// ---------------------------------------------------------------------------

var (
	// Supplier errors
	ErrSupplierNotFound      = errors.New("dropship: supplier not found")
	ErrSupplierInactive      = errors.New("dropship: supplier is not active")
	ErrSupplierNotConfigured = errors.New("dropship: supplier not configured")

	// Adapter transport errors
	ErrSupplierUnavailable     = errors.New("dropship: supplier temporarily unavailable")
	ErrSupplierRequestFailed   = errors.New("dropship: supplier request failed")
	ErrSupplierInvalidResponse = errors.New("dropship: invalid supplier response")
	ErrOrderRejected           = errors.New("dropship: supplier rejected order")

	// Link errors
	ErrLinkNotFound      = errors.New("dropship: supplier product link not found")
	ErrLinkAlreadyExists = errors.New("dropship: supplier product link already exists")

	// Supplier order errors
	ErrSupplierOrderNotFound     = errors.New("dropship: supplier order not found")
	ErrSupplierOrderNotRetryable = errors.New("dropship: supplier order is not retryable")

	// Collaborator errors
	ErrOrderNotFound = errors.New("dropship: marketplace order not found")

	// Webhook errors
	ErrWebhookSignatureInvalid = errors.New("dropship: invalid webhook signature")
	ErrWebhookMissingOrderID   = errors.New("dropship: webhook missing external order id")
)

// ---------------------------------------------------------------------------
// Stock
// ---------------------------------------------------------------------------

// Stock represents a supplier-reported stock level. Suppliers that do not
// support stock queries (or fail to answer) report an unknown level, which
// is distinct from zero stock and must never be written to the catalog.
type Stock struct {
	// Known indicates whether the supplier reported an actual quantity
	Known bool
	// Quantity is the reported quantity; meaningful only when Known is true
	Quantity int
}

// KnownStock returns a Stock carrying an actual quantity.
func KnownStock(quantity int) Stock {
	if quantity < 0 {
		quantity = 0
	}
	return Stock{Known: true, Quantity: quantity}
}

// UnknownStock returns the "unknown/unsupported" stock sentinel.
func UnknownStock() Stock {
	return Stock{}
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// ProductInfo is a snapshot of a product as the supplier currently sees it.
type ProductInfo struct {
	// SKU is the supplier's SKU for the product
	SKU string
	// Name is the product name on the supplier side
	Name string
	// Price is the supplier's current unit price
	Price decimal.Decimal
	// Currency is the price currency
	Currency string
	// Stock is the supplier-reported stock level
	Stock Stock
	// ImageURL is the primary product image URL
	ImageURL string
}

// ShippingAddress is the normalized delivery address sent to suppliers.
type ShippingAddress struct {
	// Name is the recipient's full name
	Name string
	// Phone is the recipient's phone number
	Phone string
	// Line1 is the street address
	Line1 string
	// Line2 is the optional address complement
	Line2 string
	// City is the delivery city
	City string
	// State is the state or province
	State string
	// PostalCode is the postal/zip code
	PostalCode string
	// Country is the ISO country code or name
	Country string
}

// PlaceOrderRequest carries one order line item to be forwarded to a supplier.
type PlaceOrderRequest struct {
	// ReferenceID is the marketplace-side reference (order item id) so the
	// supplier can de-duplicate on its end
	ReferenceID uuid.UUID
	// SKU is the supplier SKU to order
	SKU string
	// Quantity is the ordered quantity
	Quantity int
	// UnitCost is the agreed supplier cost per unit
	UnitCost decimal.Decimal
	// Currency is the cost currency
	Currency string
	// Address is the normalized shipping address
	Address ShippingAddress
	// Note is an optional free-text note for the supplier
	Note string
}

// PlaceOrderResult is the supplier's answer to a successful placement.
type PlaceOrderResult struct {
	// ExternalOrderID is the order id assigned by the supplier
	ExternalOrderID string
	// Status is the normalized initial status (SENT_TO_SUPPLIER or CONFIRMED)
	Status FulfillmentStatus
	// TrackingNumber is set when the supplier already assigned tracking
	TrackingNumber string
	// Carrier is the shipping carrier, when known
	Carrier string
	// EstimatedDelivery is the supplier's delivery estimate, when given
	EstimatedDelivery *time.Time
}

// OrderStatusResult is the supplier's answer to a status poll.
type OrderStatusResult struct {
	// Status is the normalized status; StatusUnknown when the supplier
	// could not be reached or answered with an unparseable response
	Status FulfillmentStatus
	// TrackingNumber is the tracking number, when assigned
	TrackingNumber string
	// Carrier is the shipping carrier, when known
	Carrier string
}

// ---------------------------------------------------------------------------
// SupplierAdapter Port Interface
// ---------------------------------------------------------------------------

// SupplierAdapter is the capability contract every supplier integration
// implements, whether built-in or configuration-driven. Callers never branch
// on supplier kind; each adapter translates its own wire dialect and status
// vocabulary into this shape.
//
// Error conventions:
//   - GetProduct returns (nil, nil) for "supplier has no such SKU" and for
//     unexpected response shapes; it errors only on transport failures.
//   - GetStock reports UnknownStock for unsupported/unparseable answers;
//     transport errors are returned so sweeps can log and move on.
//   - PlaceOrder fails loudly on any non-success response, because a
//     forwarding failure must reach the orchestrator's retry bookkeeping.
//   - GetOrderStatus never fails on transport or parse problems; it reports
//     StatusUnknown instead so periodic sync survives one bad supplier.
type SupplierAdapter interface {
	// Kind returns the adapter kind this implementation handles
	Kind() AdapterKind

	// StatusMap returns the adapter's raw-status normalization map, shared by
	// polling and webhook ingestion so both paths speak the same dialect
	StatusMap() StatusMap

	// GetProduct fetches the current product snapshot for a supplier SKU
	GetProduct(ctx context.Context, sku string) (*ProductInfo, error)

	// GetStock fetches the current stock level for a supplier SKU
	GetStock(ctx context.Context, sku string) (Stock, error)

	// PlaceOrder submits one line item to the supplier
	PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResult, error)

	// GetOrderStatus polls the current state of a forwarded order
	GetOrderStatus(ctx context.Context, externalOrderID string) (*OrderStatusResult, error)
}

// AdapterRegistry resolves a supplier to a live adapter instance built from
// the supplier's stored configuration. Implementations construct adapters
// lazily and must fall back to the manual adapter for unknown kinds.
type AdapterRegistry interface {
	// Resolve returns the adapter for the given supplier id
	Resolve(ctx context.Context, supplierID uuid.UUID) (SupplierAdapter, error)

	// ResolveFor returns the adapter for an already loaded supplier
	ResolveFor(supplier *Supplier) SupplierAdapter

	// Invalidate drops any cached adapter for the supplier, forcing a
	// rebuild from configuration on next resolve
	Invalidate(supplierID uuid.UUID)
}
