package dropship

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// FulfillmentStatus
// ---------------------------------------------------------------------------

// FulfillmentStatus is the fixed external-status vocabulary every supplier's
// free-text status strings are normalized into.
type FulfillmentStatus string

const (
	// StatusPending means the order awaits (possibly human) fulfillment
	StatusPending FulfillmentStatus = "PENDING"
	// StatusSentToSupplier means the order was forwarded but not acknowledged
	StatusSentToSupplier FulfillmentStatus = "SENT_TO_SUPPLIER"
	// StatusConfirmed means the supplier acknowledged the order
	StatusConfirmed FulfillmentStatus = "CONFIRMED"
	// StatusShipped means the supplier handed the parcel to a carrier
	StatusShipped FulfillmentStatus = "SHIPPED"
	// StatusDelivered means the parcel reached the buyer (terminal)
	StatusDelivered FulfillmentStatus = "DELIVERED"
	// StatusCancelled means the order was cancelled (terminal)
	StatusCancelled FulfillmentStatus = "CANCELLED"
	// StatusFailed means forwarding failed; retryable terminal state
	StatusFailed FulfillmentStatus = "FAILED"
	// StatusUnknown is the sentinel for "supplier gave no usable answer";
	// it is never persisted
	StatusUnknown FulfillmentStatus = "UNKNOWN"
)

// IsValid returns true if the status is a persistable state
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSentToSupplier, StatusConfirmed,
		StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of FulfillmentStatus
func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that end the lifecycle
func (s FulfillmentStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// IsRetryable returns true when the retry sweep may re-attempt forwarding
func (s FulfillmentStatus) IsRetryable() bool {
	return s == StatusFailed
}

// ---------------------------------------------------------------------------
// Status normalization
// ---------------------------------------------------------------------------

// StatusMap translates one supplier's raw status vocabulary into the fixed
// FulfillmentStatus vocabulary. Keys are matched case-insensitively.
type StatusMap map[string]FulfillmentStatus

// Normalize maps a raw provider status string into the fixed vocabulary.
// An empty string yields StatusUnknown (no information); any other
// unrecognized string defaults to StatusConfirmed, treated as "acknowledged,
// not yet informative".
func (m StatusMap) Normalize(raw string) FulfillmentStatus {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusUnknown
	}
	if s, ok := m[strings.ToLower(raw)]; ok {
		return s
	}
	// The fixed vocabulary itself always round-trips
	if s := FulfillmentStatus(strings.ToUpper(raw)); s.IsValid() {
		return s
	}
	return StatusConfirmed
}

// ---------------------------------------------------------------------------
// SupplierOrder Entity
// ---------------------------------------------------------------------------

// SupplierOrder is the fulfillment record for one order line item forwarded
// to one supplier. At most one non-failed SupplierOrder may exist per
// (OrderID, OrderItemID) pair; that check is the idempotency anchor for the
// whole subsystem. Records are never deleted, only status-transitioned.
type SupplierOrder struct {
	// ID is the unique identifier
	ID uuid.UUID
	// SupplierID is the supplier the item was forwarded to
	SupplierID uuid.UUID
	// OrderID is the marketplace order
	OrderID uuid.UUID
	// OrderItemID is the marketplace order line item
	OrderItemID uuid.UUID
	// ExternalOrderID is the supplier-assigned id; empty until confirmed
	ExternalOrderID string
	// Status is the current fulfillment state
	Status FulfillmentStatus
	// TrackingNumber is the carrier tracking number, when assigned
	TrackingNumber string
	// Carrier is the shipping carrier, when known
	Carrier string
	// SupplierCost is the total cost charged by the supplier
	SupplierCost decimal.Decimal
	// Currency is the cost currency
	Currency string
	// SentAt is when the order was forwarded
	SentAt *time.Time
	// ConfirmedAt is when the supplier acknowledged the order
	ConfirmedAt *time.Time
	// FailedAt is when the last forwarding attempt failed
	FailedAt *time.Time
	// Notes carries operator-visible context, including captured error text
	Notes string
	// CreatedAt is when the record was created
	CreatedAt time.Time
	// UpdatedAt is when the record was last updated
	UpdatedAt time.Time
}

// NewSupplierOrder creates a pending fulfillment record for one line item.
func NewSupplierOrder(supplierID, orderID, orderItemID uuid.UUID, cost decimal.Decimal, currency string) *SupplierOrder {
	now := time.Now()
	return &SupplierOrder{
		ID:           uuid.New(),
		SupplierID:   supplierID,
		OrderID:      orderID,
		OrderItemID:  orderItemID,
		Status:       StatusPending,
		SupplierCost: cost,
		Currency:     currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkForwarded records a successful placement. The status comes from the
// adapter's reported result: CONFIRMED when the supplier already
// acknowledged, SENT_TO_SUPPLIER otherwise. A retried record leaves FAILED
// through this transition.
func (o *SupplierOrder) MarkForwarded(result *PlaceOrderResult) {
	now := time.Now()
	o.ExternalOrderID = result.ExternalOrderID
	o.SentAt = &now
	o.FailedAt = nil
	if result.Status == StatusConfirmed {
		o.Status = StatusConfirmed
		o.ConfirmedAt = &now
	} else if result.Status.IsValid() {
		o.Status = result.Status
	} else {
		o.Status = StatusSentToSupplier
	}
	if result.TrackingNumber != "" {
		o.TrackingNumber = result.TrackingNumber
	}
	if result.Carrier != "" {
		o.Carrier = result.Carrier
	}
	o.UpdatedAt = now
}

// MarkFailed records a forwarding failure with the captured error text so
// operators can see it and the retry sweep can pick the record up.
func (o *SupplierOrder) MarkFailed(reason string) {
	now := time.Now()
	o.Status = StatusFailed
	o.FailedAt = &now
	o.Notes = reason
	o.UpdatedAt = now
}

// ApplyStatusUpdate applies a normalized status/tracking update coming from
// a poll or a webhook. It returns true when anything actually changed, so
// callers persist only real updates. Updates never resurrect DELIVERED,
// CANCELLED or FAILED records (FAILED exits only through MarkForwarded),
// and StatusUnknown carries no information and is ignored.
func (o *SupplierOrder) ApplyStatusUpdate(status FulfillmentStatus, trackingNumber, carrier string) bool {
	if o.Status.IsTerminal() {
		return false
	}
	changed := false
	if status.IsValid() && status != o.Status {
		o.Status = status
		if status == StatusConfirmed && o.ConfirmedAt == nil {
			now := time.Now()
			o.ConfirmedAt = &now
		}
		changed = true
	}
	if trackingNumber != "" && trackingNumber != o.TrackingNumber {
		o.TrackingNumber = trackingNumber
		changed = true
	}
	if carrier != "" && carrier != o.Carrier {
		o.Carrier = carrier
		changed = true
	}
	if changed {
		o.UpdatedAt = time.Now()
	}
	return changed
}

// IsOpen returns true while the record still needs status reconciliation.
func (o *SupplierOrder) IsOpen() bool {
	return !o.Status.IsTerminal()
}
