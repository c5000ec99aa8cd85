package supplier

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/markethub/backend/internal/domain/dropship"
)

// ManualAdapter implements the SupplierAdapter contract for suppliers
// without an API. Orders are fulfilled by a human: placement immediately
// succeeds with a synthetic id in PENDING, and product/stock queries report
// "unknown". It is also the fallback the registry returns for unknown or
// misconfigured supplier kinds, so forwarding never dead-ends on a lookup.
type ManualAdapter struct{}

// NewManualAdapter creates a manual (no-op) adapter.
func NewManualAdapter() *ManualAdapter {
	return &ManualAdapter{}
}

// Kind returns the adapter kind this adapter handles
func (a *ManualAdapter) Kind() dropship.AdapterKind {
	return dropship.AdapterKindManual
}

// StatusMap returns an empty map; manual updates already use the fixed
// vocabulary.
func (a *ManualAdapter) StatusMap() dropship.StatusMap {
	return dropship.StatusMap{}
}

// GetProduct reports "unknown product" for every SKU.
func (a *ManualAdapter) GetProduct(_ context.Context, _ string) (*dropship.ProductInfo, error) {
	return nil, nil
}

// GetStock reports unknown stock; manual suppliers are never the source of
// truth for catalog stock.
func (a *ManualAdapter) GetStock(_ context.Context, _ string) (dropship.Stock, error) {
	return dropship.UnknownStock(), nil
}

// PlaceOrder always succeeds with a synthetic id so the fulfillment record
// exists for the human operator to work from.
func (a *ManualAdapter) PlaceOrder(_ context.Context, _ *dropship.PlaceOrderRequest) (*dropship.PlaceOrderResult, error) {
	return &dropship.PlaceOrderResult{
		ExternalOrderID: fmt.Sprintf("MAN-%s", uuid.New().String()),
		Status:          dropship.StatusPending,
	}, nil
}

// GetOrderStatus always reports PENDING; manual orders advance through
// operator action, not polling.
func (a *ManualAdapter) GetOrderStatus(_ context.Context, _ string) (*dropship.OrderStatusResult, error) {
	return &dropship.OrderStatusResult{Status: dropship.StatusPending}, nil
}

// Ensure ManualAdapter implements SupplierAdapter interface
var _ dropship.SupplierAdapter = (*ManualAdapter)(nil)
