package dropship

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ForwardGuard is a fast-path lock that keeps two concurrent fulfillment
// triggers from forwarding the same order item to a supplier. The database
// uniqueness check on supplier orders remains authoritative; the guard only
// short-circuits the common race before any adapter call is made.
type ForwardGuard interface {
	// Acquire claims the forward slot for an order item. It returns true when
	// the caller won the slot and false when another forward already holds it.
	Acquire(ctx context.Context, orderID, orderItemID uuid.UUID, ttl time.Duration) (bool, error)

	// Release frees the slot so a later retry can claim it again, typically
	// after a forward attempt failed before reaching the supplier.
	Release(ctx context.Context, orderID, orderItemID uuid.UUID) error

	// Close releases any resources held by the guard
	Close() error
}
