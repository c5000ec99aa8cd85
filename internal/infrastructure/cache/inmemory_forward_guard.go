package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markethub/backend/internal/domain/dropship"
)

// slot represents a claimed forward with expiration
type slot struct {
	expiresAt time.Time
}

// InMemoryForwardGuard implements ForwardGuard using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryForwardGuard struct {
	mu        sync.Mutex
	slots     map[string]slot
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryForwardGuard creates a new in-memory forward guard
// It starts a background goroutine to clean up expired slots
func NewInMemoryForwardGuard() *InMemoryForwardGuard {
	guard := &InMemoryForwardGuard{
		slots:    make(map[string]slot),
		stopChan: make(chan struct{}),
	}

	guard.wg.Add(1)
	go guard.cleanupLoop()

	return guard
}

// Acquire claims the forward slot for an order item
// Returns true if the caller won the slot, false if it is already held
func (g *InMemoryForwardGuard) Acquire(ctx context.Context, orderID, orderItemID uuid.UUID, ttl time.Duration) (bool, error) {
	key := guardKey(orderID, orderItemID)

	g.mu.Lock()
	defer g.mu.Unlock()

	if s, exists := g.slots[key]; exists {
		if time.Now().Before(s.expiresAt) {
			return false, nil // Already held
		}
		// Slot exists but expired, will be overwritten
	}

	g.slots[key] = slot{
		expiresAt: time.Now().Add(ttl),
	}

	return true, nil
}

// Release frees the slot so the next attempt can claim it
func (g *InMemoryForwardGuard) Release(ctx context.Context, orderID, orderItemID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.slots, guardKey(orderID, orderItemID))
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (g *InMemoryForwardGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired slots
func (g *InMemoryForwardGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

// cleanup removes expired slots from the guard
func (g *InMemoryForwardGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for key, s := range g.slots {
		if now.After(s.expiresAt) {
			delete(g.slots, key)
		}
	}
}

// Size returns the number of held slots (for testing/monitoring)
func (g *InMemoryForwardGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

func guardKey(orderID, orderItemID uuid.UUID) string {
	return orderID.String() + ":" + orderItemID.String()
}

// Ensure InMemoryForwardGuard implements ForwardGuard
var _ dropship.ForwardGuard = (*InMemoryForwardGuard)(nil)
