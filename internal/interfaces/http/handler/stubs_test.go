package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/markethub/backend/internal/domain/dropship"
)

type stubSupplierRepo struct {
	mu        sync.Mutex
	suppliers map[uuid.UUID]*dropship.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*dropship.Supplier)}
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*dropship.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[id]
	if !ok {
		return nil, dropship.ErrSupplierNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSupplierRepo) FindAll(_ context.Context) ([]dropship.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dropship.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSupplierRepo) FindActive(_ context.Context) ([]dropship.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dropship.Supplier, 0)
	for _, s := range r.suppliers {
		if s.IsActive() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSupplierRepo) Save(_ context.Context, s *dropship.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

type stubSupplierOrderRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*dropship.SupplierOrder
}

func newStubSupplierOrderRepo() *stubSupplierOrderRepo {
	return &stubSupplierOrderRepo{records: make(map[uuid.UUID]*dropship.SupplierOrder)}
}

func (r *stubSupplierOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*dropship.SupplierOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, dropship.ErrSupplierOrderNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *stubSupplierOrderRepo) FindByOrderItem(_ context.Context, orderID, orderItemID uuid.UUID) (*dropship.SupplierOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.OrderID == orderID && rec.OrderItemID == orderItemID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, dropship.ErrSupplierOrderNotFound
}

func (r *stubSupplierOrderRepo) FindByExternalID(_ context.Context, supplierID uuid.UUID, externalOrderID string) (*dropship.SupplierOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.SupplierID == supplierID && rec.ExternalOrderID == externalOrderID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, dropship.ErrSupplierOrderNotFound
}

func (r *stubSupplierOrderRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]dropship.SupplierOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dropship.SupplierOrder, 0)
	for _, rec := range r.records {
		if rec.OrderID == orderID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubSupplierOrderRepo) FindOpen(_ context.Context, limit int) ([]dropship.SupplierOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dropship.SupplierOrder, 0)
	for _, rec := range r.records {
		if rec.IsOpen() && len(out) < limit {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubSupplierOrderRepo) FindFailed(_ context.Context, limit int) ([]dropship.SupplierOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dropship.SupplierOrder, 0)
	for _, rec := range r.records {
		if rec.Status == dropship.StatusFailed && len(out) < limit {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubSupplierOrderRepo) CreateIfAbsent(ctx context.Context, order *dropship.SupplierOrder) (*dropship.SupplierOrder, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.OrderID == order.OrderID && rec.OrderItemID == order.OrderItemID && rec.Status != dropship.StatusFailed {
			cp := *rec
			return &cp, false, nil
		}
	}
	cp := *order
	r.records[order.ID] = &cp
	return order, true, nil
}

func (r *stubSupplierOrderRepo) Save(_ context.Context, order *dropship.SupplierOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.records[order.ID] = &cp
	return nil
}

type stubShipments struct {
	mu     sync.Mutex
	writes int
}

func (s *stubShipments) SetTracking(_ context.Context, _ uuid.UUID, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	return nil
}

// stubAdapter answers every call with its zero behavior; only the status
// vocabulary is scriptable.
type stubAdapter struct {
	statusMap dropship.StatusMap
}

func (a *stubAdapter) Kind() dropship.AdapterKind {
	return dropship.AdapterKindManual
}

func (a *stubAdapter) StatusMap() dropship.StatusMap {
	if a.statusMap == nil {
		return dropship.StatusMap{}
	}
	return a.statusMap
}

func (a *stubAdapter) GetProduct(_ context.Context, _ string) (*dropship.ProductInfo, error) {
	return nil, nil
}

func (a *stubAdapter) GetStock(_ context.Context, _ string) (dropship.Stock, error) {
	return dropship.UnknownStock(), nil
}

func (a *stubAdapter) PlaceOrder(_ context.Context, _ *dropship.PlaceOrderRequest) (*dropship.PlaceOrderResult, error) {
	return &dropship.PlaceOrderResult{Status: dropship.StatusSentToSupplier}, nil
}

func (a *stubAdapter) GetOrderStatus(_ context.Context, _ string) (*dropship.OrderStatusResult, error) {
	return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
}

type stubRegistry struct {
	mu          sync.Mutex
	adapter     *stubAdapter
	invalidated []uuid.UUID
}

func (r *stubRegistry) Resolve(_ context.Context, _ uuid.UUID) (dropship.SupplierAdapter, error) {
	return nil, dropship.ErrSupplierNotFound
}

func (r *stubRegistry) ResolveFor(_ *dropship.Supplier) dropship.SupplierAdapter {
	if r.adapter == nil {
		return &stubAdapter{}
	}
	return r.adapter
}

func (r *stubRegistry) Invalidate(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, id)
}

type stubSweeps struct {
	running bool
	statusN int
	invN    int
	retryN  int
}

var errSweepsStopped = errors.New("scheduler is not running")

func (s *stubSweeps) TriggerStatusSweep(context.Context) error {
	if !s.running {
		return errSweepsStopped
	}
	s.statusN++
	return nil
}

func (s *stubSweeps) TriggerInventorySweep(context.Context) error {
	if !s.running {
		return errSweepsStopped
	}
	s.invN++
	return nil
}

func (s *stubSweeps) TriggerRetrySweep(context.Context) error {
	if !s.running {
		return errSweepsStopped
	}
	s.retryN++
	return nil
}

func (s *stubSweeps) IsRunning() bool { return s.running }
