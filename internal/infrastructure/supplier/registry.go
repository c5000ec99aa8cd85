package supplier

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

// Registry resolves suppliers to live adapter instances. It is constructed
// once at startup and handed by reference to the orchestrator, reconcilers
// and webhook path; there is no process-wide mutable adapter table.
//
// Adapters are built lazily from the supplier's stored configuration and
// cached per supplier. Unknown or misconfigured kinds fall back to the
// manual adapter so fulfillment records are still created for a human to
// handle.
type Registry struct {
	suppliers dropship.SupplierRepository
	logger    *zap.Logger
	manual    *ManualAdapter

	mu    sync.RWMutex
	cache map[uuid.UUID]dropship.SupplierAdapter
}

// NewRegistry creates an adapter registry backed by the supplier repository.
func NewRegistry(suppliers dropship.SupplierRepository, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		suppliers: suppliers,
		logger:    logger,
		manual:    NewManualAdapter(),
		cache:     make(map[uuid.UUID]dropship.SupplierAdapter),
	}
}

// Resolve returns the adapter for the given supplier id, loading the
// supplier's configuration on first use.
func (r *Registry) Resolve(ctx context.Context, supplierID uuid.UUID) (dropship.SupplierAdapter, error) {
	r.mu.RLock()
	adapter, ok := r.cache[supplierID]
	r.mu.RUnlock()
	if ok {
		return adapter, nil
	}

	s, err := r.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	return r.ResolveFor(s), nil
}

// ResolveFor returns the cached adapter for an already loaded supplier,
// building and caching one on first use.
func (r *Registry) ResolveFor(s *dropship.Supplier) dropship.SupplierAdapter {
	r.mu.RLock()
	adapter, ok := r.cache[s.ID]
	r.mu.RUnlock()
	if ok {
		return adapter
	}

	adapter = r.build(s)

	r.mu.Lock()
	r.cache[s.ID] = adapter
	r.mu.Unlock()

	return adapter
}

// build constructs the adapter for a supplier's stored configuration.
// Construction failures degrade to the manual adapter rather than blocking
// fulfillment.
func (r *Registry) build(s *dropship.Supplier) dropship.SupplierAdapter {
	cfg := &AdapterConfig{
		BaseURL: s.BaseURL,
		APIKey:  s.APIKey,
	}

	var (
		adapter dropship.SupplierAdapter
		err     error
	)
	switch s.Kind {
	case dropship.AdapterKindCJDropship:
		adapter, err = NewCJDropshipAdapter(cfg)
	case dropship.AdapterKindPrintHub:
		adapter, err = NewPrintHubAdapter(cfg)
	case dropship.AdapterKindGenericAPI:
		adapter, err = NewGenericAPIAdapter(cfg)
	case dropship.AdapterKindCustomAPI:
		adapter, err = NewCustomAPIAdapter(cfg, s.CustomConfig)
	case dropship.AdapterKindManual:
		return r.manual
	default:
		r.logger.Warn("Unknown adapter kind, falling back to manual fulfillment",
			zap.String("supplier_id", s.ID.String()),
			zap.String("kind", s.Kind.String()),
		)
		return r.manual
	}

	if err != nil {
		r.logger.Warn("Adapter construction failed, falling back to manual fulfillment",
			zap.String("supplier_id", s.ID.String()),
			zap.String("kind", s.Kind.String()),
			zap.Error(err),
		)
		return r.manual
	}
	return adapter
}

// Invalidate drops the cached adapter for a supplier so the next resolve
// rebuilds it from fresh configuration. Called after config changes.
func (r *Registry) Invalidate(supplierID uuid.UUID) {
	r.mu.Lock()
	delete(r.cache, supplierID)
	r.mu.Unlock()
}

// Ensure Registry implements AdapterRegistry interface
var _ dropship.AdapterRegistry = (*Registry)(nil)
