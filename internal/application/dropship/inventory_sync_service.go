package dropship

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

// InventorySyncStats summarizes one inventory sweep over active links
type InventorySyncStats struct {
	Scanned     int       `json:"scanned"`
	Updated     int       `json:"updated"`
	Unchanged   int       `json:"unchanged"`
	Unknown     int       `json:"unknown"`
	Failures    int       `json:"failures"`
	ProcessedAt time.Time `json:"processed_at"`
}

// InventorySyncService reconciles supplier-reported stock onto linked catalog
// products. Once a product is linked, the supplier is the source of truth for
// its stock; unknown answers never overwrite the catalog.
type InventorySyncService struct {
	suppliers dropship.SupplierRepository
	links     dropship.SupplierProductLinkRepository
	catalog   dropship.CatalogStockWriter
	registry  dropship.AdapterRegistry
	logger    *zap.Logger
}

// NewInventorySyncService creates a new InventorySyncService
func NewInventorySyncService(
	suppliers dropship.SupplierRepository,
	links dropship.SupplierProductLinkRepository,
	catalog dropship.CatalogStockWriter,
	registry dropship.AdapterRegistry,
	logger *zap.Logger,
) *InventorySyncService {
	return &InventorySyncService{
		suppliers: suppliers,
		links:     links,
		catalog:   catalog,
		registry:  registry,
		logger:    logger,
	}
}

// SyncInventory polls every active link's supplier stock once
func (s *InventorySyncService) SyncInventory(ctx context.Context) (*InventorySyncStats, error) {
	stats := &InventorySyncStats{ProcessedAt: time.Now()}

	active, err := s.links.FindActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active supplier links", zap.Error(err))
		return nil, err
	}
	stats.Scanned = len(active)
	if stats.Scanned == 0 {
		s.logger.Debug("no active supplier links to sync")
		return stats, nil
	}

	// Suppliers repeat across links within one sweep
	supplierCache := make(map[uuid.UUID]*dropship.Supplier)

	for i := range active {
		link := &active[i]
		outcome := s.syncLink(ctx, link, supplierCache)
		switch outcome {
		case syncUpdated:
			stats.Updated++
		case syncUnchanged:
			stats.Unchanged++
		case syncUnknown:
			stats.Unknown++
		case syncFailed:
			stats.Failures++
		}
	}

	s.logger.Info("inventory sweep completed",
		zap.Int("scanned", stats.Scanned),
		zap.Int("updated", stats.Updated),
		zap.Int("unknown", stats.Unknown),
		zap.Int("failures", stats.Failures),
	)
	return stats, nil
}

type syncOutcome int

const (
	syncUpdated syncOutcome = iota
	syncUnchanged
	syncUnknown
	syncFailed
)

// syncLink reconciles one link's stock from its supplier
func (s *InventorySyncService) syncLink(ctx context.Context, link *dropship.SupplierProductLink, cache map[uuid.UUID]*dropship.Supplier) syncOutcome {
	supplier, ok := cache[link.SupplierID]
	if !ok {
		loaded, err := s.suppliers.FindByID(ctx, link.SupplierID)
		if err != nil {
			s.logger.Error("inventory sync: supplier could not be loaded",
				zap.String("link_id", link.ID.String()),
				zap.String("supplier_id", link.SupplierID.String()),
				zap.Error(err),
			)
			return syncFailed
		}
		supplier = loaded
		cache[link.SupplierID] = supplier
	}
	if !supplier.IsActive() {
		return syncUnknown
	}

	adapter := s.registry.ResolveFor(supplier)
	stock, err := adapter.GetStock(ctx, link.SupplierSKU)
	if err != nil {
		s.logger.Error("inventory sync: stock query failed",
			zap.String("supplier_id", supplier.ID.String()),
			zap.String("sku", link.SupplierSKU),
			zap.Error(err),
		)
		return syncFailed
	}
	if !stock.Known {
		return syncUnknown
	}

	changed := link.RecordStock(stock.Quantity)
	if err := s.links.Save(ctx, link); err != nil {
		s.logger.Error("inventory sync: failed to persist link",
			zap.String("link_id", link.ID.String()),
			zap.Error(err),
		)
		return syncFailed
	}
	if !changed {
		return syncUnchanged
	}

	if err := s.catalog.SetProductStock(ctx, link.ProductID, stock.Quantity); err != nil {
		s.logger.Error("inventory sync: failed to write catalog stock",
			zap.String("product_id", link.ProductID.String()),
			zap.Int("quantity", stock.Quantity),
			zap.Error(err),
		)
		return syncFailed
	}

	s.logger.Debug("catalog stock updated from supplier",
		zap.String("product_id", link.ProductID.String()),
		zap.String("sku", link.SupplierSKU),
		zap.Int("quantity", stock.Quantity),
	)
	return syncUpdated
}
