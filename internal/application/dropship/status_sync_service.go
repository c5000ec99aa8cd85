package dropship

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

// StatusSyncStats summarizes one status sweep over open fulfillment records
type StatusSyncStats struct {
	Scanned     int       `json:"scanned"`
	Updated     int       `json:"updated"`
	Unchanged   int       `json:"unchanged"`
	Failures    int       `json:"failures"`
	ProcessedAt time.Time `json:"processed_at"`
}

// StatusSyncService polls suppliers for the current state of open fulfillment
// records and persists only real changes. One unreachable supplier never
// aborts the sweep for the others.
type StatusSyncService struct {
	suppliers      dropship.SupplierRepository
	supplierOrders dropship.SupplierOrderRepository
	shipments      dropship.ShipmentTrackingWriter
	registry       dropship.AdapterRegistry
	batchSize      int
	logger         *zap.Logger
}

// NewStatusSyncService creates a new StatusSyncService
func NewStatusSyncService(
	suppliers dropship.SupplierRepository,
	supplierOrders dropship.SupplierOrderRepository,
	shipments dropship.ShipmentTrackingWriter,
	registry dropship.AdapterRegistry,
	batchSize int,
	logger *zap.Logger,
) *StatusSyncService {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &StatusSyncService{
		suppliers:      suppliers,
		supplierOrders: supplierOrders,
		shipments:      shipments,
		registry:       registry,
		batchSize:      batchSize,
		logger:         logger,
	}
}

// SyncStatuses polls every open fulfillment record once
func (s *StatusSyncService) SyncStatuses(ctx context.Context) (*StatusSyncStats, error) {
	stats := &StatusSyncStats{ProcessedAt: time.Now()}

	open, err := s.supplierOrders.FindOpen(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("failed to list open fulfillment records", zap.Error(err))
		return nil, err
	}
	stats.Scanned = len(open)
	if stats.Scanned == 0 {
		s.logger.Debug("no open fulfillment records to sync")
		return stats, nil
	}

	for i := range open {
		record := &open[i]
		updated, err := s.syncRecord(ctx, record)
		if err != nil {
			s.logger.Error("status sync failed for record",
				zap.String("supplier_order_id", record.ID.String()),
				zap.String("supplier_id", record.SupplierID.String()),
				zap.Error(err),
			)
			stats.Failures++
			continue
		}
		if updated {
			stats.Updated++
		} else {
			stats.Unchanged++
		}
	}

	s.logger.Info("status sweep completed",
		zap.Int("scanned", stats.Scanned),
		zap.Int("updated", stats.Updated),
		zap.Int("failures", stats.Failures),
	)
	return stats, nil
}

// syncRecord polls one record's supplier and applies the answer
func (s *StatusSyncService) syncRecord(ctx context.Context, record *dropship.SupplierOrder) (bool, error) {
	supplier, err := s.suppliers.FindByID(ctx, record.SupplierID)
	if err != nil {
		return false, err
	}

	adapter := s.registry.ResolveFor(supplier)
	result, err := adapter.GetOrderStatus(ctx, record.ExternalOrderID)
	if err != nil {
		// Adapters report UNKNOWN instead of failing, so this is unexpected
		return false, err
	}

	return applyRemoteUpdate(ctx, record, result.Status, result.TrackingNumber, result.Carrier,
		s.supplierOrders, s.shipments, s.logger)
}

// applyRemoteUpdate applies one normalized status/tracking update coming from
// a poll or a webhook: persist only when something changed, and propagate a
// newly appearing tracking number onto the shipment record.
func applyRemoteUpdate(
	ctx context.Context,
	record *dropship.SupplierOrder,
	status dropship.FulfillmentStatus,
	trackingNumber, carrier string,
	supplierOrders dropship.SupplierOrderRepository,
	shipments dropship.ShipmentTrackingWriter,
	logger *zap.Logger,
) (bool, error) {
	hadTracking := record.TrackingNumber != ""

	if !record.ApplyStatusUpdate(status, trackingNumber, carrier) {
		return false, nil
	}

	if err := supplierOrders.Save(ctx, record); err != nil {
		return false, err
	}

	if !hadTracking && record.TrackingNumber != "" {
		if err := shipments.SetTracking(ctx, record.OrderItemID, record.TrackingNumber, record.Carrier); err != nil {
			logger.Error("failed to propagate tracking number to shipment",
				zap.String("supplier_order_id", record.ID.String()),
				zap.String("order_item_id", record.OrderItemID.String()),
				zap.String("tracking_number", record.TrackingNumber),
				zap.Error(err),
			)
			// The fulfillment record already carries the number; the next
			// update with a tracking change will retry the propagation
		}
	}

	logger.Debug("fulfillment record updated",
		zap.String("supplier_order_id", record.ID.String()),
		zap.String("status", record.Status.String()),
		zap.String("tracking_number", record.TrackingNumber),
	)
	return true, nil
}
