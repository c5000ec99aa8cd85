package dropship

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

// forwardGuardTTL bounds how long a crashed forward can hold its slot
const forwardGuardTTL = 10 * time.Minute

// ItemForwardResult reports what happened to one order line item during a
// fulfillment run
type ItemForwardResult struct {
	OrderItemID     uuid.UUID `json:"order_item_id"`
	SupplierOrderID uuid.UUID `json:"supplier_order_id,omitempty"`
	SupplierID      uuid.UUID `json:"supplier_id,omitempty"`
	Status          string    `json:"status,omitempty"`
	Skipped         bool      `json:"skipped"`
	Reason          string    `json:"reason,omitempty"`
}

// FulfillmentResult summarizes one fulfillment run over a marketplace order
type FulfillmentResult struct {
	OrderID   uuid.UUID           `json:"order_id"`
	Forwarded int                 `json:"forwarded"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
	Items     []ItemForwardResult `json:"items"`
}

// RetryStats summarizes one retry sweep over FAILED fulfillment records
type RetryStats struct {
	Scanned     int       `json:"scanned"`
	Recovered   int       `json:"recovered"`
	StillFailed int       `json:"still_failed"`
	Skipped     int       `json:"skipped"`
	ProcessedAt time.Time `json:"processed_at"`
}

// FulfillmentService forwards paid order line items to their suppliers. Every
// entry point is safe to re-invoke: a Redis slot guard short-circuits
// concurrent duplicates cheaply, and the per-(order, order item) existence
// check in the repository is the authoritative gate.
type FulfillmentService struct {
	orders         dropship.OrderReader
	orderAdvancer  dropship.OrderStatusAdvancer
	suppliers      dropship.SupplierRepository
	links          dropship.SupplierProductLinkRepository
	supplierOrders dropship.SupplierOrderRepository
	registry       dropship.AdapterRegistry
	guard          dropship.ForwardGuard
	retryBatchSize int
	logger         *zap.Logger
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(
	orders dropship.OrderReader,
	orderAdvancer dropship.OrderStatusAdvancer,
	suppliers dropship.SupplierRepository,
	links dropship.SupplierProductLinkRepository,
	supplierOrders dropship.SupplierOrderRepository,
	registry dropship.AdapterRegistry,
	guard dropship.ForwardGuard,
	retryBatchSize int,
	logger *zap.Logger,
) *FulfillmentService {
	if retryBatchSize <= 0 {
		retryBatchSize = 50
	}
	return &FulfillmentService{
		orders:         orders,
		orderAdvancer:  orderAdvancer,
		suppliers:      suppliers,
		links:          links,
		supplierOrders: supplierOrders,
		registry:       registry,
		guard:          guard,
		retryBatchSize: retryBatchSize,
		logger:         logger,
	}
}

// FulfillOrder forwards every dropship-eligible line item of a paid order to
// its supplier. Items without an active supplier link are skipped, items
// already forwarded are skipped, and a failed placement is recorded as a
// FAILED record for the retry sweep rather than aborting the other items.
// When at least one item was forwarded the parent order advances to its
// processing state.
func (s *FulfillmentService) FulfillOrder(ctx context.Context, orderID uuid.UUID) (*FulfillmentResult, error) {
	order, err := s.orders.GetOrderForFulfillment(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order for fulfillment: %w", err)
	}

	result := &FulfillmentResult{OrderID: orderID}
	for _, item := range order.Items {
		itemResult := s.forwardItem(ctx, order, item)
		result.Items = append(result.Items, itemResult)
		switch {
		case itemResult.Skipped:
			result.Skipped++
		case itemResult.Status == dropship.StatusFailed.String():
			result.Failed++
		default:
			result.Forwarded++
		}
	}

	if result.Forwarded > 0 {
		if err := s.orderAdvancer.MarkProcessing(ctx, orderID); err != nil {
			s.logger.Error("failed to advance order to processing",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("fulfillment run completed",
		zap.String("order_id", orderID.String()),
		zap.Int("forwarded", result.Forwarded),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// forwardItem places one line item with the first active supplier linked to
// its product. The returned result is always populated; forwarding failures
// are captured in the fulfillment record, never lost.
func (s *FulfillmentService) forwardItem(ctx context.Context, order *dropship.FulfillmentOrder, item dropship.FulfillmentOrderItem) ItemForwardResult {
	result := ItemForwardResult{OrderItemID: item.ID}

	link, supplier, err := s.selectSupplier(ctx, item.ProductID)
	if err != nil {
		s.logger.Error("supplier selection failed",
			zap.String("order_item_id", item.ID.String()),
			zap.Error(err),
		)
		result.Skipped = true
		result.Reason = "supplier selection failed"
		return result
	}
	if link == nil {
		result.Skipped = true
		result.Reason = "no active supplier link"
		return result
	}
	result.SupplierID = supplier.ID

	won, err := s.guard.Acquire(ctx, order.ID, item.ID, forwardGuardTTL)
	if err != nil {
		// The DB existence check still protects correctness
		s.logger.Warn("forward guard unavailable, continuing",
			zap.String("order_item_id", item.ID.String()),
			zap.Error(err),
		)
	} else if !won {
		result.Skipped = true
		result.Reason = "forward already in progress"
		return result
	}

	cost := link.SupplierCost.Mul(decimal.NewFromInt(int64(item.Quantity)))
	record := dropship.NewSupplierOrder(supplier.ID, order.ID, item.ID, cost, supplier.Currency)
	surviving, created, err := s.supplierOrders.CreateIfAbsent(ctx, record)
	if err != nil {
		s.releaseGuard(ctx, order.ID, item.ID)
		s.logger.Error("failed to create fulfillment record",
			zap.String("order_item_id", item.ID.String()),
			zap.Error(err),
		)
		result.Skipped = true
		result.Reason = "could not create fulfillment record"
		return result
	}
	if !created {
		s.releaseGuard(ctx, order.ID, item.ID)
		result.Skipped = true
		result.SupplierOrderID = surviving.ID
		result.Status = surviving.Status.String()
		result.Reason = "already forwarded"
		return result
	}

	s.placeWithSupplier(ctx, supplier, link, record, order, item)
	s.releaseGuard(ctx, order.ID, item.ID)

	result.SupplierOrderID = record.ID
	result.Status = record.Status.String()
	if record.Status == dropship.StatusFailed {
		result.Reason = record.Notes
	}
	return result
}

// placeWithSupplier performs the adapter call and persists the outcome on the
// already-created record
func (s *FulfillmentService) placeWithSupplier(
	ctx context.Context,
	supplier *dropship.Supplier,
	link *dropship.SupplierProductLink,
	record *dropship.SupplierOrder,
	order *dropship.FulfillmentOrder,
	item dropship.FulfillmentOrderItem,
) {
	adapter := s.registry.ResolveFor(supplier)

	address := order.Address
	if address.Name == "" {
		address.Name = order.BuyerName
	}
	if address.Phone == "" {
		address.Phone = order.BuyerPhone
	}

	placement, err := adapter.PlaceOrder(ctx, &dropship.PlaceOrderRequest{
		ReferenceID: item.ID,
		SKU:         link.SupplierSKU,
		Quantity:    item.Quantity,
		UnitCost:    link.SupplierCost,
		Currency:    supplier.Currency,
		Address:     address,
		Note:        fmt.Sprintf("marketplace order %s", order.Number),
	})
	if err != nil {
		record.MarkFailed(err.Error())
		s.logger.Error("order placement failed",
			zap.String("supplier_id", supplier.ID.String()),
			zap.String("order_item_id", item.ID.String()),
			zap.String("sku", link.SupplierSKU),
			zap.Error(err),
		)
	} else {
		record.MarkForwarded(placement)
		s.logger.Info("order item forwarded",
			zap.String("supplier_id", supplier.ID.String()),
			zap.String("order_item_id", item.ID.String()),
			zap.String("external_order_id", record.ExternalOrderID),
			zap.String("status", record.Status.String()),
		)
	}

	if err := s.supplierOrders.Save(ctx, record); err != nil {
		s.logger.Error("failed to persist fulfillment record",
			zap.String("supplier_order_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

// selectSupplier returns the first active link whose supplier is ACTIVE, or
// (nil, nil, nil) when the product is not dropshipped
func (s *FulfillmentService) selectSupplier(ctx context.Context, productID uuid.UUID) (*dropship.SupplierProductLink, *dropship.Supplier, error) {
	candidates, err := s.links.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	for i := range candidates {
		link := &candidates[i]
		supplier, err := s.suppliers.FindByID(ctx, link.SupplierID)
		if err != nil {
			s.logger.Warn("linked supplier could not be loaded",
				zap.String("supplier_id", link.SupplierID.String()),
				zap.Error(err),
			)
			continue
		}
		if supplier.IsActive() {
			return link, supplier, nil
		}
	}
	return nil, nil, nil
}

func (s *FulfillmentService) releaseGuard(ctx context.Context, orderID, orderItemID uuid.UUID) {
	if err := s.guard.Release(ctx, orderID, orderItemID); err != nil {
		s.logger.Warn("failed to release forward slot",
			zap.String("order_item_id", orderItemID.String()),
			zap.Error(err),
		)
	}
}

// RetryFailed re-attempts forwarding for FAILED fulfillment records. The
// record itself is reused: a successful retry leaves FAILED through
// MarkForwarded, so no duplicate row ever appears.
func (s *FulfillmentService) RetryFailed(ctx context.Context) (*RetryStats, error) {
	stats := &RetryStats{ProcessedAt: time.Now()}

	failed, err := s.supplierOrders.FindFailed(ctx, s.retryBatchSize)
	if err != nil {
		s.logger.Error("failed to list FAILED fulfillment records", zap.Error(err))
		return nil, err
	}
	stats.Scanned = len(failed)
	if stats.Scanned == 0 {
		return stats, nil
	}

	for i := range failed {
		record := &failed[i]
		recovered, skipped := s.retryRecord(ctx, record)
		switch {
		case skipped:
			stats.Skipped++
		case recovered:
			stats.Recovered++
		default:
			stats.StillFailed++
		}
	}

	s.logger.Info("retry sweep completed",
		zap.Int("scanned", stats.Scanned),
		zap.Int("recovered", stats.Recovered),
		zap.Int("still_failed", stats.StillFailed),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// RetryOne re-attempts a single FAILED record, for the operator-facing
// manual retry endpoint
func (s *FulfillmentService) RetryOne(ctx context.Context, supplierOrderID uuid.UUID) (*SupplierOrderResponse, error) {
	record, err := s.supplierOrders.FindByID(ctx, supplierOrderID)
	if err != nil {
		return nil, err
	}
	if !record.Status.IsRetryable() {
		return nil, fmt.Errorf("%w: record %s is %s", dropship.ErrSupplierOrderNotRetryable, record.ID, record.Status)
	}
	s.retryRecord(ctx, record)
	response := ToSupplierOrderResponse(record)
	return &response, nil
}

// ListByOrder retrieves the fulfillment records for a marketplace order
func (s *FulfillmentService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]SupplierOrderResponse, error) {
	records, err := s.supplierOrders.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToSupplierOrderResponses(records), nil
}

// ListFailed retrieves the FAILED fulfillment records awaiting retry
func (s *FulfillmentService) ListFailed(ctx context.Context) ([]SupplierOrderResponse, error) {
	records, err := s.supplierOrders.FindFailed(ctx, s.retryBatchSize)
	if err != nil {
		return nil, err
	}
	return ToSupplierOrderResponses(records), nil
}

// retryRecord re-places one FAILED record with its original supplier. Reports
// (recovered, skipped); a record whose order context can no longer be loaded
// or whose supplier went inactive is skipped untouched.
func (s *FulfillmentService) retryRecord(ctx context.Context, record *dropship.SupplierOrder) (bool, bool) {
	supplier, err := s.suppliers.FindByID(ctx, record.SupplierID)
	if err != nil {
		s.logger.Error("retry: supplier could not be loaded",
			zap.String("supplier_order_id", record.ID.String()),
			zap.String("supplier_id", record.SupplierID.String()),
			zap.Error(err),
		)
		return false, true
	}
	if !supplier.IsActive() {
		return false, true
	}

	order, err := s.orders.GetOrderForFulfillment(ctx, record.OrderID)
	if err != nil {
		s.logger.Error("retry: order could not be loaded",
			zap.String("supplier_order_id", record.ID.String()),
			zap.String("order_id", record.OrderID.String()),
			zap.Error(err),
		)
		return false, true
	}

	var item *dropship.FulfillmentOrderItem
	for i := range order.Items {
		if order.Items[i].ID == record.OrderItemID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		s.logger.Warn("retry: order item no longer present",
			zap.String("supplier_order_id", record.ID.String()),
			zap.String("order_item_id", record.OrderItemID.String()),
		)
		return false, true
	}

	link, err := s.links.FindBySupplierAndProduct(ctx, record.SupplierID, item.ProductID)
	if err != nil {
		s.logger.Warn("retry: supplier link no longer present",
			zap.String("supplier_order_id", record.ID.String()),
			zap.Error(err),
		)
		return false, true
	}

	s.placeWithSupplier(ctx, supplier, link, record, order, *item)
	return record.Status != dropship.StatusFailed, false
}
