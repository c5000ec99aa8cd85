package dropship

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

type fulfillmentFixture struct {
	marketplace *fakeMarketplace
	suppliers   *fakeSupplierRepo
	links       *fakeLinkRepo
	records     *fakeSupplierOrderRepo
	registry    *fakeRegistry
	guard       *fakeGuard
	service     *FulfillmentService
}

func newFulfillmentFixture() *fulfillmentFixture {
	f := &fulfillmentFixture{
		marketplace: newFakeMarketplace(),
		suppliers:   newFakeSupplierRepo(),
		links:       newFakeLinkRepo(),
		records:     newFakeSupplierOrderRepo(),
		registry:    newFakeRegistry(),
		guard:       newFakeGuard(),
	}
	f.service = NewFulfillmentService(
		f.marketplace, f.marketplace, f.suppliers, f.links, f.records,
		f.registry, f.guard, 50, zap.NewNop(),
	)
	return f
}

func TestFulfillmentService_FulfillOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards linked items and advances the order", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)

		linked := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2}
		unlinked := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}
		order := orderWithItems(linked, unlinked)
		f.marketplace.orders[order.ID] = order

		f.links.Save(ctx, linkFor(supplier.ID, linked.ProductID, "SKU-1"))
		adapter := &fakeAdapter{placeResult: &dropship.PlaceOrderResult{
			ExternalOrderID: "EXT-77",
			Status:          dropship.StatusConfirmed,
		}}
		f.registry.adapters[supplier.ID] = adapter

		result, err := f.service.FulfillOrder(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Forwarded)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Failed)
		assert.Equal(t, 1, adapter.placeCalls)

		record, err := f.records.FindByOrderItem(ctx, order.ID, linked.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusConfirmed, record.Status)
		assert.Equal(t, "EXT-77", record.ExternalOrderID)
		assert.Equal(t, "15.00", record.SupplierCost.StringFixed(2))
		require.NotNil(t, record.SentAt)
		require.NotNil(t, record.ConfirmedAt)

		require.Len(t, f.marketplace.processing, 1)
		assert.Equal(t, order.ID, f.marketplace.processing[0])
	})

	t.Run("re-invocation forwards nothing twice", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)

		item := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}
		order := orderWithItems(item)
		f.marketplace.orders[order.ID] = order
		f.links.Save(ctx, linkFor(supplier.ID, item.ProductID, "SKU-1"))
		adapter := &fakeAdapter{}
		f.registry.adapters[supplier.ID] = adapter

		first, err := f.service.FulfillOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, 1, first.Forwarded)

		second, err := f.service.FulfillOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Forwarded)
		assert.Equal(t, 1, second.Skipped)
		assert.Equal(t, "already forwarded", second.Items[0].Reason)

		assert.Equal(t, 1, adapter.placeCalls)
		assert.Equal(t, 1, f.records.count())
	})

	t.Run("placement failure is recorded, never lost", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)

		item := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}
		order := orderWithItems(item)
		f.marketplace.orders[order.ID] = order
		f.links.Save(ctx, linkFor(supplier.ID, item.ProductID, "SKU-1"))
		f.registry.adapters[supplier.ID] = &fakeAdapter{placeErr: dropship.ErrOrderRejected}

		result, err := f.service.FulfillOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 0, result.Forwarded)

		record, err := f.records.FindByOrderItem(ctx, order.ID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusFailed, record.Status)
		assert.Contains(t, record.Notes, "rejected")
		require.NotNil(t, record.FailedAt)

		assert.Empty(t, f.marketplace.processing, "order must not advance when nothing was forwarded")
	})

	t.Run("guard denial skips the item without an adapter call", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)

		item := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}
		order := orderWithItems(item)
		f.marketplace.orders[order.ID] = order
		f.links.Save(ctx, linkFor(supplier.ID, item.ProductID, "SKU-1"))
		adapter := &fakeAdapter{}
		f.registry.adapters[supplier.ID] = adapter
		f.guard.denyAll = true

		result, err := f.service.FulfillOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, adapter.placeCalls)
		assert.Equal(t, 0, f.records.count())
	})

	t.Run("guard outage degrades to the database check", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)

		item := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}
		order := orderWithItems(item)
		f.marketplace.orders[order.ID] = order
		f.links.Save(ctx, linkFor(supplier.ID, item.ProductID, "SKU-1"))
		f.registry.adapters[supplier.ID] = &fakeAdapter{}
		f.guard.err = context.DeadlineExceeded

		result, err := f.service.FulfillOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Forwarded)
	})

	t.Run("first active supplier wins", func(t *testing.T) {
		f := newFulfillmentFixture()
		paused := activeSupplier(dropship.AdapterKindGenericAPI)
		paused.Pause()
		active := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, paused)
		f.suppliers.Save(ctx, active)

		item := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}
		order := orderWithItems(item)
		f.marketplace.orders[order.ID] = order
		f.links.Save(ctx, linkFor(paused.ID, item.ProductID, "SKU-P"))
		f.links.Save(ctx, linkFor(active.ID, item.ProductID, "SKU-A"))
		f.registry.adapters[active.ID] = &fakeAdapter{}

		result, err := f.service.FulfillOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, 1, result.Forwarded)
		assert.Equal(t, active.ID, result.Items[0].SupplierID)
	})

	t.Run("unknown order fails the whole call", func(t *testing.T) {
		f := newFulfillmentFixture()
		_, err := f.service.FulfillOrder(ctx, uuid.New())
		assert.ErrorIs(t, err, dropship.ErrOrderNotFound)
	})
}

func TestFulfillmentService_RetryFailed(t *testing.T) {
	ctx := context.Background()

	setupFailed := func(f *fulfillmentFixture) (*dropship.Supplier, *dropship.SupplierOrder) {
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)

		item := dropship.FulfillmentOrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}
		order := orderWithItems(item)
		f.marketplace.orders[order.ID] = order
		f.links.Save(ctx, linkFor(supplier.ID, item.ProductID, "SKU-1"))

		record := dropship.NewSupplierOrder(supplier.ID, order.ID, item.ID, linkFor(supplier.ID, item.ProductID, "SKU-1").SupplierCost, "USD")
		record.MarkFailed("supplier rejected order: sku out of stock")
		f.records.Save(ctx, record)
		return supplier, record
	}

	t.Run("recovered record leaves FAILED on the same row", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier, record := setupFailed(f)
		f.registry.adapters[supplier.ID] = &fakeAdapter{placeResult: &dropship.PlaceOrderResult{
			ExternalOrderID: "EXT-RETRY",
			Status:          dropship.StatusSentToSupplier,
		}}

		stats, err := f.service.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Scanned)
		assert.Equal(t, 1, stats.Recovered)
		assert.Equal(t, 0, stats.StillFailed)

		recovered, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusSentToSupplier, recovered.Status)
		assert.Equal(t, "EXT-RETRY", recovered.ExternalOrderID)
		assert.Nil(t, recovered.FailedAt)
		assert.Equal(t, 1, f.records.count(), "retry must reuse the record, not add one")
	})

	t.Run("still failing record stays FAILED", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier, record := setupFailed(f)
		f.registry.adapters[supplier.ID] = &fakeAdapter{placeErr: dropship.ErrSupplierUnavailable}

		stats, err := f.service.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.StillFailed)

		stillFailed, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusFailed, stillFailed.Status)
	})

	t.Run("paused supplier is skipped untouched", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier, record := setupFailed(f)
		supplier.Pause()

		stats, err := f.service.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Skipped)

		untouched, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusFailed, untouched.Status)
	})

	t.Run("nothing failed is a no-op", func(t *testing.T) {
		f := newFulfillmentFixture()
		stats, err := f.service.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Scanned)
	})
}

func TestFulfillmentService_RetryOne(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a non-failed record", func(t *testing.T) {
		f := newFulfillmentFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)

		record := dropship.NewSupplierOrder(supplier.ID, uuid.New(), uuid.New(), linkFor(supplier.ID, uuid.New(), "S").SupplierCost, "USD")
		record.MarkForwarded(&dropship.PlaceOrderResult{ExternalOrderID: "EXT-1", Status: dropship.StatusSentToSupplier})
		f.records.Save(ctx, record)

		_, err := f.service.RetryOne(ctx, record.ID)
		assert.ErrorIs(t, err, dropship.ErrSupplierOrderNotRetryable)
	})

	t.Run("unknown record", func(t *testing.T) {
		f := newFulfillmentFixture()
		_, err := f.service.RetryOne(ctx, uuid.New())
		assert.ErrorIs(t, err, dropship.ErrSupplierOrderNotFound)
	})
}
