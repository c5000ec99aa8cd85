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

type inventorySyncFixture struct {
	suppliers *fakeSupplierRepo
	links     *fakeLinkRepo
	catalog   *fakeCatalogWriter
	registry  *fakeRegistry
	service   *InventorySyncService
}

func newInventorySyncFixture() *inventorySyncFixture {
	f := &inventorySyncFixture{
		suppliers: newFakeSupplierRepo(),
		links:     newFakeLinkRepo(),
		catalog:   &fakeCatalogWriter{},
		registry:  newFakeRegistry(),
	}
	f.service = NewInventorySyncService(f.suppliers, f.links, f.catalog, f.registry, zap.NewNop())
	return f
}

func TestInventorySyncService_SyncInventory(t *testing.T) {
	ctx := context.Background()

	t.Run("writes changed stock through to link and catalog", func(t *testing.T) {
		f := newInventorySyncFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)
		productID := uuid.New()
		link := linkFor(supplier.ID, productID, "SKU-1")
		f.links.Save(ctx, link)
		f.registry.adapters[supplier.ID] = &fakeAdapter{stock: dropship.KnownStock(42)}

		stats, err := f.service.SyncInventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Scanned)
		assert.Equal(t, 1, stats.Updated)

		require.Len(t, f.catalog.writes, 1)
		assert.Equal(t, productID, f.catalog.writes[0].ProductID)
		assert.Equal(t, 42, f.catalog.writes[0].Quantity)

		synced, err := f.links.FindByID(ctx, link.ID)
		require.NoError(t, err)
		require.NotNil(t, synced.LastSyncedStock)
		assert.Equal(t, 42, *synced.LastSyncedStock)
		require.NotNil(t, synced.LastSyncedAt)
	})

	t.Run("unchanged stock does not touch the catalog", func(t *testing.T) {
		f := newInventorySyncFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, supplier)
		link := linkFor(supplier.ID, uuid.New(), "SKU-1")
		link.RecordStock(42)
		f.links.Save(ctx, link)
		f.registry.adapters[supplier.ID] = &fakeAdapter{stock: dropship.KnownStock(42)}

		stats, err := f.service.SyncInventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Unchanged)
		assert.Empty(t, f.catalog.writes)
	})

	t.Run("unknown stock never overwrites the catalog", func(t *testing.T) {
		f := newInventorySyncFixture()
		supplier := activeSupplier(dropship.AdapterKindManual)
		f.suppliers.Save(ctx, supplier)
		link := linkFor(supplier.ID, uuid.New(), "SKU-1")
		link.RecordStock(7)
		f.links.Save(ctx, link)
		f.registry.adapters[supplier.ID] = &fakeAdapter{stock: dropship.UnknownStock()}

		stats, err := f.service.SyncInventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Unknown)
		assert.Empty(t, f.catalog.writes)

		untouched, err := f.links.FindByID(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, *untouched.LastSyncedStock)
	})

	t.Run("paused supplier is skipped", func(t *testing.T) {
		f := newInventorySyncFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		supplier.Pause()
		f.suppliers.Save(ctx, supplier)
		f.links.Save(ctx, linkFor(supplier.ID, uuid.New(), "SKU-1"))
		adapter := &fakeAdapter{stock: dropship.KnownStock(10)}
		f.registry.adapters[supplier.ID] = adapter

		stats, err := f.service.SyncInventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Unknown)
		assert.Empty(t, f.catalog.writes)
	})

	t.Run("one failing stock query does not stop the sweep", func(t *testing.T) {
		f := newInventorySyncFixture()
		broken := activeSupplier(dropship.AdapterKindGenericAPI)
		healthy := activeSupplier(dropship.AdapterKindGenericAPI)
		f.suppliers.Save(ctx, broken)
		f.suppliers.Save(ctx, healthy)
		f.links.Save(ctx, linkFor(broken.ID, uuid.New(), "SKU-B"))
		healthyProduct := uuid.New()
		f.links.Save(ctx, linkFor(healthy.ID, healthyProduct, "SKU-H"))
		f.registry.adapters[broken.ID] = &fakeAdapter{stockErr: dropship.ErrSupplierUnavailable}
		f.registry.adapters[healthy.ID] = &fakeAdapter{stock: dropship.KnownStock(5)}

		stats, err := f.service.SyncInventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Scanned)
		assert.Equal(t, 1, stats.Failures)
		assert.Equal(t, 1, stats.Updated)

		require.Len(t, f.catalog.writes, 1)
		assert.Equal(t, healthyProduct, f.catalog.writes[0].ProductID)
	})
}
