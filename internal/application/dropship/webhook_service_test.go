package dropship

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

type webhookFixture struct {
	suppliers *fakeSupplierRepo
	records   *fakeSupplierOrderRepo
	shipments *fakeShipmentWriter
	registry  *fakeRegistry
	service   *WebhookService
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		suppliers: newFakeSupplierRepo(),
		records:   newFakeSupplierOrderRepo(),
		shipments: &fakeShipmentWriter{},
		registry:  newFakeRegistry(),
	}
	f.service = NewWebhookService(f.suppliers, f.records, f.shipments, f.registry, zap.NewNop())
	return f
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookService_HandleWebhook(t *testing.T) {
	ctx := context.Background()

	setup := func(f *webhookFixture, secret string) (*dropship.Supplier, *dropship.SupplierOrder) {
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		supplier.WebhookSecret = secret
		f.suppliers.Save(ctx, supplier)
		record := forwardedRecord(supplier.ID, "EXT-1")
		f.records.Save(ctx, record)
		return supplier, record
	}

	t.Run("signed payload updates the record", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, record := setup(f, "topsecret")

		body := []byte(`{"externalOrderId":"EXT-1","status":"shipped","trackingNumber":"TRK-9","carrier":"DHL"}`)
		response, err := f.service.HandleWebhook(ctx, supplier.ID, body, sign(body, "topsecret"))
		require.NoError(t, err)
		assert.Equal(t, "SHIPPED", response.Status)

		updated, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusShipped, updated.Status)
		assert.Equal(t, "TRK-9", updated.TrackingNumber)

		require.Len(t, f.shipments.writes, 1)
		assert.Equal(t, "TRK-9", f.shipments.writes[0].TrackingNumber)
	})

	t.Run("dialect status words pass through the adapter's map", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, record := setup(f, "")
		f.registry.adapters[supplier.ID] = &fakeAdapter{
			statusMap: dropship.StatusMap{
				"in_transit": dropship.StatusShipped,
				"received":   dropship.StatusSentToSupplier,
			},
		}

		body := []byte(`{"externalOrderId":"EXT-1","status":"in_transit"}`)
		response, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		require.NoError(t, err)
		assert.Equal(t, "SHIPPED", response.Status)

		updated, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusShipped, updated.Status)
	})

	t.Run("snake_case payload shape is accepted", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, record := setup(f, "")

		body := []byte(`{"order_id":"EXT-1","status":"delivered","tracking_number":"TRK-9"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		require.NoError(t, err)

		updated, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusDelivered, updated.Status)
	})

	t.Run("wrong signature is rejected before any state change", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, record := setup(f, "topsecret")

		body := []byte(`{"externalOrderId":"EXT-1","status":"delivered"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, sign(body, "wrong-secret"))
		assert.ErrorIs(t, err, dropship.ErrWebhookSignatureInvalid)

		untouched, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusSentToSupplier, untouched.Status)
	})

	t.Run("missing signature is rejected when a secret is configured", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, _ := setup(f, "topsecret")

		body := []byte(`{"externalOrderId":"EXT-1","status":"delivered"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		assert.ErrorIs(t, err, dropship.ErrWebhookSignatureInvalid)
	})

	t.Run("sha256 prefix on the header is tolerated", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, _ := setup(f, "topsecret")

		body := []byte(`{"externalOrderId":"EXT-1","status":"shipped"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "sha256="+sign(body, "topsecret"))
		assert.NoError(t, err)
	})

	t.Run("no secret means no signature check", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, _ := setup(f, "")

		body := []byte(`{"externalOrderId":"EXT-1","status":"confirmed"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		assert.NoError(t, err)
	})

	t.Run("missing order id is rejected", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, _ := setup(f, "")

		body := []byte(`{"status":"shipped"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		assert.ErrorIs(t, err, dropship.ErrWebhookMissingOrderID)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, _ := setup(f, "")

		_, err := f.service.HandleWebhook(ctx, supplier.ID, []byte("not json"), "")
		assert.ErrorIs(t, err, dropship.ErrWebhookMissingOrderID)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		f := newWebhookFixture()
		_, err := f.service.HandleWebhook(ctx, uuid.New(), []byte(`{}`), "")
		assert.ErrorIs(t, err, dropship.ErrSupplierNotFound)
	})

	t.Run("unknown external order id", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, _ := setup(f, "")

		body := []byte(`{"externalOrderId":"EXT-MISSING","status":"shipped"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		assert.ErrorIs(t, err, dropship.ErrSupplierOrderNotFound)
	})

	t.Run("unrecognized free-text status defaults to CONFIRMED", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, record := setup(f, "")

		body := []byte(`{"externalOrderId":"EXT-1","status":"warehouse picking"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		require.NoError(t, err)

		updated, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusConfirmed, updated.Status)
	})

	t.Run("custom supplier status map is honored", func(t *testing.T) {
		f := newWebhookFixture()
		supplier := activeSupplier(dropship.AdapterKindGenericAPI)
		supplier.CustomConfig = &dropship.CustomAPIConfig{
			StatusMap: map[string]dropship.FulfillmentStatus{
				"done": dropship.StatusDelivered,
			},
		}
		f.suppliers.Save(ctx, supplier)
		record := forwardedRecord(supplier.ID, "EXT-1")
		f.records.Save(ctx, record)

		body := []byte(`{"externalOrderId":"EXT-1","status":"done"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		require.NoError(t, err)

		updated, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusDelivered, updated.Status)
	})

	t.Run("terminal record is not resurrected", func(t *testing.T) {
		f := newWebhookFixture()
		supplier, record := setup(f, "")
		record.ApplyStatusUpdate(dropship.StatusDelivered, "", "")
		f.records.Save(ctx, record)

		body := []byte(`{"externalOrderId":"EXT-1","status":"shipped"}`)
		_, err := f.service.HandleWebhook(ctx, supplier.ID, body, "")
		require.NoError(t, err)

		unchanged, err := f.records.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, dropship.StatusDelivered, unchanged.Status)
	})
}
