package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethub/backend/internal/domain/dropship"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormMarketplaceGateway implements the collaborator ports the fulfillment
// layer has into the order, catalog and shipping tables. Fulfillment never
// owns those tables; it reads paid orders and writes back stock levels and
// tracking numbers.
type GormMarketplaceGateway struct {
	db *gorm.DB
}

// NewGormMarketplaceGateway creates a new GormMarketplaceGateway
func NewGormMarketplaceGateway(db *gorm.DB) *GormMarketplaceGateway {
	return &GormMarketplaceGateway{db: db}
}

// GetOrderForFulfillment loads the order, its line items and the saved
// shipping address.
func (g *GormMarketplaceGateway) GetOrderForFulfillment(ctx context.Context, orderID uuid.UUID) (*dropship.FulfillmentOrder, error) {
	var orderModel models.OrderModel
	if err := g.db.WithContext(ctx).First(&orderModel, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dropship.ErrOrderNotFound
		}
		return nil, err
	}

	var itemModels []models.OrderItemModel
	if err := g.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]dropship.FulfillmentOrderItem, len(itemModels))
	for i, item := range itemModels {
		items[i] = dropship.FulfillmentOrderItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return &dropship.FulfillmentOrder{
		ID:         orderModel.ID,
		Number:     orderModel.Number,
		Items:      items,
		BuyerName:  orderModel.BuyerName,
		BuyerPhone: orderModel.BuyerPhone,
		Address: dropship.ShippingAddress{
			Name:       orderModel.ShipName,
			Phone:      orderModel.ShipPhone,
			Line1:      orderModel.ShipLine1,
			Line2:      orderModel.ShipLine2,
			City:       orderModel.ShipCity,
			State:      orderModel.ShipState,
			PostalCode: orderModel.ShipPostalCode,
			Country:    orderModel.ShipCountry,
		},
	}, nil
}

// MarkProcessing moves the parent order into its processing state once at
// least one line item was forwarded.
func (g *GormMarketplaceGateway) MarkProcessing(ctx context.Context, orderID uuid.UUID) error {
	result := g.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":     "PROCESSING",
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dropship.ErrOrderNotFound
	}
	return nil
}

// SetProductStock overwrites the catalog product's stock level with the
// supplier-reported quantity.
func (g *GormMarketplaceGateway) SetProductStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	return g.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      quantity,
			"updated_at": time.Now(),
		}).Error
}

// SetTracking records the tracking number and carrier for an order item,
// creating the shipment record on first assignment.
func (g *GormMarketplaceGateway) SetTracking(ctx context.Context, orderItemID uuid.UUID, trackingNumber, carrier string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var shipment models.ShipmentModel
		err := tx.Where("order_item_id = ?", orderItemID).First(&shipment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.ShipmentModel{
				ID:             uuid.New(),
				OrderItemID:    orderItemID,
				TrackingNumber: trackingNumber,
				Carrier:        carrier,
				ShippedAt:      &now,
				CreatedAt:      now,
				UpdatedAt:      now,
			}).Error
		}
		if err != nil {
			return err
		}

		return tx.Model(&shipment).Updates(map[string]any{
			"tracking_number": trackingNumber,
			"carrier":         carrier,
			"updated_at":      now,
		}).Error
	})
}

// Ensure GormMarketplaceGateway implements the collaborator ports
var (
	_ dropship.OrderReader            = (*GormMarketplaceGateway)(nil)
	_ dropship.OrderStatusAdvancer    = (*GormMarketplaceGateway)(nil)
	_ dropship.CatalogStockWriter     = (*GormMarketplaceGateway)(nil)
	_ dropship.ShipmentTrackingWriter = (*GormMarketplaceGateway)(nil)
)
