package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/markethub/backend/internal/domain/dropship"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormSupplierOrderRepository implements SupplierOrderRepository using GORM
type GormSupplierOrderRepository struct {
	db *gorm.DB
}

// NewGormSupplierOrderRepository creates a new GormSupplierOrderRepository
func NewGormSupplierOrderRepository(db *gorm.DB) *GormSupplierOrderRepository {
	return &GormSupplierOrderRepository{db: db}
}

// FindByID finds a fulfillment record by its ID
func (r *GormSupplierOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierOrder, error) {
	var model models.SupplierOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dropship.ErrSupplierOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderItem finds the record for an (order, order item) pair. When a
// failed record coexists with a live one the live record wins, so retry
// checks see the attempt that matters.
func (r *GormSupplierOrderRepository) FindByOrderItem(ctx context.Context, orderID, orderItemID uuid.UUID) (*dropship.SupplierOrder, error) {
	var model models.SupplierOrderModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND order_item_id = ?", orderID, orderItemID).
		Order("CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END ASC, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dropship.ErrSupplierOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds the record a supplier's external order id refers to
func (r *GormSupplierOrderRepository) FindByExternalID(ctx context.Context, supplierID uuid.UUID, externalOrderID string) (*dropship.SupplierOrder, error) {
	var model models.SupplierOrderModel
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND external_order_id = ?", supplierID, externalOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dropship.ErrSupplierOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder returns all records for a marketplace order
func (r *GormSupplierOrderRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]dropship.SupplierOrder, error) {
	var orderModels []models.SupplierOrderModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainSupplierOrders(orderModels), nil
}

// FindOpen returns records not yet in a terminal state, oldest first, for
// the status sweep. FAILED records are excluded; they belong to the retry
// sweep.
func (r *GormSupplierOrderRepository) FindOpen(ctx context.Context, limit int) ([]dropship.SupplierOrder, error) {
	var orderModels []models.SupplierOrderModel
	query := r.db.WithContext(ctx).
		Where("status NOT IN ?", []dropship.FulfillmentStatus{
			dropship.StatusDelivered,
			dropship.StatusCancelled,
			dropship.StatusFailed,
		}).
		Where("external_order_id <> ''").
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainSupplierOrders(orderModels), nil
}

// FindFailed returns FAILED records, oldest failure first, for the retry sweep
func (r *GormSupplierOrderRepository) FindFailed(ctx context.Context, limit int) ([]dropship.SupplierOrder, error) {
	var orderModels []models.SupplierOrderModel
	query := r.db.WithContext(ctx).
		Where("status = ?", dropship.StatusFailed).
		Order("failed_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainSupplierOrders(orderModels), nil
}

// CreateIfAbsent inserts the record unless a non-failed record already exists
// for the same (order, order item) pair. The read-check catches the common
// case with the existing row locked; the partial unique index on
// (order_id, order_item_id) WHERE status <> 'FAILED' is the authority when
// two concurrent triggers both pass the check, so the loser's insert fails
// and the surviving row is returned instead.
func (r *GormSupplierOrderRepository) CreateIfAbsent(ctx context.Context, order *dropship.SupplierOrder) (*dropship.SupplierOrder, bool, error) {
	var (
		surviving *dropship.SupplierOrder
		created   bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SupplierOrderModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ? AND order_item_id = ? AND status <> ?",
				order.OrderID, order.OrderItemID, dropship.StatusFailed).
			First(&existing).Error
		if err == nil {
			surviving = existing.ToDomain()
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		model := models.SupplierOrderModelFromDomain(order)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		surviving = order
		created = true
		return nil
	})
	if err != nil {
		// A unique violation aborts the transaction, so the winner is read
		// back afterwards.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, ferr := r.FindByOrderItem(ctx, order.OrderID, order.OrderItemID)
			if ferr != nil {
				return nil, false, ferr
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	return surviving, created, nil
}

// Save updates an existing fulfillment record
func (r *GormSupplierOrderRepository) Save(ctx context.Context, order *dropship.SupplierOrder) error {
	model := models.SupplierOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainSupplierOrders(orderModels []models.SupplierOrderModel) []dropship.SupplierOrder {
	orders := make([]dropship.SupplierOrder, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders
}

// Ensure GormSupplierOrderRepository implements SupplierOrderRepository
var _ dropship.SupplierOrderRepository = (*GormSupplierOrderRepository)(nil)
