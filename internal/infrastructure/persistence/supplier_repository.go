package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethub/backend/internal/domain/dropship"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dropship.ErrSupplierNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all suppliers, newest first
func (r *GormSupplierRepository) FindAll(ctx context.Context) ([]dropship.Supplier, error) {
	var supplierModels []models.SupplierModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&supplierModels).Error; err != nil {
		return nil, err
	}
	return toDomainSuppliers(supplierModels), nil
}

// FindActive returns all suppliers in ACTIVE status
func (r *GormSupplierRepository) FindActive(ctx context.Context) ([]dropship.Supplier, error) {
	var supplierModels []models.SupplierModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", dropship.SupplierStatusActive).
		Order("name ASC").
		Find(&supplierModels).Error; err != nil {
		return nil, err
	}
	return toDomainSuppliers(supplierModels), nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *dropship.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainSuppliers(supplierModels []models.SupplierModel) []dropship.Supplier {
	suppliers := make([]dropship.Supplier, len(supplierModels))
	for i, model := range supplierModels {
		suppliers[i] = *model.ToDomain()
	}
	return suppliers
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ dropship.SupplierRepository = (*GormSupplierRepository)(nil)
