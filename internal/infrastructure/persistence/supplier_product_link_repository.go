package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethub/backend/internal/domain/dropship"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormSupplierProductLinkRepository implements SupplierProductLinkRepository using GORM
type GormSupplierProductLinkRepository struct {
	db *gorm.DB
}

// NewGormSupplierProductLinkRepository creates a new GormSupplierProductLinkRepository
func NewGormSupplierProductLinkRepository(db *gorm.DB) *GormSupplierProductLinkRepository {
	return &GormSupplierProductLinkRepository{db: db}
}

// FindByID finds a link by its ID
func (r *GormSupplierProductLinkRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierProductLink, error) {
	var model models.SupplierProductLinkModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dropship.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByProduct returns the active links for a product, oldest first,
// so supplier selection stays deterministic.
func (r *GormSupplierProductLinkRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]dropship.SupplierProductLink, error) {
	var linkModels []models.SupplierProductLinkModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("created_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	return toDomainLinks(linkModels), nil
}

// FindActive returns every active link, for the inventory sweep
func (r *GormSupplierProductLinkRepository) FindActive(ctx context.Context) ([]dropship.SupplierProductLink, error) {
	var linkModels []models.SupplierProductLinkModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("supplier_id ASC, created_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	return toDomainLinks(linkModels), nil
}

// FindBySupplierAndProduct finds the unique link for a (supplier, product) pair
func (r *GormSupplierProductLinkRepository) FindBySupplierAndProduct(ctx context.Context, supplierID, productID uuid.UUID) (*dropship.SupplierProductLink, error) {
	var model models.SupplierProductLinkModel
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dropship.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySupplier returns all links for a supplier
func (r *GormSupplierProductLinkRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]dropship.SupplierProductLink, error) {
	var linkModels []models.SupplierProductLinkModel
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	return toDomainLinks(linkModels), nil
}

// Save creates or updates a link
func (r *GormSupplierProductLinkRepository) Save(ctx context.Context, link *dropship.SupplierProductLink) error {
	model := models.SupplierProductLinkModelFromDomain(link)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a link
func (r *GormSupplierProductLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SupplierProductLinkModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dropship.ErrLinkNotFound
	}
	return nil
}

func toDomainLinks(linkModels []models.SupplierProductLinkModel) []dropship.SupplierProductLink {
	links := make([]dropship.SupplierProductLink, len(linkModels))
	for i, model := range linkModels {
		links[i] = *model.ToDomain()
	}
	return links
}

// Ensure GormSupplierProductLinkRepository implements SupplierProductLinkRepository
var _ dropship.SupplierProductLinkRepository = (*GormSupplierProductLinkRepository)(nil)
