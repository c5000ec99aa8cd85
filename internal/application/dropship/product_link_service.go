package dropship

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

// ProductLinkService handles the admin surface for supplier product links
type ProductLinkService struct {
	suppliers dropship.SupplierRepository
	links     dropship.SupplierProductLinkRepository
	logger    *zap.Logger
}

// NewProductLinkService creates a new ProductLinkService
func NewProductLinkService(suppliers dropship.SupplierRepository, links dropship.SupplierProductLinkRepository, logger *zap.Logger) *ProductLinkService {
	return &ProductLinkService{
		suppliers: suppliers,
		links:     links,
		logger:    logger,
	}
}

// Create links a catalog product to a supplier SKU. The (supplier, product)
// pair is unique; linking twice fails.
func (s *ProductLinkService) Create(ctx context.Context, req CreateProductLinkRequest) (*ProductLinkResponse, error) {
	if _, err := s.suppliers.FindByID(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	existing, err := s.links.FindBySupplierAndProduct(ctx, req.SupplierID, req.ProductID)
	if err != nil && !errors.Is(err, dropship.ErrLinkNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, dropship.ErrLinkAlreadyExists
	}

	link := dropship.NewSupplierProductLink(req.SupplierID, req.ProductID, req.SupplierSKU, req.SupplierCost)
	link.SupplierURL = req.SupplierURL
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("supplier product link created",
		zap.String("link_id", link.ID.String()),
		zap.String("supplier_id", link.SupplierID.String()),
		zap.String("product_id", link.ProductID.String()),
		zap.String("sku", link.SupplierSKU),
	)
	response := ToProductLinkResponse(link)
	return &response, nil
}

// ListBySupplier retrieves all links for a supplier
func (s *ProductLinkService) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ProductLinkResponse, error) {
	links, err := s.links.FindBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	return toLinkResponses(links), nil
}

// ListByProduct retrieves the active links for a catalog product
func (s *ProductLinkService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]ProductLinkResponse, error) {
	links, err := s.links.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toLinkResponses(links), nil
}

// Deactivate removes the link from forwarding and sweeps without deleting it
func (s *ProductLinkService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductLinkResponse, error) {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	link.Deactivate()
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}

	s.logger.Info("supplier product link deactivated", zap.String("link_id", link.ID.String()))
	response := ToProductLinkResponse(link)
	return &response, nil
}

// Unlink removes the link entirely
func (s *ProductLinkService) Unlink(ctx context.Context, id uuid.UUID) error {
	if err := s.links.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("supplier product link removed", zap.String("link_id", id.String()))
	return nil
}

func toLinkResponses(links []dropship.SupplierProductLink) []ProductLinkResponse {
	responses := make([]ProductLinkResponse, 0, len(links))
	for i := range links {
		responses = append(responses, ToProductLinkResponse(&links[i]))
	}
	return responses
}
