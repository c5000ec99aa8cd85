package dropship

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
)

// SupplierService handles the admin surface for suppliers. Configuration
// changes invalidate the cached adapter so the next call rebuilds it.
type SupplierService struct {
	suppliers dropship.SupplierRepository
	registry  dropship.AdapterRegistry
	logger    *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(suppliers dropship.SupplierRepository, registry dropship.AdapterRegistry, logger *zap.Logger) *SupplierService {
	return &SupplierService{
		suppliers: suppliers,
		registry:  registry,
		logger:    logger,
	}
}

// Create registers a new supplier. Custom API configuration is validated here,
// on save, so a broken template never reaches request time.
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := dropship.NewSupplier(req.Name, dropship.AdapterKind(strings.ToUpper(req.Kind)), req.BaseURL)
	if err != nil {
		return nil, err
	}

	supplier.APIKey = req.APIKey
	supplier.WebhookSecret = req.WebhookSecret
	supplier.LeadTimeDays = req.LeadTimeDays
	if req.Currency != "" {
		supplier.Currency = strings.ToUpper(req.Currency)
	}
	supplier.CustomConfig = req.CustomConfig
	if err := supplier.Validate(); err != nil {
		return nil, err
	}

	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}

	s.logger.Info("supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("kind", supplier.Kind.String()),
	)
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Update reconfigures an existing supplier and drops its cached adapter
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = strings.TrimSpace(*req.Name)
	}
	if req.BaseURL != nil {
		supplier.BaseURL = strings.TrimRight(strings.TrimSpace(*req.BaseURL), "/")
	}
	if req.APIKey != nil {
		supplier.APIKey = *req.APIKey
	}
	if req.WebhookSecret != nil {
		supplier.WebhookSecret = *req.WebhookSecret
	}
	if req.Currency != nil {
		supplier.Currency = strings.ToUpper(*req.Currency)
	}
	if req.LeadTimeDays != nil {
		supplier.LeadTimeDays = *req.LeadTimeDays
	}
	if req.CustomConfig != nil {
		supplier.CustomConfig = req.CustomConfig
	}
	if err := supplier.Validate(); err != nil {
		return nil, err
	}

	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.registry.Invalidate(supplier.ID)

	s.logger.Info("supplier updated", zap.String("supplier_id", supplier.ID.String()))
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by id
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves all suppliers
func (s *SupplierService) List(ctx context.Context) ([]SupplierResponse, error) {
	suppliers, err := s.suppliers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		responses = append(responses, ToSupplierResponse(&suppliers[i]))
	}
	return responses, nil
}

// Pause stops forwarding and sweeps for the supplier
func (s *SupplierService) Pause(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	return s.transition(ctx, id, (*dropship.Supplier).Pause)
}

// Resume re-activates a paused supplier
func (s *SupplierService) Resume(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	return s.transition(ctx, id, (*dropship.Supplier).Resume)
}

// Archive retires the supplier while keeping its records
func (s *SupplierService) Archive(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	return s.transition(ctx, id, (*dropship.Supplier).Archive)
}

func (s *SupplierService) transition(ctx context.Context, id uuid.UUID, apply func(*dropship.Supplier)) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(supplier)
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.registry.Invalidate(supplier.ID)

	s.logger.Info("supplier status changed",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("status", supplier.Status.String()),
	)
	response := ToSupplierResponse(supplier)
	return &response, nil
}
