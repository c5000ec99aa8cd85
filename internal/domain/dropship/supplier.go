package dropship

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Supplier Errors
// ---------------------------------------------------------------------------

var (
	ErrSupplierInvalidName    = errors.New("dropship: supplier name is required")
	ErrSupplierInvalidKind    = errors.New("dropship: invalid adapter kind")
	ErrSupplierInvalidBaseURL = errors.New("dropship: invalid supplier base URL")
	ErrSupplierMissingConfig  = errors.New("dropship: custom supplier requires api config")

	ErrCustomConfigInvalidAuthType  = errors.New("dropship: invalid custom auth type")
	ErrCustomConfigMissingHeader    = errors.New("dropship: header auth requires a header name")
	ErrCustomConfigMissingParam     = errors.New("dropship: query auth requires a parameter name")
	ErrCustomConfigMissingEndpoint  = errors.New("dropship: custom config missing place-order endpoint")
	ErrCustomConfigInvalidMethod    = errors.New("dropship: invalid endpoint http method")
	ErrCustomConfigInvalidTemplate  = errors.New("dropship: malformed path template")
	ErrCustomConfigMissingOrderPath = errors.New("dropship: order mapping requires external order id path")
)

// ---------------------------------------------------------------------------
// AdapterKind
// ---------------------------------------------------------------------------

// AdapterKind identifies which adapter implementation serves a supplier.
type AdapterKind string

const (
	// AdapterKindManual is the no-API adapter for human-fulfilled suppliers
	AdapterKindManual AdapterKind = "MANUAL"
	// AdapterKindCJDropship is the built-in CJ Dropshipping integration
	AdapterKindCJDropship AdapterKind = "CJDROPSHIP"
	// AdapterKindPrintHub is the built-in print-on-demand integration
	AdapterKindPrintHub AdapterKind = "PRINTHUB"
	// AdapterKindGenericAPI serves suppliers following the conventional REST shape
	AdapterKindGenericAPI AdapterKind = "GENERIC_API"
	// AdapterKindCustomAPI is the fully configuration-driven adapter
	AdapterKindCustomAPI AdapterKind = "CUSTOM_API"
)

// IsValid returns true if the adapter kind is valid
func (k AdapterKind) IsValid() bool {
	switch k {
	case AdapterKindManual, AdapterKindCJDropship, AdapterKindPrintHub,
		AdapterKindGenericAPI, AdapterKindCustomAPI:
		return true
	default:
		return false
	}
}

// String returns the string representation of AdapterKind
func (k AdapterKind) String() string {
	return string(k)
}

// ---------------------------------------------------------------------------
// SupplierStatus
// ---------------------------------------------------------------------------

// SupplierStatus represents the operational status of a supplier.
type SupplierStatus string

const (
	// SupplierStatusActive means the supplier receives forwarded orders
	SupplierStatusActive SupplierStatus = "ACTIVE"
	// SupplierStatusPaused means forwarding and sweeps skip the supplier
	SupplierStatusPaused SupplierStatus = "PAUSED"
	// SupplierStatusArchived means the supplier is retired but retained
	// because linked products or orders still reference it
	SupplierStatusArchived SupplierStatus = "ARCHIVED"
)

// IsValid returns true if the status is valid
func (s SupplierStatus) IsValid() bool {
	switch s {
	case SupplierStatusActive, SupplierStatusPaused, SupplierStatusArchived:
		return true
	default:
		return false
	}
}

// String returns the string representation of SupplierStatus
func (s SupplierStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// CustomAPIConfig
// ---------------------------------------------------------------------------

// AuthType selects how the custom adapter injects the supplier credential.
type AuthType string

const (
	// AuthTypeBearer sends "Authorization: <prefix> <key>"
	AuthTypeBearer AuthType = "BEARER"
	// AuthTypeHeader sends the key in an arbitrary named header
	AuthTypeHeader AuthType = "HEADER"
	// AuthTypeQuery appends the key as a query parameter
	AuthTypeQuery AuthType = "QUERY"
)

// IsValid returns true if the auth type is valid
func (t AuthType) IsValid() bool {
	switch t {
	case AuthTypeBearer, AuthTypeHeader, AuthTypeQuery:
		return true
	default:
		return false
	}
}

// EndpointConfig describes one operation of a custom supplier API.
type EndpointConfig struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE)
	Method string `json:"method"`
	// PathTemplate is the request path with {name} placeholders substituted
	// from request-time variables (sku, quantity, shipping fields)
	PathTemplate string `json:"path_template"`
	// BodyTemplate is an optional JSON body template; string-typed
	// placeholder values serialize as JSON strings, numeric-looking values
	// serialize unquoted
	BodyTemplate string `json:"body_template,omitempty"`
}

// ProductFieldMapping maps dotted JSON paths in a product response.
type ProductFieldMapping struct {
	Name     string `json:"name,omitempty"`
	Price    string `json:"price,omitempty"`
	Stock    string `json:"stock,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// OrderFieldMapping maps dotted JSON paths in a place-order response.
type OrderFieldMapping struct {
	ExternalOrderID string `json:"external_order_id"`
	Status          string `json:"status,omitempty"`
	TrackingNumber  string `json:"tracking_number,omitempty"`
}

// StatusFieldMapping maps dotted JSON paths in a status-poll response.
type StatusFieldMapping struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
}

// CustomAPIConfig is the stored, typed configuration that lets an operator
// wire up an unsupported supplier without a new adapter implementation.
// It is validated on save, not on first use.
type CustomAPIConfig struct {
	// AuthType selects the credential injection strategy
	AuthType AuthType `json:"auth_type"`
	// AuthHeaderName is the header name for AuthTypeHeader
	AuthHeaderName string `json:"auth_header_name,omitempty"`
	// AuthQueryParam is the query parameter name for AuthTypeQuery
	AuthQueryParam string `json:"auth_query_param,omitempty"`
	// TokenPrefix is the Authorization prefix for AuthTypeBearer
	// (defaults to "Bearer")
	TokenPrefix string `json:"token_prefix,omitempty"`

	// GetProduct is the product lookup endpoint (optional)
	GetProduct *EndpointConfig `json:"get_product,omitempty"`
	// PlaceOrder is the order placement endpoint (required)
	PlaceOrder *EndpointConfig `json:"place_order"`
	// GetOrderStatus is the status poll endpoint (optional)
	GetOrderStatus *EndpointConfig `json:"get_order_status,omitempty"`

	// ProductMapping maps the product response fields
	ProductMapping ProductFieldMapping `json:"product_mapping,omitempty"`
	// OrderMapping maps the place-order response fields
	OrderMapping OrderFieldMapping `json:"order_mapping"`
	// StatusMapping maps the status-poll response fields
	StatusMapping StatusFieldMapping `json:"status_mapping,omitempty"`

	// StatusMap translates the supplier's raw status vocabulary into the
	// fixed fulfillment vocabulary; unrecognized strings default to CONFIRMED
	StatusMap map[string]FulfillmentStatus `json:"status_map,omitempty"`
}

var validEndpointMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "PATCH": {}, "DELETE": {},
}

// Validate checks an endpoint configuration.
func (e *EndpointConfig) Validate() error {
	if _, ok := validEndpointMethods[strings.ToUpper(e.Method)]; !ok {
		return ErrCustomConfigInvalidMethod
	}
	if strings.Count(e.PathTemplate, "{") != strings.Count(e.PathTemplate, "}") {
		return ErrCustomConfigInvalidTemplate
	}
	return nil
}

// Validate checks the whole custom configuration. Called when the supplier
// is saved so a broken template never reaches request time.
func (c *CustomAPIConfig) Validate() error {
	if !c.AuthType.IsValid() {
		return ErrCustomConfigInvalidAuthType
	}
	if c.AuthType == AuthTypeHeader && c.AuthHeaderName == "" {
		return ErrCustomConfigMissingHeader
	}
	if c.AuthType == AuthTypeQuery && c.AuthQueryParam == "" {
		return ErrCustomConfigMissingParam
	}
	if c.PlaceOrder == nil {
		return ErrCustomConfigMissingEndpoint
	}
	if c.OrderMapping.ExternalOrderID == "" {
		return ErrCustomConfigMissingOrderPath
	}
	for _, ep := range []*EndpointConfig{c.GetProduct, c.PlaceOrder, c.GetOrderStatus} {
		if ep == nil {
			continue
		}
		if err := ep.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Supplier Entity
// ---------------------------------------------------------------------------

// Supplier is a third-party dropshipping supplier and its connection config.
// Suppliers are created by admin action, mutated when configuration changes,
// and never hard-deleted while linked products or orders exist.
type Supplier struct {
	// ID is the unique identifier
	ID uuid.UUID
	// Name is the display name
	Name string
	// Kind selects the adapter implementation
	Kind AdapterKind
	// BaseURL is the supplier API base URL (empty for manual suppliers)
	BaseURL string
	// APIKey is the supplier credential
	APIKey string
	// WebhookSecret, when set, enforces HMAC verification of inbound webhooks
	WebhookSecret string
	// Status is the operational status
	Status SupplierStatus
	// Currency is the supplier's settlement currency
	Currency string
	// LeadTimeDays is the typical fulfillment lead time
	LeadTimeDays int
	// CustomConfig holds the data-driven API description for CUSTOM_API kind
	CustomConfig *CustomAPIConfig
	// CreatedAt is when the supplier was created
	CreatedAt time.Time
	// UpdatedAt is when the supplier was last updated
	UpdatedAt time.Time
}

// NewSupplier creates an active supplier with the given identity.
func NewSupplier(name string, kind AdapterKind, baseURL string) (*Supplier, error) {
	s := &Supplier{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(name),
		Kind:     kind,
		BaseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Status:   SupplierStatusActive,
		Currency: "USD",
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks supplier invariants, including the custom config when the
// supplier is configuration-driven.
func (s *Supplier) Validate() error {
	if s.Name == "" {
		return ErrSupplierInvalidName
	}
	if !s.Kind.IsValid() {
		return ErrSupplierInvalidKind
	}
	if s.Kind != AdapterKindManual {
		if s.BaseURL == "" {
			return ErrSupplierInvalidBaseURL
		}
		if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return ErrSupplierInvalidBaseURL
		}
	}
	if s.Kind == AdapterKindCustomAPI {
		if s.CustomConfig == nil {
			return ErrSupplierMissingConfig
		}
		if err := s.CustomConfig.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsActive returns true when the supplier accepts forwarded orders.
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// Pause stops forwarding and sweeps for the supplier.
func (s *Supplier) Pause() {
	s.Status = SupplierStatusPaused
}

// Resume re-activates a paused supplier.
func (s *Supplier) Resume() {
	s.Status = SupplierStatusActive
}

// Archive retires the supplier while keeping its records.
func (s *Supplier) Archive() {
	s.Status = SupplierStatusArchived
}
