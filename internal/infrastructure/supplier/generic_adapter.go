package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/dropship"
)

// genericStatusMap covers the vocabulary most conventional supplier APIs
// use. Anything else defaults to CONFIRMED via StatusMap.Normalize.
var genericStatusMap = dropship.StatusMap{
	"received":   dropship.StatusSentToSupplier,
	"accepted":   dropship.StatusConfirmed,
	"processing": dropship.StatusConfirmed,
	"shipped":    dropship.StatusShipped,
	"in_transit": dropship.StatusShipped,
	"delivered":  dropship.StatusDelivered,
	"cancelled":  dropship.StatusCancelled,
	"canceled":   dropship.StatusCancelled,
	"rejected":   dropship.StatusFailed,
	"error":      dropship.StatusFailed,
}

// Generic wire types: flat JSON objects, no envelope.

type genericProduct struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Stock    *int            `json:"stock"`
	ImageURL string          `json:"image_url"`
}

type genericOrderResponse struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

type genericAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type genericOrderCreate struct {
	Reference string         `json:"reference"`
	SKU       string         `json:"sku"`
	Quantity  int            `json:"quantity"`
	Note      string         `json:"note,omitempty"`
	Address   genericAddress `json:"address"`
}

// GenericAPIAdapter implements SupplierAdapter for suppliers following the
// conventional REST shape: GET /products/{sku}, POST /orders,
// GET /orders/{id}, bearer-token auth.
type GenericAPIAdapter struct {
	config     *AdapterConfig
	httpClient *http.Client
}

// NewGenericAPIAdapter creates a generic REST adapter with the given
// configuration.
func NewGenericAPIAdapter(config *AdapterConfig) (*GenericAPIAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &GenericAPIAdapter{
		config:     config,
		httpClient: newHTTPClient(config.TimeoutSeconds),
	}, nil
}

// Kind returns the adapter kind this adapter handles
func (a *GenericAPIAdapter) Kind() dropship.AdapterKind {
	return dropship.AdapterKindGenericAPI
}

// StatusMap returns the conventional REST status vocabulary
func (a *GenericAPIAdapter) StatusMap() dropship.StatusMap {
	return genericStatusMap
}

// GetProduct fetches a product snapshot by supplier SKU.
func (a *GenericAPIAdapter) GetProduct(ctx context.Context, sku string) (*dropship.ProductInfo, error) {
	body, status, err := a.doRequest(ctx, http.MethodGet, "/products/"+url.PathEscape(sku), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var p genericProduct
	if err := json.Unmarshal(body, &p); err != nil || p.SKU == "" {
		return nil, nil
	}

	stock := dropship.UnknownStock()
	if p.Stock != nil {
		stock = dropship.KnownStock(*p.Stock)
	}

	return &dropship.ProductInfo{
		SKU:      p.SKU,
		Name:     p.Name,
		Price:    p.Price,
		Currency: p.Currency,
		Stock:    stock,
		ImageURL: p.ImageURL,
	}, nil
}

// GetStock reads the stock field off the product resource; suppliers that
// omit it report unknown.
func (a *GenericAPIAdapter) GetStock(ctx context.Context, sku string) (dropship.Stock, error) {
	product, err := a.GetProduct(ctx, sku)
	if err != nil {
		return dropship.UnknownStock(), err
	}
	if product == nil {
		return dropship.UnknownStock(), nil
	}
	return product.Stock, nil
}

// PlaceOrder submits one line item.
func (a *GenericAPIAdapter) PlaceOrder(ctx context.Context, req *dropship.PlaceOrderRequest) (*dropship.PlaceOrderResult, error) {
	payload := genericOrderCreate{
		Reference: req.ReferenceID.String(),
		SKU:       req.SKU,
		Quantity:  req.Quantity,
		Note:      req.Note,
		Address: genericAddress{
			Name:       req.Address.Name,
			Phone:      req.Address.Phone,
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		},
	}

	body, status, err := a.doRequest(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", dropship.ErrOrderRejected, status, supplierErrorMessage(body))
	}

	var resp genericOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("generic: failed to parse response: %w", err)
	}
	if resp.OrderID == "" {
		return nil, fmt.Errorf("%w: generic: response missing order_id", dropship.ErrSupplierInvalidResponse)
	}

	return &dropship.PlaceOrderResult{
		ExternalOrderID: resp.OrderID,
		Status:          genericStatusMap.Normalize(resp.Status),
		TrackingNumber:  resp.TrackingNumber,
		Carrier:         resp.Carrier,
	}, nil
}

// GetOrderStatus polls one order; failures report UNKNOWN.
func (a *GenericAPIAdapter) GetOrderStatus(ctx context.Context, externalOrderID string) (*dropship.OrderStatusResult, error) {
	body, status, err := a.doRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(externalOrderID), nil)
	if err != nil || status >= 300 {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	var resp genericOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	return &dropship.OrderStatusResult{
		Status:         genericStatusMap.Normalize(resp.Status),
		TrackingNumber: resp.TrackingNumber,
		Carrier:        resp.Carrier,
	}, nil
}

// doRequest performs one bearer-authenticated request. Unlike the branded
// adapters it hands the status code back, because the generic dialect
// signals not-found through plain 404s rather than an envelope.
func (a *GenericAPIAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("generic: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("generic: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", dropship.ErrSupplierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("generic: failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// Ensure GenericAPIAdapter implements SupplierAdapter interface
var _ dropship.SupplierAdapter = (*GenericAPIAdapter)(nil)
