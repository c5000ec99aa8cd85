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

// printHubUnlimitedStock is the fixed quantity PrintHub reports for every
// SKU. Print-on-demand items are produced per order, so the supplier answers
// stock queries with a large constant instead of a real count.
const printHubUnlimitedStock = 999

// printHubStatusMap translates PrintHub's status vocabulary.
var printHubStatusMap = dropship.StatusMap{
	"draft":     dropship.StatusSentToSupplier,
	"pending":   dropship.StatusSentToSupplier,
	"inprocess": dropship.StatusConfirmed,
	"onhold":    dropship.StatusConfirmed,
	"fulfilled": dropship.StatusShipped,
	"delivered": dropship.StatusDelivered,
	"canceled":  dropship.StatusCancelled,
	"failed":    dropship.StatusFailed,
}

// PrintHub wire types. Responses wrap the payload under "result".

type printHubProduct struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	RetailPrice  string `json:"retail_price"`
	Currency     string `json:"currency"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type printHubProductResponse struct {
	Code   int              `json:"code"`
	Result *printHubProduct `json:"result"`
	Error  string           `json:"error,omitempty"`
}

type printHubOrder struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

type printHubOrderResponse struct {
	Code   int            `json:"code"`
	Result *printHubOrder `json:"result"`
	Error  string         `json:"error,omitempty"`
}

type printHubRecipient struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state_code"`
	Country  string `json:"country_code"`
	Zip      string `json:"zip"`
}

type printHubOrderItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type printHubOrderCreate struct {
	ExternalID string              `json:"external_id"`
	Recipient  printHubRecipient   `json:"recipient"`
	Items      []printHubOrderItem `json:"items"`
}

// PrintHubAdapter implements SupplierAdapter for the PrintHub
// print-on-demand service.
type PrintHubAdapter struct {
	config     *AdapterConfig
	httpClient *http.Client
}

// NewPrintHubAdapter creates a PrintHub adapter with the given configuration.
func NewPrintHubAdapter(config *AdapterConfig) (*PrintHubAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PrintHubAdapter{
		config:     config,
		httpClient: newHTTPClient(config.TimeoutSeconds),
	}, nil
}

// Kind returns the adapter kind this adapter handles
func (a *PrintHubAdapter) Kind() dropship.AdapterKind {
	return dropship.AdapterKindPrintHub
}

// StatusMap returns PrintHub's status vocabulary
func (a *PrintHubAdapter) StatusMap() dropship.StatusMap {
	return printHubStatusMap
}

// GetProduct fetches the catalog entry for a print SKU.
func (a *PrintHubAdapter) GetProduct(ctx context.Context, sku string) (*dropship.ProductInfo, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/products/"+url.PathEscape(sku), nil)
	if err != nil {
		return nil, err
	}

	var resp printHubProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil
	}
	if resp.Result == nil {
		return nil, nil
	}

	price, err := decimal.NewFromString(resp.Result.RetailPrice)
	if err != nil {
		price = decimal.Zero
	}

	return &dropship.ProductInfo{
		SKU:      resp.Result.SKU,
		Name:     resp.Result.Name,
		Price:    price,
		Currency: resp.Result.Currency,
		Stock:    dropship.KnownStock(printHubUnlimitedStock),
		ImageURL: resp.Result.ThumbnailURL,
	}, nil
}

// GetStock reports the fixed print-on-demand quantity without a round trip;
// produced-per-order SKUs never run out.
func (a *PrintHubAdapter) GetStock(_ context.Context, _ string) (dropship.Stock, error) {
	return dropship.KnownStock(printHubUnlimitedStock), nil
}

// PlaceOrder submits one line item for production.
func (a *PrintHubAdapter) PlaceOrder(ctx context.Context, req *dropship.PlaceOrderRequest) (*dropship.PlaceOrderResult, error) {
	payload := printHubOrderCreate{
		ExternalID: req.ReferenceID.String(),
		Recipient: printHubRecipient{
			Name:     req.Address.Name,
			Phone:    req.Address.Phone,
			Address1: req.Address.Line1,
			Address2: req.Address.Line2,
			City:     req.Address.City,
			State:    req.Address.State,
			Country:  req.Address.Country,
			Zip:      req.Address.PostalCode,
		},
		Items: []printHubOrderItem{{SKU: req.SKU, Quantity: req.Quantity}},
	}

	body, err := a.doRequest(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return nil, err
	}

	var resp printHubOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("printhub: failed to parse response: %w", err)
	}
	if resp.Result == nil || resp.Result.ID == 0 {
		return nil, fmt.Errorf("%w: printhub: %s", dropship.ErrOrderRejected, resp.Error)
	}

	return &dropship.PlaceOrderResult{
		ExternalOrderID: fmt.Sprintf("%d", resp.Result.ID),
		Status:          printHubStatusMap.Normalize(resp.Result.Status),
	}, nil
}

// GetOrderStatus polls a production order; failures report UNKNOWN.
func (a *PrintHubAdapter) GetOrderStatus(ctx context.Context, externalOrderID string) (*dropship.OrderStatusResult, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/orders/"+url.PathEscape(externalOrderID), nil)
	if err != nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	var resp printHubOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Result == nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	return &dropship.OrderStatusResult{
		Status:         printHubStatusMap.Normalize(resp.Result.Status),
		TrackingNumber: resp.Result.TrackingNumber,
		Carrier:        resp.Result.Carrier,
	}, nil
}

// doRequest performs one bearer-authenticated request against PrintHub.
func (a *PrintHubAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("printhub: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("printhub: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dropship.ErrSupplierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("printhub: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", dropship.ErrSupplierRequestFailed, resp.StatusCode, supplierErrorMessage(body))
	}
	return body, nil
}

// Ensure PrintHubAdapter implements SupplierAdapter interface
var _ dropship.SupplierAdapter = (*PrintHubAdapter)(nil)
