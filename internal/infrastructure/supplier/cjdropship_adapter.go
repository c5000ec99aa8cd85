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

// cjStatusMap translates CJ Dropshipping's status vocabulary into the fixed
// fulfillment vocabulary. Unrecognized strings default to CONFIRMED via
// StatusMap.Normalize.
var cjStatusMap = dropship.StatusMap{
	"created":    dropship.StatusSentToSupplier,
	"unpaid":     dropship.StatusSentToSupplier,
	"unshipped":  dropship.StatusConfirmed,
	"processing": dropship.StatusConfirmed,
	"shipped":    dropship.StatusShipped,
	"delivered":  dropship.StatusDelivered,
	"cancelled":  dropship.StatusCancelled,
	"canceled":   dropship.StatusCancelled,
}

// CJDropshipAdapter implements SupplierAdapter for CJ Dropshipping.
type CJDropshipAdapter struct {
	config     *AdapterConfig
	httpClient *http.Client
}

// NewCJDropshipAdapter creates a CJ Dropshipping adapter with the given
// configuration.
func NewCJDropshipAdapter(config *AdapterConfig) (*CJDropshipAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &CJDropshipAdapter{
		config:     config,
		httpClient: newHTTPClient(config.TimeoutSeconds),
	}, nil
}

// Kind returns the adapter kind this adapter handles
func (a *CJDropshipAdapter) Kind() dropship.AdapterKind {
	return dropship.AdapterKindCJDropship
}

// StatusMap returns CJ Dropshipping's status vocabulary
func (a *CJDropshipAdapter) StatusMap() dropship.StatusMap {
	return cjStatusMap
}

// GetProduct fetches a product snapshot by supplier SKU. Not-found and
// unexpected-shape responses yield (nil, nil), never an error.
func (a *CJDropshipAdapter) GetProduct(ctx context.Context, sku string) (*dropship.ProductInfo, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/api/v2/products/query?sku="+url.QueryEscape(sku), nil)
	if err != nil {
		return nil, err
	}

	var resp CJProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil
	}
	if !resp.IsSuccess() || resp.Data == nil {
		return nil, nil
	}

	price, err := decimal.NewFromString(resp.Data.SellPrice)
	if err != nil {
		price = decimal.Zero
	}

	return &dropship.ProductInfo{
		SKU:      resp.Data.SKU,
		Name:     resp.Data.NameEn,
		Price:    price,
		Currency: resp.Data.Currency,
		Stock:    dropship.KnownStock(resp.Data.StockQuantity),
		ImageURL: resp.Data.BigImage,
	}, nil
}

// GetStock fetches the current total inventory for a supplier SKU.
func (a *CJDropshipAdapter) GetStock(ctx context.Context, sku string) (dropship.Stock, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/api/v2/products/stock?sku="+url.QueryEscape(sku), nil)
	if err != nil {
		return dropship.UnknownStock(), err
	}

	var resp CJStockResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return dropship.UnknownStock(), nil
	}
	if !resp.IsSuccess() || resp.Data == nil {
		return dropship.UnknownStock(), nil
	}
	return dropship.KnownStock(resp.Data.TotalInventory), nil
}

// PlaceOrder submits one line item. Any non-success answer is an error, with
// the supplier's own message folded in for diagnostics.
func (a *CJDropshipAdapter) PlaceOrder(ctx context.Context, req *dropship.PlaceOrderRequest) (*dropship.PlaceOrderResult, error) {
	payload := CJOrderCreateRequest{
		OrderNumber:   req.ReferenceID.String(),
		ConsigneeName: req.Address.Name,
		Phone:         req.Address.Phone,
		Address:       req.Address.Line1,
		Address2:      req.Address.Line2,
		City:          req.Address.City,
		Province:      req.Address.State,
		ZipCode:       req.Address.PostalCode,
		CountryCode:   req.Address.Country,
		Remark:        req.Note,
		Products:      []CJLineItem{{SKU: req.SKU, Quantity: req.Quantity}},
	}

	body, err := a.doRequest(ctx, http.MethodPost, "/api/v2/orders/create", payload)
	if err != nil {
		return nil, err
	}

	var resp CJOrderCreateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("cjdropship: failed to parse response: %w", err)
	}
	if !resp.IsSuccess() || resp.Data == nil {
		return nil, fmt.Errorf("%w: cjdropship %d - %s", dropship.ErrOrderRejected, resp.Code, resp.Message)
	}

	return &dropship.PlaceOrderResult{
		ExternalOrderID: resp.Data.OrderID,
		Status:          cjStatusMap.Normalize(resp.Data.OrderStatus),
	}, nil
}

// GetOrderStatus polls one order. Transport and parse failures report the
// UNKNOWN sentinel so a sweep survives one bad supplier.
func (a *CJDropshipAdapter) GetOrderStatus(ctx context.Context, externalOrderID string) (*dropship.OrderStatusResult, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/api/v2/orders/query?orderId="+url.QueryEscape(externalOrderID), nil)
	if err != nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	var resp CJOrderDetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}
	if !resp.IsSuccess() || resp.Data == nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	return &dropship.OrderStatusResult{
		Status:         cjStatusMap.Normalize(resp.Data.OrderStatus),
		TrackingNumber: resp.Data.TrackNumber,
		Carrier:        resp.Data.LogisticName,
	}, nil
}

// doRequest performs one authenticated request against the CJ API.
func (a *CJDropshipAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("cjdropship: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("cjdropship: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("CJ-Access-Token", a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dropship.ErrSupplierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cjdropship: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", dropship.ErrSupplierRequestFailed, resp.StatusCode, supplierErrorMessage(body))
	}
	return body, nil
}

// Ensure CJDropshipAdapter implements SupplierAdapter interface
var _ dropship.SupplierAdapter = (*CJDropshipAdapter)(nil)
