package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/dropship"
)

// CustomAPIAdapter is the fully configuration-driven adapter: an operator
// describes an unsupported supplier's REST dialect as stored configuration
// (auth strategy, endpoint templates, response field paths) and this one
// implementation speaks it. No new code per supplier.
type CustomAPIAdapter struct {
	config     *AdapterConfig
	api        *dropship.CustomAPIConfig
	httpClient *http.Client
}

// NewCustomAPIAdapter creates a data-driven adapter from a validated
// CustomAPIConfig.
func NewCustomAPIAdapter(config *AdapterConfig, api *dropship.CustomAPIConfig) (*CustomAPIAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if api == nil {
		return nil, dropship.ErrSupplierMissingConfig
	}
	if err := api.Validate(); err != nil {
		return nil, err
	}
	return &CustomAPIAdapter{
		config:     config,
		api:        api,
		httpClient: newHTTPClient(config.TimeoutSeconds),
	}, nil
}

// Kind returns the adapter kind this adapter handles
func (a *CustomAPIAdapter) Kind() dropship.AdapterKind {
	return dropship.AdapterKindCustomAPI
}

// GetProduct fetches a product snapshot through the configured endpoint.
// Suppliers without a product endpoint, and any not-found or
// unexpected-shape response, report (nil, nil).
func (a *CustomAPIAdapter) GetProduct(ctx context.Context, sku string) (*dropship.ProductInfo, error) {
	if a.api.GetProduct == nil {
		return nil, nil
	}

	doc, err := a.callJSON(ctx, a.api.GetProduct, map[string]string{"sku": sku})
	if err != nil {
		return nil, nil
	}

	m := a.api.ProductMapping
	info := &dropship.ProductInfo{
		SKU:      sku,
		Name:     stringAt(doc, m.Name),
		ImageURL: stringAt(doc, m.ImageURL),
		Stock:    dropship.UnknownStock(),
	}
	if raw := stringAt(doc, m.Price); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			info.Price = price
		}
	}
	if qty, ok := intAt(doc, m.Stock); ok {
		info.Stock = dropship.KnownStock(qty)
	}
	return info, nil
}

// GetStock reads the mapped stock field off the product endpoint.
func (a *CustomAPIAdapter) GetStock(ctx context.Context, sku string) (dropship.Stock, error) {
	if a.api.GetProduct == nil || a.api.ProductMapping.Stock == "" {
		return dropship.UnknownStock(), nil
	}
	product, err := a.GetProduct(ctx, sku)
	if err != nil || product == nil {
		return dropship.UnknownStock(), err
	}
	return product.Stock, nil
}

// PlaceOrder submits one line item through the configured endpoint. Any
// transport or non-2xx failure is an error, with the supplier's own message
// folded in.
func (a *CustomAPIAdapter) PlaceOrder(ctx context.Context, req *dropship.PlaceOrderRequest) (*dropship.PlaceOrderResult, error) {
	vars := orderTemplateVars(req)

	doc, err := a.callJSON(ctx, a.api.PlaceOrder, vars)
	if err != nil {
		return nil, err
	}

	externalID := stringAt(doc, a.api.OrderMapping.ExternalOrderID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: custom: response missing external order id at %q",
			dropship.ErrSupplierInvalidResponse, a.api.OrderMapping.ExternalOrderID)
	}

	status := a.StatusMap().Normalize(stringAt(doc, a.api.OrderMapping.Status))
	if status == dropship.StatusUnknown {
		// No status path configured or empty answer: the order was accepted
		status = dropship.StatusSentToSupplier
	}

	return &dropship.PlaceOrderResult{
		ExternalOrderID: externalID,
		Status:          status,
		TrackingNumber:  stringAt(doc, a.api.OrderMapping.TrackingNumber),
	}, nil
}

// GetOrderStatus polls the configured status endpoint; any failure reports
// the UNKNOWN sentinel.
func (a *CustomAPIAdapter) GetOrderStatus(ctx context.Context, externalOrderID string) (*dropship.OrderStatusResult, error) {
	if a.api.GetOrderStatus == nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	doc, err := a.callJSON(ctx, a.api.GetOrderStatus, map[string]string{
		"external_order_id": externalOrderID,
	})
	if err != nil {
		return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
	}

	return &dropship.OrderStatusResult{
		Status:         a.StatusMap().Normalize(stringAt(doc, a.api.StatusMapping.Status)),
		TrackingNumber: stringAt(doc, a.api.StatusMapping.TrackingNumber),
		Carrier:        stringAt(doc, a.api.StatusMapping.Carrier),
	}, nil
}

// StatusMap returns the operator-configured normalization map, which may be
// empty; Normalize still lands everything in the fixed vocabulary.
func (a *CustomAPIAdapter) StatusMap() dropship.StatusMap {
	if a.api.StatusMap == nil {
		return dropship.StatusMap{}
	}
	return a.api.StatusMap
}

// callJSON builds a request from an endpoint config, injects auth, executes
// it and parses the response body.
func (a *CustomAPIAdapter) callJSON(ctx context.Context, ep *dropship.EndpointConfig, vars map[string]string) (any, error) {
	path := substitutePath(ep.PathTemplate, vars)

	var reqBody io.Reader
	if ep.BodyTemplate != "" {
		bodyBytes, err := evalBodyTemplate(ep.BodyTemplate, vars)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(ep.Method), a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("custom: failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	a.applyAuth(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dropship.ErrSupplierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("custom: failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", dropship.ErrSupplierRequestFailed, resp.StatusCode, supplierErrorMessage(body))
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", dropship.ErrSupplierInvalidResponse, err)
	}
	return doc, nil
}

// applyAuth injects the supplier credential per the configured strategy.
// Query-string auth appends after template substitution so the parameter
// never collides with a placeholder.
func (a *CustomAPIAdapter) applyAuth(req *http.Request) {
	switch a.api.AuthType {
	case dropship.AuthTypeBearer:
		prefix := a.api.TokenPrefix
		if prefix == "" {
			prefix = "Bearer"
		}
		req.Header.Set("Authorization", prefix+" "+a.config.APIKey)
	case dropship.AuthTypeHeader:
		req.Header.Set(a.api.AuthHeaderName, a.config.APIKey)
	case dropship.AuthTypeQuery:
		q := req.URL.Query()
		q.Set(a.api.AuthQueryParam, a.config.APIKey)
		req.URL.RawQuery = q.Encode()
	}
}

// orderTemplateVars flattens a place-order request into the variables the
// operator's templates may reference.
func orderTemplateVars(req *dropship.PlaceOrderRequest) map[string]string {
	return map[string]string{
		"reference":   req.ReferenceID.String(),
		"sku":         req.SKU,
		"quantity":    strconv.Itoa(req.Quantity),
		"unit_cost":   req.UnitCost.String(),
		"currency":    req.Currency,
		"name":        req.Address.Name,
		"phone":       req.Address.Phone,
		"line1":       req.Address.Line1,
		"line2":       req.Address.Line2,
		"city":        req.Address.City,
		"state":       req.Address.State,
		"postal_code": req.Address.PostalCode,
		"country":     req.Address.Country,
		"note":        req.Note,
	}
}

// Ensure CustomAPIAdapter implements SupplierAdapter interface
var _ dropship.SupplierAdapter = (*CustomAPIAdapter)(nil)
