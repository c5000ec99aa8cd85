package supplier

// CJ Dropshipping wire types. The API wraps every payload in a common
// envelope with a numeric code; 200 means success.

// CJResponse is the common response envelope
type CJResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"result"`
}

// IsSuccess returns true if the request succeeded
func (r *CJResponse) IsSuccess() bool {
	return r.Code == 200
}

// CJProduct is a product detail payload
type CJProduct struct {
	SKU           string `json:"productSku"`
	NameEn        string `json:"productNameEn"`
	SellPrice     string `json:"sellPrice"`
	Currency      string `json:"currency"`
	StockQuantity int    `json:"stockQuantity"`
	BigImage      string `json:"bigImage"`
}

// CJProductResponse is the response for product queries
type CJProductResponse struct {
	CJResponse
	Data *CJProduct `json:"data"`
}

// CJStockData is the stock payload
type CJStockData struct {
	SKU            string `json:"productSku"`
	TotalInventory int    `json:"totalInventory"`
}

// CJStockResponse is the response for stock queries
type CJStockResponse struct {
	CJResponse
	Data *CJStockData `json:"data"`
}

// CJOrderCreateData is the order creation payload
type CJOrderCreateData struct {
	OrderID     string `json:"orderId"`
	OrderStatus string `json:"orderStatus"`
}

// CJOrderCreateResponse is the response for order creation
type CJOrderCreateResponse struct {
	CJResponse
	Data *CJOrderCreateData `json:"data"`
}

// CJOrderDetail is the order detail payload
type CJOrderDetail struct {
	OrderID      string `json:"orderId"`
	OrderStatus  string `json:"orderStatus"`
	TrackNumber  string `json:"trackNumber"`
	LogisticName string `json:"logisticName"`
}

// CJOrderDetailResponse is the response for order status queries
type CJOrderDetailResponse struct {
	CJResponse
	Data *CJOrderDetail `json:"data"`
}

// CJOrderCreateRequest is the outbound order creation body
type CJOrderCreateRequest struct {
	OrderNumber   string      `json:"orderNumber"`
	ConsigneeName string      `json:"consigneeName"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	Address2      string      `json:"address2,omitempty"`
	City          string      `json:"city"`
	Province      string      `json:"province"`
	ZipCode       string      `json:"zip"`
	CountryCode   string      `json:"shippingCountryCode"`
	Remark        string      `json:"remark,omitempty"`
	Products      []CJLineItem `json:"products"`
}

// CJLineItem is one ordered SKU
type CJLineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}
