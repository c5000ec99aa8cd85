package dropship

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/dropship"
)

// ---------------------------------------------------------------------------
// Stateful fakes shared by the service tests
// ---------------------------------------------------------------------------

type fakeMarketplace struct {
	orders     map[uuid.UUID]*dropship.FulfillmentOrder
	processing []uuid.UUID
	readErr    error
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{orders: make(map[uuid.UUID]*dropship.FulfillmentOrder)}
}

func (f *fakeMarketplace) GetOrderForFulfillment(ctx context.Context, orderID uuid.UUID) (*dropship.FulfillmentOrder, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return nil, dropship.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeMarketplace) MarkProcessing(ctx context.Context, orderID uuid.UUID) error {
	f.processing = append(f.processing, orderID)
	return nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*dropship.Supplier
}

func newFakeSupplierRepo(suppliers ...*dropship.Supplier) *fakeSupplierRepo {
	repo := &fakeSupplierRepo{suppliers: make(map[uuid.UUID]*dropship.Supplier)}
	for _, s := range suppliers {
		repo.suppliers[s.ID] = s
	}
	return repo
}

func (f *fakeSupplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*dropship.Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return nil, dropship.ErrSupplierNotFound
	}
	return s, nil
}

func (f *fakeSupplierRepo) FindAll(ctx context.Context) ([]dropship.Supplier, error) {
	out := make([]dropship.Supplier, 0, len(f.suppliers))
	for _, s := range f.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSupplierRepo) FindActive(ctx context.Context) ([]dropship.Supplier, error) {
	var out []dropship.Supplier
	for _, s := range f.suppliers {
		if s.IsActive() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSupplierRepo) Save(ctx context.Context, supplier *dropship.Supplier) error {
	f.suppliers[supplier.ID] = supplier
	return nil
}

type fakeLinkRepo struct {
	links map[uuid.UUID]*dropship.SupplierProductLink
	order []uuid.UUID
}

func newFakeLinkRepo(links ...*dropship.SupplierProductLink) *fakeLinkRepo {
	repo := &fakeLinkRepo{links: make(map[uuid.UUID]*dropship.SupplierProductLink)}
	for _, l := range links {
		repo.links[l.ID] = l
		repo.order = append(repo.order, l.ID)
	}
	return repo
}

func (f *fakeLinkRepo) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierProductLink, error) {
	l, ok := f.links[id]
	if !ok {
		return nil, dropship.ErrLinkNotFound
	}
	return l, nil
}

func (f *fakeLinkRepo) FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]dropship.SupplierProductLink, error) {
	var out []dropship.SupplierProductLink
	for _, id := range f.order {
		l := f.links[id]
		if l.ProductID == productID && l.IsActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) FindActive(ctx context.Context) ([]dropship.SupplierProductLink, error) {
	var out []dropship.SupplierProductLink
	for _, id := range f.order {
		if l := f.links[id]; l.IsActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) FindBySupplierAndProduct(ctx context.Context, supplierID, productID uuid.UUID) (*dropship.SupplierProductLink, error) {
	for _, l := range f.links {
		if l.SupplierID == supplierID && l.ProductID == productID {
			return l, nil
		}
	}
	return nil, dropship.ErrLinkNotFound
}

func (f *fakeLinkRepo) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]dropship.SupplierProductLink, error) {
	var out []dropship.SupplierProductLink
	for _, id := range f.order {
		if l := f.links[id]; l.SupplierID == supplierID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) Save(ctx context.Context, link *dropship.SupplierProductLink) error {
	if _, ok := f.links[link.ID]; !ok {
		f.order = append(f.order, link.ID)
	}
	copied := *link
	f.links[link.ID] = &copied
	return nil
}

func (f *fakeLinkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.links[id]; !ok {
		return dropship.ErrLinkNotFound
	}
	delete(f.links, id)
	return nil
}

type fakeSupplierOrderRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*dropship.SupplierOrder
	saves   int
}

func newFakeSupplierOrderRepo(records ...*dropship.SupplierOrder) *fakeSupplierOrderRepo {
	repo := &fakeSupplierOrderRepo{records: make(map[uuid.UUID]*dropship.SupplierOrder)}
	for _, r := range records {
		repo.records[r.ID] = r
	}
	return repo
}

func (f *fakeSupplierOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, dropship.ErrSupplierOrderNotFound
	}
	return r, nil
}

func (f *fakeSupplierOrderRepo) FindByOrderItem(ctx context.Context, orderID, orderItemID uuid.UUID) (*dropship.SupplierOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var failed *dropship.SupplierOrder
	for _, r := range f.records {
		if r.OrderID == orderID && r.OrderItemID == orderItemID {
			if r.Status != dropship.StatusFailed {
				return r, nil
			}
			failed = r
		}
	}
	if failed != nil {
		return failed, nil
	}
	return nil, dropship.ErrSupplierOrderNotFound
}

func (f *fakeSupplierOrderRepo) FindByExternalID(ctx context.Context, supplierID uuid.UUID, externalOrderID string) (*dropship.SupplierOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.SupplierID == supplierID && r.ExternalOrderID == externalOrderID {
			return r, nil
		}
	}
	return nil, dropship.ErrSupplierOrderNotFound
}

func (f *fakeSupplierOrderRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]dropship.SupplierOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dropship.SupplierOrder
	for _, r := range f.records {
		if r.OrderID == orderID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeSupplierOrderRepo) FindOpen(ctx context.Context, limit int) ([]dropship.SupplierOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dropship.SupplierOrder
	for _, r := range f.records {
		if r.IsOpen() && r.ExternalOrderID != "" {
			out = append(out, *r)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSupplierOrderRepo) FindFailed(ctx context.Context, limit int) ([]dropship.SupplierOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dropship.SupplierOrder
	for _, r := range f.records {
		if r.Status == dropship.StatusFailed {
			out = append(out, *r)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSupplierOrderRepo) CreateIfAbsent(ctx context.Context, order *dropship.SupplierOrder) (*dropship.SupplierOrder, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.OrderID == order.OrderID && r.OrderItemID == order.OrderItemID && r.Status != dropship.StatusFailed {
			return r, false, nil
		}
	}
	f.records[order.ID] = order
	return order, true, nil
}

func (f *fakeSupplierOrderRepo) Save(ctx context.Context, order *dropship.SupplierOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.records[order.ID] = order
	return nil
}

func (f *fakeSupplierOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type stockWrite struct {
	ProductID uuid.UUID
	Quantity  int
}

type fakeCatalogWriter struct {
	writes []stockWrite
	err    error
}

func (f *fakeCatalogWriter) SetProductStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, stockWrite{ProductID: productID, Quantity: quantity})
	return nil
}

type trackingWrite struct {
	OrderItemID    uuid.UUID
	TrackingNumber string
	Carrier        string
}

type fakeShipmentWriter struct {
	writes []trackingWrite
	err    error
}

func (f *fakeShipmentWriter) SetTracking(ctx context.Context, orderItemID uuid.UUID, trackingNumber, carrier string) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, trackingWrite{OrderItemID: orderItemID, TrackingNumber: trackingNumber, Carrier: carrier})
	return nil
}

// fakeAdapter scripts the supplier's answers per method
type fakeAdapter struct {
	kind dropship.AdapterKind

	placeResult *dropship.PlaceOrderResult
	placeErr    error
	placeCalls  int

	statusResult *dropship.OrderStatusResult

	stock    dropship.Stock
	stockErr error

	statusMap dropship.StatusMap
}

func (a *fakeAdapter) Kind() dropship.AdapterKind {
	if a.kind == "" {
		return dropship.AdapterKindGenericAPI
	}
	return a.kind
}

func (a *fakeAdapter) StatusMap() dropship.StatusMap {
	if a.statusMap == nil {
		return dropship.StatusMap{}
	}
	return a.statusMap
}

func (a *fakeAdapter) GetProduct(ctx context.Context, sku string) (*dropship.ProductInfo, error) {
	return nil, nil
}

func (a *fakeAdapter) GetStock(ctx context.Context, sku string) (dropship.Stock, error) {
	if a.stockErr != nil {
		return dropship.UnknownStock(), a.stockErr
	}
	return a.stock, nil
}

func (a *fakeAdapter) PlaceOrder(ctx context.Context, req *dropship.PlaceOrderRequest) (*dropship.PlaceOrderResult, error) {
	a.placeCalls++
	if a.placeErr != nil {
		return nil, a.placeErr
	}
	if a.placeResult != nil {
		return a.placeResult, nil
	}
	return &dropship.PlaceOrderResult{
		ExternalOrderID: "EXT-" + req.SKU,
		Status:          dropship.StatusSentToSupplier,
	}, nil
}

func (a *fakeAdapter) GetOrderStatus(ctx context.Context, externalOrderID string) (*dropship.OrderStatusResult, error) {
	if a.statusResult != nil {
		return a.statusResult, nil
	}
	return &dropship.OrderStatusResult{Status: dropship.StatusUnknown}, nil
}

// fakeRegistry hands out one scripted adapter per supplier
type fakeRegistry struct {
	adapters    map[uuid.UUID]*fakeAdapter
	fallback    *fakeAdapter
	invalidated []uuid.UUID
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		adapters: make(map[uuid.UUID]*fakeAdapter),
		fallback: &fakeAdapter{kind: dropship.AdapterKindManual},
	}
}

func (r *fakeRegistry) Resolve(ctx context.Context, supplierID uuid.UUID) (dropship.SupplierAdapter, error) {
	if a, ok := r.adapters[supplierID]; ok {
		return a, nil
	}
	return r.fallback, nil
}

func (r *fakeRegistry) ResolveFor(supplier *dropship.Supplier) dropship.SupplierAdapter {
	if a, ok := r.adapters[supplier.ID]; ok {
		return a
	}
	return r.fallback
}

func (r *fakeRegistry) Invalidate(supplierID uuid.UUID) {
	r.invalidated = append(r.invalidated, supplierID)
}

// fakeGuard is a non-expiring in-process forward guard
type fakeGuard struct {
	mu       sync.Mutex
	held     map[string]bool
	acquires int
	denyAll  bool
	err      error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{held: make(map[string]bool)}
}

func (g *fakeGuard) Acquire(ctx context.Context, orderID, orderItemID uuid.UUID, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acquires++
	if g.err != nil {
		return false, g.err
	}
	if g.denyAll {
		return false, nil
	}
	key := orderID.String() + ":" + orderItemID.String()
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *fakeGuard) Release(ctx context.Context, orderID, orderItemID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, orderID.String()+":"+orderItemID.String())
	return nil
}

func (g *fakeGuard) Close() error { return nil }

// ---------------------------------------------------------------------------
// Fixture helpers
// ---------------------------------------------------------------------------

func activeSupplier(kind dropship.AdapterKind) *dropship.Supplier {
	supplier, err := dropship.NewSupplier("Acme Supply", kind, "https://api.acme.example")
	if err != nil {
		panic(err)
	}
	supplier.APIKey = "test-key"
	return supplier
}

func linkFor(supplierID, productID uuid.UUID, sku string) *dropship.SupplierProductLink {
	return dropship.NewSupplierProductLink(supplierID, productID, sku, decimal.NewFromFloat(7.50))
}

func orderWithItems(items ...dropship.FulfillmentOrderItem) *dropship.FulfillmentOrder {
	return &dropship.FulfillmentOrder{
		ID:     uuid.New(),
		Number: "ORD-1001",
		Items:  items,
		Address: dropship.ShippingAddress{
			Name:       "Dana Miro",
			Phone:      "+1-555-0101",
			Line1:      "7 Harbor Way",
			City:       "Portland",
			State:      "OR",
			PostalCode: "97201",
			Country:    "US",
		},
		BuyerName:  "Dana Miro",
		BuyerPhone: "+1-555-0101",
	}
}
