package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/catalog"
	"github.com/xenking/storefront-api/internal/domain/customer"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/imaging"
)

const testPepper = "test-pepper"

// --- In-memory repositories ---

type memProducts struct {
	byID map[int64]catalog.Product
}

func (m *memProducts) List(context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (m *memProducts) PriceOf(ctx context.Context, id int64) (decimal.Decimal, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Price, nil
}

type memCategories struct {
	byID   map[int64]catalog.Category
	nextID int64
}

func (m *memCategories) List(context.Context) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCategories) ListPage(ctx context.Context, _, _ int) ([]catalog.Category, error) {
	return m.List(ctx)
}

func (m *memCategories) GetByID(_ context.Context, id int64) (*catalog.Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	return &c, nil
}

func (m *memCategories) Create(_ context.Context, c *catalog.Category) error {
	m.nextID++
	c.ID = m.nextID
	m.byID[c.ID] = *c
	return nil
}

func (m *memCategories) Update(_ context.Context, c *catalog.Category) error {
	if _, ok := m.byID[c.ID]; !ok {
		return catalog.ErrCategoryNotFound
	}
	m.byID[c.ID] = *c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(m.byID, id)
	return nil
}

type memCustomers struct {
	byID   map[int64]customer.Customer
	nextID int64
}

func (m *memCustomers) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}

func (m *memCustomers) GetByEmail(_ context.Context, email string) (*customer.Customer, error) {
	for _, c := range m.byID {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, customer.ErrNotFound
}

func (m *memCustomers) List(context.Context) ([]customer.Customer, error) {
	out := make([]customer.Customer, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCustomers) ListPage(ctx context.Context, _, _ int) ([]customer.Customer, error) {
	return m.List(ctx)
}

func (m *memCustomers) Create(_ context.Context, c *customer.Customer) error {
	if _, err := m.GetByEmail(context.Background(), c.Email); err == nil {
		return customer.ErrEmailTaken
	}
	m.nextID++
	c.ID = m.nextID
	m.byID[c.ID] = *c
	return nil
}

func (m *memCustomers) Update(_ context.Context, c *customer.Customer) error {
	if _, ok := m.byID[c.ID]; !ok {
		return customer.ErrNotFound
	}
	m.byID[c.ID] = *c
	return nil
}

func (m *memCustomers) UpdatePictureURL(_ context.Context, id int64, url string) error {
	c, ok := m.byID[id]
	if !ok {
		return customer.ErrNotFound
	}
	c.PictureURL = url
	m.byID[id] = c
	return nil
}

func (m *memCustomers) Delete(_ context.Context, id int64) error {
	delete(m.byID, id)
	return nil
}

// memOrders keeps placed orders in memory, acting as both the transactional
// store and the read repository.
type memOrders struct {
	mu     sync.Mutex
	byID   map[int64]*order.Order
	nextID int64
}

func (m *memOrders) InTx(_ context.Context, fn func(tx order.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := &memOrderTx{store: m}
	if err := fn(staged); err != nil {
		return err
	}
	m.byID[staged.order.ID] = staged.order
	return nil
}

type memOrderTx struct {
	store *memOrders
	order *order.Order
}

func (t *memOrderTx) InsertOrder(_ context.Context, o *order.Order) (int64, error) {
	t.store.nextID++
	t.order = o
	return t.store.nextID, nil
}

func (t *memOrderTx) InsertPayment(_ context.Context, _ *order.Payment) (int64, error) {
	return t.store.nextID, nil
}

func (t *memOrderTx) InsertItems(context.Context, []order.Item) error { return nil }

func (m *memOrders) GetByID(_ context.Context, id int64) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) ListByCustomer(_ context.Context, customerID int64, _ order.PageRequest) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*order.Order
	for _, o := range m.byID {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

type memKeys struct {
	byHash map[string]*auth.APIKeyInfo
}

func (m *memKeys) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	info, ok := m.byHash[hash]
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	return info, nil
}

type memBlobs struct {
	keys []string
}

func (m *memBlobs) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "/media/" + key, nil
}

type nopNotifier struct{}

func (nopNotifier) SendOrderConfirmation(context.Context, *order.Order) error { return nil }

// --- Test server ---

type testEnv struct {
	srv       *httptest.Server
	orders    *memOrders
	customers *memCustomers
	blobs     *memBlobs
	now       time.Time
}

func hashAPIKey(key string) string {
	mac := hmac.New(sha256.New, []byte(testPepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// newTestEnv builds a complete handler stack on in-memory repositories.
// Two API keys exist: "alice-key" for customer 1 and "admin-key" for the
// admin customer 9.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	products := &memProducts{byID: map[int64]catalog.Product{
		7: {ID: 7, Name: "Gaming laptop", Price: decimal.RequireFromString("1999.90"), CategoryID: 1},
		8: {ID: 8, Name: "Wireless mouse", Price: decimal.RequireFromString("49.90"), CategoryID: 1},
	}}
	categories := &memCategories{byID: map[int64]catalog.Category{
		1: {ID: 1, Name: "Computers"},
	}, nextID: 1}
	customers := &memCustomers{byID: map[int64]customer.Customer{
		1: {ID: 1, Name: "Alice", Email: "alice@example.com", Roles: []auth.Role{auth.RoleCustomer}},
		2: {ID: 2, Name: "Bob", Email: "bob@example.com", Roles: []auth.Role{auth.RoleCustomer}},
		9: {ID: 9, Name: "Root", Email: "root@example.com", Roles: []auth.Role{auth.RoleAdmin, auth.RoleCustomer}},
	}, nextID: 9}
	orders := &memOrders{byID: map[int64]*order.Order{}}
	keys := &memKeys{byHash: map[string]*auth.APIKeyInfo{
		hashAPIKey("alice-key"): {ID: "k1", KeyHash: hashAPIKey("alice-key"), CustomerID: 1, Name: "alice"},
		hashAPIKey("admin-key"): {ID: "k2", KeyHash: hashAPIKey("admin-key"), CustomerID: 9, Name: "admin"},
	}}
	blobs := &memBlobs{}

	lg := zaptest.NewLogger(t)
	assembler := order.NewAssembler(customers, catalog.NewRepoPriceResolver(products), order.DefaultDueLeadTime)
	placement := order.NewPlacementService(orders, nopNotifier{}, lg)
	queries := order.NewQueryService(orders)
	customerSvc := customer.NewService(customers)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewHandler(products, categories, customerSvc, assembler, placement, queries,
		imaging.NewProcessor(0), blobs)
	h.now = func() time.Time { return now }

	sec := NewSecurityHandler(keys, customers, []byte(testPepper))
	srv := httptest.NewServer(h.Routes(sec))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, orders: orders, customers: customers, blobs: blobs, now: now}
}

// do issues a request against the test server. A non-empty apiKey is sent in
// the api_key header; a non-nil body is JSON-encoded.
func (e *testEnv) do(t *testing.T, method, path, apiKey string, body any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
