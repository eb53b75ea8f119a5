package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"storefront/internal/entity"
	"storefront/internal/payment"
	"storefront/internal/repository"
)

// memStore is an in-memory stand-in for every repository.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	products map[int]entity.Product
	cart     []entity.CartLine
	billing  []entity.BillingDetails
	orders   []entity.Order
	intents  []entity.PaymentIntent
	users    []entity.User
	profiles []entity.UserProfile

	failCreateOrder   error
	beforeCreateOrder func(ctx context.Context) error
}

func newMemStore() *memStore {
	return &memStore{products: map[int]entity.Product{}}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) addProduct(name, price string) entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := entity.Product{ID: m.id(), Name: name, Price: decimal.RequireFromString(price)}
	m.products[p.ID] = p
	return p
}

func (m *memStore) deleteProduct(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
}

func (m *memStore) setPrice(id int, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.products[id]
	p.Price = decimal.RequireFromString(price)
	m.products[id] = p
}

func (m *memStore) snapshot() *memStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &memStore{
		nextID:   m.nextID,
		cart:     append([]entity.CartLine(nil), m.cart...),
		billing:  append([]entity.BillingDetails(nil), m.billing...),
		orders:   append([]entity.Order(nil), m.orders...),
		intents:  append([]entity.PaymentIntent(nil), m.intents...),
		users:    append([]entity.User(nil), m.users...),
		profiles: append([]entity.UserProfile(nil), m.profiles...),
	}
	return s
}

func (m *memStore) restore(s *memStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = s.nextID
	m.cart, m.billing, m.orders, m.intents = s.cart, s.billing, s.orders, s.intents
	m.users, m.profiles = s.users, s.profiles
}

// memTx gives memStore all-or-nothing semantics.
type memTx struct{ store *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(q repository.DBTX) error) error {
	before := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(before)
		return err
	}
	return nil
}

func (m *memStore) GetProductByID(ctx context.Context, q repository.DBTX, id int) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *memStore) GetProducts(ctx context.Context, q repository.DBTX) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := []entity.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (m *memStore) AddOne(ctx context.Context, q repository.DBTX, userID, productID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return sql.ErrNoRows
	}
	for i := range m.cart {
		if m.cart[i].UserID == userID && m.cart[i].ProductID == productID {
			m.cart[i].Quantity++
			return nil
		}
	}
	m.cart = append(m.cart, entity.CartLine{ID: m.id(), UserID: userID, ProductID: productID, Quantity: 1})
	return nil
}

func (m *memStore) GetLine(ctx context.Context, q repository.DBTX, userID, lineID int) (*entity.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range m.cart {
		if line.ID == lineID && line.UserID == userID {
			line.Product = m.products[line.ProductID]
			return &line, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) UpdateQuantity(ctx context.Context, q repository.DBTX, userID, lineID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cart {
		if m.cart[i].ID == lineID && m.cart[i].UserID == userID {
			m.cart[i].Quantity = quantity
		}
	}
	return nil
}

func (m *memStore) DeleteLine(ctx context.Context, q repository.DBTX, userID, lineID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, line := range m.cart {
		if line.ID == lineID && line.UserID == userID {
			m.cart = append(m.cart[:i:i], m.cart[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memStore) Clear(ctx context.Context, q repository.DBTX, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []entity.CartLine
	for _, line := range m.cart {
		if line.UserID != userID {
			kept = append(kept, line)
		}
	}
	m.cart = kept
	return nil
}

func (m *memStore) ListLines(ctx context.Context, q repository.DBTX, userID int, forUpdate bool) ([]entity.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lines []entity.CartLine
	for _, line := range m.cart {
		if line.UserID == userID {
			line.Product = m.products[line.ProductID]
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (m *memStore) userLines(userID int) []entity.CartLine {
	lines, _ := m.ListLines(context.Background(), nil, userID, false)
	return lines
}

func (m *memStore) CreateBilling(ctx context.Context, q repository.DBTX, billing *entity.BillingDetails) (*entity.BillingDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	billing.ID = m.id()
	m.billing = append(m.billing, *billing)
	return billing, nil
}

func (m *memStore) GetBillingByID(ctx context.Context, q repository.DBTX, id int) (*entity.BillingDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.billing {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) CreateOrder(ctx context.Context, q repository.DBTX, order *entity.Order) (*entity.Order, error) {
	if m.beforeCreateOrder != nil {
		if err := m.beforeCreateOrder(ctx); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = m.id()
	stored := *order
	stored.Billing = nil
	stored.Lines = nil
	for _, line := range order.Lines {
		line.ID = m.id()
		line.OrderID = order.ID
		stored.Lines = append(stored.Lines, line)
	}
	m.orders = append(m.orders, stored)
	if m.failCreateOrder != nil {
		return nil, m.failCreateOrder
	}
	return order, nil
}

func (m *memStore) GetOrderByID(ctx context.Context, q repository.DBTX, userID, id int) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id && (userID == 0 || o.UserID == userID) {
			o.Lines = append([]entity.OrderLine(nil), o.Lines...)
			return &o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) ListOrdersByUser(ctx context.Context, q repository.DBTX, userID int) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := []entity.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, q repository.DBTX, id int, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id && m.orders[i].Status == entity.OrderStatusPending {
			m.orders[i].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreatePaymentIntent(ctx context.Context, q repository.DBTX, intent *entity.PaymentIntent) (*entity.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent.ID = m.id()
	m.intents = append(m.intents, *intent)
	return intent, nil
}

func (m *memStore) ListPaymentIntents(ctx context.Context, q repository.DBTX, orderID int) ([]entity.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var intents []entity.PaymentIntent
	for _, intent := range m.intents {
		if intent.OrderID == orderID {
			intents = append(intents, intent)
		}
	}
	return intents, nil
}

func (m *memStore) CreateUser(ctx context.Context, q repository.DBTX, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, repository.ErrDuplicate
		}
	}
	user.ID = m.id()
	m.users = append(m.users, *user)
	return user, nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, q repository.DBTX, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) CreateProfile(ctx context.Context, q repository.DBTX, profile *entity.UserProfile) (*entity.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile.ID = m.id()
	m.profiles = append(m.profiles, *profile)
	return profile, nil
}

func (m *memStore) GetProfileByUserID(ctx context.Context, q repository.DBTX, userID int) (*entity.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeGateway struct {
	secret  string
	err     error
	calls   int
	amounts []int64
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*payment.Intent, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	g.amounts = append(g.amounts, amount)
	return &payment.Intent{ID: "order_gw_" + receipt, Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (g *fakeGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return payment.VerifySignature(g.secret, gatewayOrderID, gatewayPaymentID, signature)
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type fakeWriter struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	for _, msg := range msgs {
		w.keys = append(w.keys, string(msg.Key))
	}
	return nil
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

var errBoom = errors.New("boom")

// fixture wires every service against one memStore.
type fixture struct {
	store    *memStore
	rdb      *redis.Client
	mr       *miniredis.Miniredis
	gateway  *fakeGateway
	events   *fakeWriter
	catalog  *CatalogService
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
	payments *PaymentService
	users    *UserService
}

func newFixture(t *testing.T, opts CheckoutOptions) *fixture {
	t.Helper()
	f := &fixture{
		store:   newMemStore(),
		gateway: &fakeGateway{secret: "gateway-secret"},
		events:  &fakeWriter{},
	}
	f.rdb, f.mr = newRedis(t)
	tx := memTx{store: f.store}

	f.catalog = NewCatalogService(nil, f.store, f.rdb, time.Minute)
	f.cart = NewCartService(nil, f.store, f.store)
	f.checkout = NewCheckoutService(nil, tx, f.store, f.store, f.store, f.store, f.rdb, f.events, opts)
	f.orders = NewOrderService(nil, f.store, f.store)
	f.payments = NewPaymentService(nil, f.orders, f.store, f.gateway, "INR", f.events)
	f.users = NewUserService(nil, tx, f.store, f.rdb, "jwt-secret", time.Hour)
	return f
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
