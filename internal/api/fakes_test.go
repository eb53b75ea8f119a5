package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
	"storefront/internal/service"
	"storefront/internal/validation"
)

var testSecret = []byte("test-secret")

type fakeCatalog struct{}

func (fakeCatalog) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return []entity.Product{{ID: 1, Name: "Lamp", Price: decimal.RequireFromString("10.00")}}, nil
}

func (fakeCatalog) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	if id != 1 {
		return nil, service.ErrNotFound
	}
	return &entity.Product{ID: 1, Name: "Lamp", Price: decimal.RequireFromString("10.00")}, nil
}

type fakeCart struct {
	calls []string
}

func (f *fakeCart) Add(ctx context.Context, userID, productID int) (*entity.CartView, error) {
	f.calls = append(f.calls, fmt.Sprintf("add %d %d", userID, productID))
	return &entity.CartView{}, nil
}

func (f *fakeCart) SetQuantity(ctx context.Context, userID, lineID, quantity int) (*entity.CartView, error) {
	f.calls = append(f.calls, fmt.Sprintf("set %d %d %d", userID, lineID, quantity))
	if lineID != 1 {
		return nil, service.ErrNotFound
	}
	return &entity.CartView{}, nil
}

func (f *fakeCart) Remove(ctx context.Context, userID, lineID int) (*entity.CartView, error) {
	f.calls = append(f.calls, fmt.Sprintf("remove %d %d", userID, lineID))
	return &entity.CartView{}, nil
}

func (f *fakeCart) List(ctx context.Context, userID int) (*entity.CartView, error) {
	f.calls = append(f.calls, fmt.Sprintf("list %d", userID))
	return &entity.CartView{}, nil
}

type fakeCheckout struct {
	err     error
	keys    []string
	userIDs []int
}

func (f *fakeCheckout) Summary(ctx context.Context, userID int) (*service.Summary, error) {
	return &service.Summary{Cart: &entity.CartView{}}, nil
}

func (f *fakeCheckout) Checkout(ctx context.Context, userID int, form validation.BillingForm, key string) (*entity.Order, error) {
	f.userIDs = append(f.userIDs, userID)
	f.keys = append(f.keys, key)
	if _, err := form.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Order{ID: 30, UserID: userID, Status: entity.OrderStatusPending}, nil
}

type fakeOrders struct{}

func (fakeOrders) OrderHistory(ctx context.Context, userID int) ([]entity.Order, error) {
	return []entity.Order{{ID: 31, UserID: userID}, {ID: 30, UserID: userID}}, nil
}

func (fakeOrders) GetOrder(ctx context.Context, userID, orderID int) (*entity.Order, error) {
	return nil, service.ErrNotFound
}

type fakePayments struct {
	intentErr error
	callbacks []validation.Callback
}

func (f *fakePayments) CreateIntent(ctx context.Context, userID, orderID int) (*service.Confirmation, error) {
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	return &service.Confirmation{Order: &entity.Order{ID: orderID}, GatewayOrderID: "order_gw", Amount: 2550, Currency: "INR", KeyID: "rzp_test"}, nil
}

func (f *fakePayments) VerifyCallback(ctx context.Context, cb validation.Callback) (*entity.Order, error) {
	f.callbacks = append(f.callbacks, cb)
	if cb.OrderID != 30 {
		return nil, service.ErrNotFound
	}
	return &entity.Order{ID: 30, Status: entity.OrderStatusPaid}, nil
}

// fakeAccounts knows one user, asha@example.com / pass, with id 7.
type fakeAccounts struct {
	sessions map[string]bool
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{sessions: map[string]bool{}}
}

func (f *fakeAccounts) Register(ctx context.Context, form validation.RegisterForm) (*entity.User, error) {
	reg, err := form.Validate()
	if err != nil {
		return nil, err
	}
	return &entity.User{ID: 8, Username: reg.Email, Email: reg.Email}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	if email != "asha@example.com" || password != "pass" {
		return "", nil, service.ErrInvalidCredentials
	}
	return f.issue(7), &entity.User{ID: 7, Email: email}, nil
}

func (f *fakeAccounts) issue(userID int) string {
	id := fmt.Sprintf("jti-%d-%d", userID, len(f.sessions))
	claims := &service.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		panic(err)
	}
	f.sessions[id] = true
	return token
}

func (f *fakeAccounts) Logout(ctx context.Context, claims *service.JwtCustomClaims) error {
	delete(f.sessions, claims.ID)
	return nil
}

func (f *fakeAccounts) ValidateSession(ctx context.Context, claims *service.JwtCustomClaims) (bool, error) {
	return f.sessions[claims.ID], nil
}

func (f *fakeAccounts) Secret() []byte { return testSecret }

type testServer struct {
	e        *echo.Echo
	cart     *fakeCart
	checkout *fakeCheckout
	payments *fakePayments
	accounts *fakeAccounts
}

func newTestServer() *testServer {
	s := &testServer{
		cart:     &fakeCart{},
		checkout: &fakeCheckout{},
		payments: &fakePayments{},
		accounts: newFakeAccounts(),
	}
	s.e = NewRouter(Handlers{
		Products: NewProductHandler(fakeCatalog{}),
		Cart:     NewCartHandler(s.cart),
		Checkout: NewCheckoutHandler(s.checkout, fakeOrders{}),
		Payments: NewPaymentHandler(s.payments),
		Users:    NewUserHandler(s.accounts, time.Hour),
	}, s.accounts)
	return s
}

// do sends a request; a non-empty token is sent as a bearer token.
func (s *testServer) do(t *testing.T, method, target, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func csrfCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "csrftoken" {
			return c
		}
	}
	require.FailNow(t, "no csrf cookie set")
	return nil
}
