package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront/internal/entity"
	"storefront/internal/service"
	"storefront/internal/validation"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

// The handlers depend on these views of the service layer.

type Catalog interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int) (*entity.Product, error)
}

type Cart interface {
	Add(ctx context.Context, userID, productID int) (*entity.CartView, error)
	SetQuantity(ctx context.Context, userID, lineID, quantity int) (*entity.CartView, error)
	Remove(ctx context.Context, userID, lineID int) (*entity.CartView, error)
	List(ctx context.Context, userID int) (*entity.CartView, error)
}

type Checkout interface {
	Summary(ctx context.Context, userID int) (*service.Summary, error)
	Checkout(ctx context.Context, userID int, form validation.BillingForm, idempotencyKey string) (*entity.Order, error)
}

type Orders interface {
	OrderHistory(ctx context.Context, userID int) ([]entity.Order, error)
	GetOrder(ctx context.Context, userID, orderID int) (*entity.Order, error)
}

type Payments interface {
	CreateIntent(ctx context.Context, userID, orderID int) (*service.Confirmation, error)
	VerifyCallback(ctx context.Context, cb validation.Callback) (*entity.Order, error)
}

type Accounts interface {
	Register(ctx context.Context, form validation.RegisterForm) (*entity.User, error)
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
	Logout(ctx context.Context, claims *service.JwtCustomClaims) error
	ValidateSession(ctx context.Context, claims *service.JwtCustomClaims) (bool, error)
	Secret() []byte
}

// respondError maps service errors onto HTTP responses.
func respondError(c echo.Context, err error) error {
	var verrs *validation.Errors
	switch {
	case errors.As(err, &verrs):
		return c.JSON(http.StatusUnprocessableEntity, verrs)
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, service.ErrEmptyCart):
		return c.Redirect(http.StatusSeeOther, "/cart")
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password."})
	case errors.Is(err, service.ErrDuplicateRequest), errors.Is(err, service.ErrOrderNotPending):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrGateway):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Payment gateway unavailable"})
	}

	logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func paramID(c echo.Context, name string) (int, error) {
	return strconv.Atoi(c.Param(name))
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
}
