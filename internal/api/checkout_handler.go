package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/validation"
)

type CheckoutHandler struct {
	checkout Checkout
	orders   Orders
}

func NewCheckoutHandler(checkout Checkout, orders Orders) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, orders: orders}
}

// Summary --> GET /checkout
func (h *CheckoutHandler) Summary(c echo.Context) error {
	summary, err := h.checkout.Summary(c.Request().Context(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// PlaceOrder --> POST /checkout
//
// An empty cart redirects back to /cart; a successful order points the
// client at its confirmation page.
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	form := validation.BillingForm{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.checkout.Checkout(c.Request().Context(), userID(c), form, c.Request().Header.Get("Idempotency-Key"))
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/orders/%d/confirm", order.ID))
	return c.JSON(http.StatusCreated, order)
}

// OrderHistory --> GET /orders
func (h *CheckoutHandler) OrderHistory(c echo.Context) error {
	orders, err := h.orders.OrderHistory(c.Request().Context(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder --> GET /orders/:id
func (h *CheckoutHandler) GetOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return invalidID(c)
	}

	order, err := h.orders.GetOrder(c.Request().Context(), userID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
