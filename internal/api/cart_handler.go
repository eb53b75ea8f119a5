package api

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/validation"
)

type CartHandler struct {
	cart Cart
}

func NewCartHandler(cart Cart) *CartHandler {
	return &CartHandler{cart: cart}
}

// ViewCart --> GET /cart
func (h *CartHandler) ViewCart(c echo.Context) error {
	view, err := h.cart.List(c.Request().Context(), userID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddToCart --> POST /cart/add/:product_id
func (h *CartHandler) AddToCart(c echo.Context) error {
	productID, err := paramID(c, "product_id")
	if err != nil {
		return invalidID(c)
	}

	view, err := h.cart.Add(c.Request().Context(), userID(c), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateCart --> POST /cart/:id
func (h *CartHandler) UpdateCart(c echo.Context) error {
	lineID, err := paramID(c, "id")
	if err != nil {
		return invalidID(c)
	}

	input := struct {
		Quantity json.Number `json:"quantity" form:"quantity"`
	}{}
	if err := c.Bind(&input); err != nil {
		input.Quantity = ""
	}

	quantity, err := validation.Quantity(input.Quantity.String())
	if err != nil {
		return respondError(c, err)
	}

	view, err := h.cart.SetQuantity(c.Request().Context(), userID(c), lineID, quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// RemoveFromCart --> DELETE /cart/:id
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	lineID, err := paramID(c, "id")
	if err != nil {
		return invalidID(c)
	}

	view, err := h.cart.Remove(c.Request().Context(), userID(c), lineID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
