package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
	"storefront/internal/validation"
)

const callbackPath = "/payment/callback"

type PaymentHandler struct {
	payments Payments
}

func NewPaymentHandler(payments Payments) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type confirmationResponse struct {
	*service.Confirmation
	CallbackURL string `json:"callback_url"`
}

// ConfirmOrder opens a gateway order for payment --> GET /orders/:id/confirm
func (h *PaymentHandler) ConfirmOrder(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return invalidID(c)
	}

	conf, err := h.payments.CreateIntent(c.Request().Context(), userID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, confirmationResponse{
		Confirmation: conf,
		CallbackURL:  fmt.Sprintf("%s?order_id=%d", callbackPath, id),
	})
}

// Callback receives the gateway's post-payment form --> POST /payment/callback?order_id=
//
// The gateway supplies the three razorpay_* fields; order_id is the query
// parameter put on the callback URL by ConfirmOrder. All four are required
// before any order is looked up.
func (h *PaymentHandler) Callback(c echo.Context) error {
	form := validation.CallbackForm{
		GatewayPaymentID: c.FormValue("razorpay_payment_id"),
		GatewayOrderID:   c.FormValue("razorpay_order_id"),
		Signature:        c.FormValue("razorpay_signature"),
		OrderID:          c.QueryParam("order_id"),
	}

	cb, err := form.Validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	order, err := h.payments.VerifyCallback(c.Request().Context(), cb)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
