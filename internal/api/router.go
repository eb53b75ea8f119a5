package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storefront/internal/validation"
)

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Payments *PaymentHandler
	Users    *UserHandler
}

// NewRouter builds the echo instance with every storefront route. Extra
// middleware (access log, rate limiter) is applied before routing-aware
// middleware such as CSRF.
func NewRouter(h Handlers, accounts Accounts, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.EchoValidator{}

	e.Use(middleware.Recover())
	e.Use(extra...)
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        skipCSRF,
		TokenLookup:    "header:X-CSRF-Token,form:csrfmiddlewaretoken",
		CookieName:     "csrftoken",
		CookiePath:     "/",
		CookieHTTPOnly: false,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	requireUser := RequireUser(accounts)

	e.GET("/products", h.Products.ListProducts)
	e.GET("/products/:id", h.Products.GetProduct)

	cart := e.Group("/cart", requireUser)
	cart.GET("", h.Cart.ViewCart)
	cart.POST("/add/:product_id", h.Cart.AddToCart)
	cart.POST("/:id", h.Cart.UpdateCart)
	cart.DELETE("/:id", h.Cart.RemoveFromCart)

	e.GET("/checkout", h.Checkout.Summary, requireUser)
	e.POST("/checkout", h.Checkout.PlaceOrder, requireUser)

	orders := e.Group("/orders", requireUser)
	orders.GET("", h.Checkout.OrderHistory)
	orders.GET("/:id", h.Checkout.GetOrder)
	orders.GET("/:id/confirm", h.Payments.ConfirmOrder)

	e.POST(callbackPath, h.Payments.Callback)

	e.POST("/register", h.Users.Register)
	e.POST("/login", h.Users.Login)
	e.POST("/logout", h.Users.Logout, requireUser)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "storefront",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	return e
}

// skipCSRF exempts the gateway callback, which is posted by the payment
// gateway rather than the user's browser, and bearer-token clients, which
// carry no ambient credentials.
func skipCSRF(c echo.Context) bool {
	if c.Path() == callbackPath {
		return true
	}
	return c.Request().Header.Get(echo.HeaderAuthorization) != ""
}
