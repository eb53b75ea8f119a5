package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/validation"
)

type UserHandler struct {
	accounts   Accounts
	sessionTTL time.Duration
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(accounts Accounts, sessionTTL time.Duration) *UserHandler {
	return &UserHandler{accounts: accounts, sessionTTL: sessionTTL}
}

// Register creates an account --> POST /register
func (h *UserHandler) Register(c echo.Context) error {
	form := validation.RegisterForm{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.accounts.Register(c.Request().Context(), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login opens a session --> POST /login
func (h *UserHandler) Login(c echo.Context) error {
	form := validation.LoginForm{}
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	if err := c.Validate(&form); err != nil {
		return respondError(c, err)
	}

	token, user, err := h.accounts.Login(c.Request().Context(), form.Email, form.Password)
	if err != nil {
		return respondError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

// Logout closes the current session --> POST /logout
func (h *UserHandler) Logout(c echo.Context) error {
	claims, _ := currentClaims(c)
	if err := h.accounts.Logout(c.Request().Context(), claims); err != nil {
		return respondError(c, err)
	}

	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}
