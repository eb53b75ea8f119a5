package api

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

const sessionCookie = "session"

// RequireUser lets a request through only with a valid token whose session
// is still open. The token is read from the Authorization header or the
// session cookie.
func RequireUser(accounts Accounts) echo.MiddlewareFunc {
	parseToken := echojwt.WithConfig(echojwt.Config{
		SigningKey:  accounts.Secret(),
		TokenLookup: "header:Authorization:Bearer ,cookie:" + sessionCookie,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		},
	})

	checkSession := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := currentClaims(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			open, err := accounts.ValidateSession(c.Request().Context(), claims)
			if err != nil {
				return respondError(c, err)
			}
			if !open {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Session expired"})
			}

			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parseToken(checkSession(next))
	}
}

func currentClaims(c echo.Context) (*service.JwtCustomClaims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	return claims, ok
}

// userID is only called behind RequireUser.
func userID(c echo.Context) int {
	claims, _ := currentClaims(c)
	return claims.UserID
}
