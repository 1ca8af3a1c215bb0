// Package middleware guards the admin API surface.
package middleware

import (
	"net/http"

	"alf-logistics/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWT validates the session token and stores the parsed token under the
// default "user" context key.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing or invalid session token"})
		},
	})
}

// RequireAdmin rejects tokens minted without the admin claim. Runs after JWT.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing or invalid session token"})
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || claims["adm"] != true {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Admin access required"})
			}
			if sub, _ := claims["sub"].(string); sub != "" {
				c.Set("userID", sub)
			}
			return next(c)
		}
	}
}
