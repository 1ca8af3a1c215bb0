package auth

import (
	"errors"
	"net/http"

	"alf-logistics/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for authentication.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new auth handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid email or password"})
		case errors.Is(err, models.ErrAccountDisabled):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "This account has been disabled"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "This account does not have admin access"})
		case errors.Is(err, models.ErrAccountLocked):
			return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Message: "Account temporarily locked. Try again later"})
		case errors.Is(err, models.ErrTooManyAttempts):
			return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Message: "Too many attempts. Try again later"})
		case errors.Is(err, models.ErrAuthUnavailable):
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: "Authentication service unavailable"})
		}
		c.Logger().Error("Handler.Login: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to sign in"})
	}

	return c.JSON(http.StatusOK, resp)
}
