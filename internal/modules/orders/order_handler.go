package orders

import (
	"errors"
	"net/http"

	"alf-logistics/internal/models"
	"alf-logistics/internal/stream"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.CreateOrder(c.Request().Context(), req)
	if err != nil {
		c.Logger().Error("Handler.CreateOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create order"})
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.svc.ListOrders(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.ListOrders: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) SearchOrders(c echo.Context) error {
	orders, err := h.svc.SearchOrders(c.Request().Context(), c.QueryParam("type"), c.QueryParam("q"))
	if err != nil {
		c.Logger().Error("Handler.SearchOrders: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to search orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c echo.Context) error {
	order, err := h.svc.GetOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.GetOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve order"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) AddCheckpoint(c echo.Context) error {
	var req models.AddCheckpointRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	cp, err := h.svc.AddCheckpoint(c.Request().Context(), c.Param("orderId"), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		if errors.Is(err, models.ErrOrderDelivered) {
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Order is already delivered"})
		}
		c.Logger().Error("Handler.AddCheckpoint: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to add checkpoint"})
	}

	return c.JSON(http.StatusCreated, cp)
}

func (h *Handler) MarkDelivered(c echo.Context) error {
	order, err := h.svc.MarkDelivered(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.MarkDelivered: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to mark order delivered"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	if err := h.svc.DeleteOrder(c.Request().Context(), c.Param("orderId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.DeleteOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to delete order"})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPublicOrder serves the sanitized share view, no auth required.
func (h *Handler) GetPublicOrder(c echo.Context) error {
	order, err := h.svc.GetPublicOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.GetPublicOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve order"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) StreamOrders(c echo.Context) error {
	ch, cancel, err := h.svc.WatchOrders(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.StreamOrders: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to subscribe to orders"})
	}
	return stream.ServeSSE(c, ch, cancel)
}

func (h *Handler) StreamOrder(c echo.Context) error {
	ch, cancel, err := h.svc.WatchOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		c.Logger().Error("Handler.StreamOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to subscribe to order"})
	}
	return stream.ServeSSE(c, ch, cancel)
}

func (h *Handler) StreamPublicOrder(c echo.Context) error {
	ch, cancel, err := h.svc.WatchPublicOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		c.Logger().Error("Handler.StreamPublicOrder: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to subscribe to order"})
	}
	return stream.ServeSSE(c, ch, cancel)
}
