package feedback

import (
	"errors"
	"net/http"

	"alf-logistics/internal/models"
	"alf-logistics/internal/stream"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for feedback links and feedback entries.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new feedback handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) CreateFeedbackLink(c echo.Context) error {
	var req models.CreateFeedbackLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	link, err := h.svc.CreateFeedbackLink(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.CreateFeedbackLink: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create feedback link"})
	}

	return c.JSON(http.StatusCreated, link)
}

// ResolveFeedbackLink is the public token resolution endpoint behind the
// short /f/<token> URL.
func (h *Handler) ResolveFeedbackLink(c echo.Context) error {
	orderID, err := h.svc.ResolveFeedbackLink(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, models.ErrLinkExpired) {
			return c.JSON(http.StatusGone, models.ErrorResponse{Message: "This feedback link has expired"})
		}
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Feedback link not found"})
		}
		c.Logger().Error("Handler.ResolveFeedbackLink: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to resolve feedback link"})
	}
	return c.JSON(http.StatusOK, map[string]string{"orderId": orderID})
}

func (h *Handler) SubmitFeedback(c echo.Context) error {
	var req models.SubmitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	fb, err := h.svc.SubmitFeedback(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrLinkExpired) {
			return c.JSON(http.StatusGone, models.ErrorResponse{Message: "This feedback link has expired"})
		}
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Feedback link not found"})
		}
		c.Logger().Error("Handler.SubmitFeedback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to submit feedback"})
	}

	return c.JSON(http.StatusCreated, fb)
}

func (h *Handler) GetOrderFeedback(c echo.Context) error {
	entries, err := h.svc.GetOrderFeedback(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		c.Logger().Error("Handler.GetOrderFeedback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve feedback"})
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListFeedback(c echo.Context) error {
	entries, err := h.svc.ListFeedback(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.ListFeedback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list feedback"})
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.svc.GetStats(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.GetStats: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to compute feedback stats"})
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) StreamFeedback(c echo.Context) error {
	ch, cancel, err := h.svc.WatchFeedback(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.StreamFeedback: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to subscribe to feedback"})
	}
	return stream.ServeSSE(c, ch, cancel)
}
