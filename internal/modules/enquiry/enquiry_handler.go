package enquiry

import (
	"errors"
	"net/http"

	"alf-logistics/internal/models"
	"alf-logistics/internal/stream"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for enquiries.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new enquiry handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// SubmitEnquiry is the public contact-form endpoint.
func (h *Handler) SubmitEnquiry(c echo.Context) error {
	var req models.EnquiryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	enq, err := h.svc.SubmitEnquiry(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPhone) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Please enter a valid Indian mobile number"})
		}
		c.Logger().Error("Handler.SubmitEnquiry: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to submit enquiry"})
	}

	return c.JSON(http.StatusCreated, enq)
}

func (h *Handler) ListEnquiries(c echo.Context) error {
	enquiries, err := h.svc.ListEnquiries(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		c.Logger().Error("Handler.ListEnquiries: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list enquiries"})
	}
	return c.JSON(http.StatusOK, enquiries)
}

func (h *Handler) MarkContacted(c echo.Context) error {
	if err := h.svc.MarkContacted(c.Request().Context(), c.Param("enquiryId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Enquiry not found"})
		}
		c.Logger().Error("Handler.MarkContacted: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update enquiry"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) StreamEnquiries(c echo.Context) error {
	ch, cancel, err := h.svc.WatchEnquiries(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.StreamEnquiries: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to subscribe to enquiries"})
	}
	return stream.ServeSSE(c, ch, cancel)
}
