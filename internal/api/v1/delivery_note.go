package v1

import (
	"net/http"

	"github.com/flexprice/notebilling/internal/api/dto"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/service"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/gin-gonic/gin"
)

type DeliveryNoteHandler struct {
	service service.DeliveryNoteService
	log     *logger.Logger
}

func NewDeliveryNoteHandler(service service.DeliveryNoteService, log *logger.Logger) *DeliveryNoteHandler {
	return &DeliveryNoteHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create a delivery note
// @Description Record a delivery note. The billing date is derived from the delivery date.
// @Tags DeliveryNotes
// @Accept json
// @Produce json
// @Param delivery_note body dto.CreateDeliveryNoteRequest true "Delivery note"
// @Success 201 {object} dto.DeliveryNoteResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /delivery-notes [post]
func (h *DeliveryNoteHandler) CreateDeliveryNote(c *gin.Context) {
	var req dto.CreateDeliveryNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateDeliveryNote(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a delivery note
// @Tags DeliveryNotes
// @Produce json
// @Param id path string true "Delivery note ID"
// @Success 200 {object} dto.DeliveryNoteResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /delivery-notes/{id} [get]
func (h *DeliveryNoteHandler) GetDeliveryNote(c *gin.Context) {
	resp, err := h.service.GetDeliveryNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List delivery notes
// @Tags DeliveryNotes
// @Produce json
// @Param filter query types.DeliveryNoteFilter false "Filter"
// @Success 200 {object} dto.ListDeliveryNotesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /delivery-notes [get]
func (h *DeliveryNoteHandler) ListDeliveryNotes(c *gin.Context) {
	filter := types.NewDeliveryNoteFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListDeliveryNotes(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a delivery note
// @Description Lines, when given, replace every existing line
// @Tags DeliveryNotes
// @Accept json
// @Produce json
// @Param id path string true "Delivery note ID"
// @Param delivery_note body dto.UpdateDeliveryNoteRequest true "Changes"
// @Success 200 {object} dto.DeliveryNoteResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /delivery-notes/{id} [put]
func (h *DeliveryNoteHandler) UpdateDeliveryNote(c *gin.Context) {
	var req dto.UpdateDeliveryNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateDeliveryNote(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a delivery note
// @Tags DeliveryNotes
// @Produce json
// @Param id path string true "Delivery note ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /delivery-notes/{id} [delete]
func (h *DeliveryNoteHandler) DeleteDeliveryNote(c *gin.Context) {
	if err := h.service.DeleteDeliveryNote(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "delivery note deleted"})
}

// @Summary Billing date of a delivery date
// @Tags DeliveryNotes
// @Produce json
// @Param delivery_date query string true "Delivery date (YYYY-MM-DD)"
// @Success 200 {object} dto.BillingDateResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /delivery-notes/billing-date [get]
func (h *DeliveryNoteHandler) GetBillingDate(c *gin.Context) {
	d, err := types.ParseDate(c.Query("delivery_date"))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("delivery_date must be YYYY-MM-DD").
			Mark(ierr.ErrValidation))
		return
	}

	c.JSON(http.StatusOK, h.service.BillingDate(d))
}
