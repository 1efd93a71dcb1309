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

type SalesInvoiceHandler struct {
	service service.SalesInvoiceService
	log     *logger.Logger
}

func NewSalesInvoiceHandler(service service.SalesInvoiceService, log *logger.Logger) *SalesInvoiceHandler {
	return &SalesInvoiceHandler{
		service: service,
		log:     log,
	}
}

// @Summary Generate a sales invoice
// @Description Generate the invoice of one sales person for an explicit period
// @Tags SalesInvoices
// @Accept json
// @Produce json
// @Param request body dto.GenerateSalesInvoiceRequest true "Generation request"
// @Success 201 {object} dto.SalesInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /sales-invoices/generate [post]
func (h *SalesInvoiceHandler) GenerateSalesInvoice(c *gin.Context) {
	var req dto.GenerateSalesInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GenerateSalesInvoice(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Bulk generate sales invoices
// @Description Generate invoices for the period closed by closing_date. Existing invoices are skipped.
// @Tags SalesInvoices
// @Accept json
// @Produce json
// @Param request body dto.BulkGenerateSalesInvoicesRequest true "Bulk generation request"
// @Success 200 {object} dto.BulkGenerateSalesInvoicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sales-invoices/bulk-generate [post]
func (h *SalesInvoiceHandler) BulkGenerateSalesInvoices(c *gin.Context) {
	var req dto.BulkGenerateSalesInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.BulkGenerateSalesInvoices(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a sales invoice
// @Tags SalesInvoices
// @Produce json
// @Param id path string true "Sales invoice ID"
// @Success 200 {object} dto.SalesInvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sales-invoices/{id} [get]
func (h *SalesInvoiceHandler) GetSalesInvoice(c *gin.Context) {
	resp, err := h.service.GetSalesInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List sales invoices
// @Tags SalesInvoices
// @Produce json
// @Param filter query types.SalesInvoiceFilter false "Filter"
// @Success 200 {object} dto.ListSalesInvoicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /sales-invoices [get]
func (h *SalesInvoiceHandler) ListSalesInvoices(c *gin.Context) {
	filter := types.NewSalesInvoiceFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListSalesInvoices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a sales invoice
// @Description Change the note, or toggle the discount between 0% and 10%
// @Tags SalesInvoices
// @Accept json
// @Produce json
// @Param id path string true "Sales invoice ID"
// @Param request body dto.UpdateSalesInvoiceRequest true "Changes"
// @Success 200 {object} dto.SalesInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sales-invoices/{id} [patch]
func (h *SalesInvoiceHandler) UpdateSalesInvoice(c *gin.Context) {
	var req dto.UpdateSalesInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateSalesInvoice(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a sales invoice
// @Tags SalesInvoices
// @Produce json
// @Param id path string true "Sales invoice ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /sales-invoices/{id} [delete]
func (h *SalesInvoiceHandler) DeleteSalesInvoice(c *gin.Context) {
	if err := h.service.DeleteSalesInvoice(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "sales invoice deleted"})
}
