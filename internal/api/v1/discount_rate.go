package v1

import (
	"net/http"
	"strconv"

	"github.com/flexprice/notebilling/internal/api/dto"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/service"
	"github.com/gin-gonic/gin"
)

type DiscountRateHandler struct {
	service service.DiscountRateService
	log     *logger.Logger
}

func NewDiscountRateHandler(service service.DiscountRateService, log *logger.Logger) *DiscountRateHandler {
	return &DiscountRateHandler{service: service, log: log}
}

// @Summary List discount rates
// @Tags DiscountRates
// @Produce json
// @Success 200 {object} dto.ListDiscountRatesResponse
// @Router /discount-rates [get]
func (h *DiscountRateHandler) ListDiscountRates(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Resolve the automatic discount tier
// @Tags DiscountRates
// @Produce json
// @Param subtotal query int true "Quota-eligible subtotal"
// @Success 200 {object} dto.ResolveDiscountRateResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /discount-rates/resolve [get]
func (h *DiscountRateHandler) ResolveDiscountRate(c *gin.Context) {
	subtotal, err := strconv.ParseInt(c.Query("subtotal"), 10, 64)
	if err != nil || subtotal < 0 {
		c.Error(ierr.NewError("invalid subtotal").
			WithHint("subtotal must be a non-negative integer").
			Mark(ierr.ErrValidation))
		return
	}

	row, err := h.service.ResolveForSubtotal(c.Request.Context(), subtotal)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ResolveDiscountRateResponse{
		QuotaSubtotal:  subtotal,
		Rate:           row.Rate,
		DiscountRateID: row.ID,
	})
}
