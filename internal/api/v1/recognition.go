package v1

import (
	"io"
	"net/http"

	"github.com/flexprice/notebilling/internal/api/dto"
	"github.com/flexprice/notebilling/internal/config"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/service"
	"github.com/gin-gonic/gin"
)

type RecognitionHandler struct {
	service service.RecognitionQueueService
	config  *config.Configuration
	log     *logger.Logger
}

func NewRecognitionHandler(service service.RecognitionQueueService, config *config.Configuration, log *logger.Logger) *RecognitionHandler {
	return &RecognitionHandler{service: service, config: config, log: log}
}

// @Summary Upload images for recognition
// @Description Enqueue one or more JPEG/PNG images. Recognition runs in the background.
// @Tags Recognition
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Delivery note images"
// @Success 202 {object} dto.EnqueueRecognitionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /recognition/entries [post]
func (h *RecognitionHandler) Enqueue(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Expected a multipart upload").
			Mark(ierr.ErrValidation))
		return
	}

	headers := form.File["files"]
	files := make([]dto.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHintf("Failed to read %s", fh.Filename).
				Mark(ierr.ErrValidation))
			return
		}
		// one byte over the limit is enough to reject later
		data, err := io.ReadAll(io.LimitReader(f, h.config.Recognition.MaxUploadBytes+1))
		_ = f.Close()
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHintf("Failed to read %s", fh.Filename).
				Mark(ierr.ErrValidation))
			return
		}
		files = append(files, dto.UploadedFile{FileName: fh.Filename, Data: data})
	}

	resp, err := h.service.Enqueue(c.Request.Context(), files)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// @Summary List recognition entries
// @Tags Recognition
// @Produce json
// @Success 200 {object} dto.ListRecognitionEntriesResponse
// @Router /recognition/entries [get]
func (h *RecognitionHandler) ListEntries(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListEntries(c.Request.Context()))
}

// @Summary Get a recognition entry
// @Tags Recognition
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} dto.RecognitionEntryResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /recognition/entries/{id} [get]
func (h *RecognitionHandler) GetEntry(c *gin.Context) {
	resp, err := h.service.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Discard a recognition entry
// @Tags Recognition
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /recognition/entries/{id} [delete]
func (h *RecognitionHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "entry discarded"})
}

// @Summary Commit a recognition entry
// @Description Register the recognized fields as a delivery note. Possible duplicates need confirm_duplicate.
// @Tags Recognition
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body dto.CommitRecognitionRequest false "Overrides and confirmation"
// @Success 201 {object} dto.DeliveryNoteResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /recognition/entries/{id}/commit [post]
func (h *RecognitionHandler) Commit(c *gin.Context) {
	var req dto.CommitRecognitionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.service.Commit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Recognition history
// @Tags Recognition
// @Produce json
// @Success 200 {object} dto.RecognitionHistoryResponse
// @Router /recognition/history [get]
func (h *RecognitionHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.History(c.Request.Context()))
}
