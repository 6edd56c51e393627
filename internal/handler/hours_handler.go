package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type hoursService interface {
	Summarize(ctx context.Context) ([]models.TrainerHoursSummary, error)
	Export(ctx context.Context, format string) (*service.HoursExport, error)
}

// HoursHandler exposes the trainer hours report.
type HoursHandler struct {
	service hoursService
}

// NewHoursHandler builds an hours handler.
func NewHoursHandler(svc hoursService) *HoursHandler {
	return &HoursHandler{service: svc}
}

// Summary godoc
// @Summary Hours worked per trainer, lowest first
// @Tags Hours
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hours [get]
func (h *HoursHandler) Summary(c *gin.Context) {
	summaries, err := h.service.Summarize(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// Export godoc
// @Summary Download the hours report
// @Tags Hours
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /hours/export [get]
func (h *HoursHandler) Export(c *gin.Context) {
	report, err := h.service.Export(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Body)
}
