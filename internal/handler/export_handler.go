package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hafs-center/markaz-api/internal/service"
	"github.com/hafs-center/markaz-api/pkg/response"
)

type progressExporter interface {
	ProgressReport(ctx context.Context, studentID string, from, to time.Time, format string) (*service.ProgressReport, error)
	EnqueueBulk(ctx context.Context, circleID string, from, to time.Time) (int, error)
}

// ExportHandler exposes parent progress report generation.
type ExportHandler struct {
	service progressExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc progressExporter) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ProgressReport godoc
// @Summary Render a student's progress report
// @Description Render the report as csv, pdf, or a WhatsApp message link for the parent
// @Tags Exports
// @Produce json
// @Param id path string true "Student ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param format query string false "csv, pdf or link" default(link)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/progress-report [get]
func (h *ExportHandler) ProgressReport(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", service.FormatLink)

	report, err := h.service.ProgressReport(c.Request.Context(), c.Param("id"), from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch format {
	case service.FormatCSV:
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", report.Content)
	case service.FormatPDF:
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
		c.Data(http.StatusOK, "application/pdf", report.Content)
	default:
		response.JSON(c, http.StatusOK, report, nil)
	}
}

// BulkProgress godoc
// @Summary Schedule progress reports for a whole circle
// @Description Enqueue background rendering of a progress report per active student of the circle
// @Tags Exports
// @Produce json
// @Param id path string true "Circle ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /circles/{id}/progress-reports [post]
func (h *ExportHandler) BulkProgress(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	scheduled, err := h.service.EnqueueBulk(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"scheduled": scheduled}, nil)
}
