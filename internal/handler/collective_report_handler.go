package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hafs-center/markaz-api/internal/service"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
	"github.com/hafs-center/markaz-api/pkg/response"
)

type collectiveImporter interface {
	Import(ctx context.Context, req service.ImportRequest) (*service.ImportSummary, error)
}

// CollectiveReportHandler exposes the collective report importer.
type CollectiveReportHandler struct {
	service collectiveImporter
}

// NewCollectiveReportHandler constructs the handler.
func NewCollectiveReportHandler(svc collectiveImporter) *CollectiveReportHandler {
	return &CollectiveReportHandler{service: svc}
}

// Import godoc
// @Summary Import a collective report message
// @Description Parse a teacher's free-form collective report and store the resulting recitation reports and attendance events
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.ImportRequest true "Collective report payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/collective [post]
func (h *CollectiveReportHandler) Import(c *gin.Context) {
	var req service.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}

	summary, err := h.service.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, summary)
}
