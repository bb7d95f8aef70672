package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hafs-center/markaz-api/internal/models"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
	"github.com/hafs-center/markaz-api/pkg/response"
)

const dateLayout = "2006-01-02"

type statsProvider interface {
	StudentStats(ctx context.Context, studentID string) (*models.StudentStats, error)
	AttendanceRange(ctx context.Context, studentID string, from, to time.Time) ([]models.AttendanceEvent, models.AttendanceStats, error)
	Dashboard(ctx context.Context) (*models.DashboardSummary, error)
}

// StatsHandler exposes student and center statistics.
type StatsHandler struct {
	service statsProvider
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(svc statsProvider) *StatsHandler {
	return &StatsHandler{service: svc}
}

// StudentStats godoc
// @Summary Student statistics
// @Description Trailing-window attendance and memorization figures for one student
// @Tags Statistics
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/stats [get]
func (h *StatsHandler) StudentStats(c *gin.Context) {
	stats, err := h.service.StudentStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Attendance godoc
// @Summary Student attendance over a range
// @Tags Statistics
// @Produce json
// @Param id path string true "Student ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *StatsHandler) Attendance(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	events, agg, err := h.service.AttendanceRange(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"events": events, "stats": agg}, nil)
}

// Dashboard godoc
// @Summary Center dashboard summary
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	summary, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid from date %q", c.Query("from")))
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid to date %q", c.Query("to")))
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "to precedes from")
	}
	return from, to, nil
}
