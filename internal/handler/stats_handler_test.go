package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hafs-center/markaz-api/internal/models"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type statsServiceMock struct {
	stats     *models.StudentStats
	statsErr  error
	events    []models.AttendanceEvent
	agg       models.AttendanceStats
	dashboard *models.DashboardSummary
}

func (m *statsServiceMock) StudentStats(context.Context, string) (*models.StudentStats, error) {
	return m.stats, m.statsErr
}

func (m *statsServiceMock) AttendanceRange(context.Context, string, time.Time, time.Time) ([]models.AttendanceEvent, models.AttendanceStats, error) {
	return m.events, m.agg, nil
}

func (m *statsServiceMock) Dashboard(context.Context) (*models.DashboardSummary, error) {
	return m.dashboard, nil
}

func TestStatsHandlerStudentStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStatsHandler(&statsServiceMock{stats: &models.StudentStats{StudentID: "s1", MonthlyVerses: 40}})

	c, w := newGinContext(http.MethodGet, "/students/s1/stats", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.StudentStats(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStatsHandlerStudentStatsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStatsHandler(&statsServiceMock{statsErr: appErrors.Clone(appErrors.ErrNotFound, "student not found")})

	c, w := newGinContext(http.MethodGet, "/students/missing/stats", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.StudentStats(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsHandlerAttendanceValidatesRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStatsHandler(&statsServiceMock{})

	// Missing dates.
	c, w := newGinContext(http.MethodGet, "/students/s1/attendance", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	h.Attendance(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Inverted range.
	c, w = newGinContext(http.MethodGet, "/students/s1/attendance?from=2025-03-20&to=2025-03-01", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	h.Attendance(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsHandlerAttendance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewStatsHandler(&statsServiceMock{
		events: []models.AttendanceEvent{{StudentID: "s1", Status: models.AttendancePresent}},
		agg:    models.AttendanceStats{Present: 1, TotalValidDays: 1, RatePercent: 100},
	})

	c, w := newGinContext(http.MethodGet, "/students/s1/attendance?from=2025-03-01&to=2025-03-20", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	h.Attendance(c)
	require.Equal(t, http.StatusOK, w.Code)
}
