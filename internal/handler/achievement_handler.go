package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/pkg/response"
)

type achievementProvider interface {
	ListStudent(ctx context.Context, studentID string) ([]models.AwardedAchievement, error)
	EvaluateStudent(ctx context.Context, studentID string) ([]models.AchievementID, error)
}

// AchievementHandler exposes badge listing and on-demand evaluation.
type AchievementHandler struct {
	service achievementProvider
}

// NewAchievementHandler constructs the handler.
func NewAchievementHandler(svc achievementProvider) *AchievementHandler {
	return &AchievementHandler{service: svc}
}

// List godoc
// @Summary List a student's achievements
// @Tags Achievements
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	awarded, err := h.service.ListStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, awarded, nil)
}

// Evaluate godoc
// @Summary Re-evaluate a student's achievements
// @Description Run the badge rules against the student's current history and persist any new awards
// @Tags Achievements
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/achievements/evaluate [post]
func (h *AchievementHandler) Evaluate(c *gin.Context) {
	earned, err := h.service.EvaluateStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"new_achievements": earned}, nil)
}
