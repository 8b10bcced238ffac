package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scholaris/lms-api/internal/service"
	"github.com/scholaris/lms-api/pkg/response"
)

// StudentHandler exposes the student-facing rewards and dashboard endpoints.
type StudentHandler struct {
	rewards   *service.RewardsService
	dashboard *service.DashboardService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(rewards *service.RewardsService, dashboard *service.DashboardService) *StudentHandler {
	return &StudentHandler{rewards: rewards, dashboard: dashboard}
}

// Rewards godoc
// @Summary Student points and trophy
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/rewards [get]
func (h *StudentHandler) Rewards(c *gin.Context) {
	rewards, err := h.rewards.StudentRewards(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rewards, nil)
}

// Dashboard godoc
// @Summary Student dashboard
// @Description Headline counters, recent progress feed and the daily inspiration.
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/dashboard [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboard.StudentDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
