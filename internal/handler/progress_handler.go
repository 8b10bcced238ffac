package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scholaris/lms-api/internal/service"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
	"github.com/scholaris/lms-api/pkg/response"
)

// ProgressHandler exposes lesson progress endpoints.
type ProgressHandler struct {
	progress   *service.ProgressService
	invalidate func(studentID string)
}

// NewProgressHandler constructs ProgressHandler. The invalidate hook, when
// set, is called after a successful advance so cached dashboards refresh.
func NewProgressHandler(progress *service.ProgressService, invalidate func(studentID string)) *ProgressHandler {
	return &ProgressHandler{progress: progress, invalidate: invalidate}
}

type advanceProgressRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// Advance godoc
// @Summary Advance lesson progress
// @Description First call starts the lesson, second completes it and awards the point, further calls change nothing. Rejected with 409 when the class is closed.
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body advanceProgressRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/progress [post]
func (h *ProgressHandler) Advance(c *gin.Context) {
	var req advanceProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	progress, err := h.progress.Advance(c.Request.Context(), c.Param("id"), req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.invalidate != nil {
		h.invalidate(req.StudentID)
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// ClassSummary godoc
// @Summary Class progress summary
// @Tags Progress
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId query string false "Scope to one student"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/progress [get]
func (h *ProgressHandler) ClassSummary(c *gin.Context) {
	summary, err := h.progress.ClassSummary(c.Request.Context(), c.Param("id"), c.Query("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
