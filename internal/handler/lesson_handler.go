package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scholaris/lms-api/internal/service"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
	"github.com/scholaris/lms-api/pkg/response"
)

// LessonHandler exposes lesson endpoints.
type LessonHandler struct {
	lessons *service.LessonService
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(lessons *service.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

// Create godoc
// @Summary Create lesson
// @Description Creates a lesson and backfills a not_started progress row for every enrollment of the class.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req service.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.lessons.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// List godoc
// @Summary List lessons of a class
// @Tags Lessons
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	lessons, err := h.lessons.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// Delete godoc
// @Summary Delete lesson
// @Description Deletes the lesson together with all of its progress rows.
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.lessons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder godoc
// @Summary Reorder lessons
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.ReorderLessonsRequest true "Desired lesson order"
// @Success 204
// @Router /classes/{id}/lessons/order [put]
func (h *LessonHandler) Reorder(c *gin.Context) {
	var req service.ReorderLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.lessons.Reorder(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
