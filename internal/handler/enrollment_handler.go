package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scholaris/lms-api/internal/models"
	"github.com/scholaris/lms-api/internal/service"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
	"github.com/scholaris/lms-api/pkg/response"
)

// EnrollmentHandler exposes roster endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

type enrollStudentRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// Enroll godoc
// @Summary Enroll student
// @Description Adds the student to the class and backfills a not_started progress row for every lesson. Enrolling twice is a no-op returning the existing enrollment.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body enrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/students [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req enrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), c.Param("id"), req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// List godoc
// @Summary List class roster
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	enrollments, err := h.enrollments.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Remove godoc
// @Summary Remove student from class
// @Description Purges the enrollment, the student's progress rows and their submissions in this class. Removing an absent enrollment succeeds.
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 204
// @Router /classes/{id}/students/{studentId} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	if err := h.enrollments.Remove(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type setEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required"`
}

// SetStatus godoc
// @Summary Set enrollment status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body setEnrollmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/status [put]
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	var req setEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}
