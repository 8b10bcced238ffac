package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scholaris/lms-api/internal/service"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
	"github.com/scholaris/lms-api/pkg/response"
	"github.com/scholaris/lms-api/pkg/storage"
)

// GradingHandler exposes activity, submission and scoring endpoints.
type GradingHandler struct {
	grading *service.GradingService
	store   *storage.LocalStorage
}

// NewGradingHandler constructs GradingHandler.
func NewGradingHandler(grading *service.GradingService, store *storage.LocalStorage) *GradingHandler {
	return &GradingHandler{grading: grading, store: store}
}

// CreateActivity godoc
// @Summary Create activity
// @Tags Grading
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/activities [post]
func (h *GradingHandler) CreateActivity(c *gin.Context) {
	var req service.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.grading.CreateActivity(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// ListActivities godoc
// @Summary List activities of a class
// @Tags Grading
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/activities [get]
func (h *GradingHandler) ListActivities(c *gin.Context) {
	activities, err := h.grading.ListActivities(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}

// Submit godoc
// @Summary Submit activity answer
// @Description Creates or replaces the student's submission. Accepts JSON or multipart with a file attachment. A prior grade survives re-submission. Rejected with 409 when the class is closed.
// @Tags Grading
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body service.SubmitRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/submissions [post]
func (h *GradingHandler) Submit(c *gin.Context) {
	req, err := h.bindSubmission(c)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	submission, err := h.grading.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

func (h *GradingHandler) bindSubmission(c *gin.Context) (service.SubmitRequest, error) {
	var req service.SubmitRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return req, c.ShouldBindJSON(&req)
	}

	req.StudentID = c.PostForm("student_id")
	if answer := c.PostForm("text_answer"); answer != "" {
		req.TextAnswer = &answer
	}
	file, err := c.FormFile("file")
	if err != nil {
		// Attachment is optional on multipart submissions.
		return req, nil
	}
	if h.store == nil {
		return req, fmt.Errorf("file uploads are not configured")
	}
	src, err := file.Open()
	if err != nil {
		return req, err
	}
	defer src.Close() //nolint:errcheck
	stored, err := h.store.SaveStream(
		fmt.Sprintf("submissions/%s/%s/%s", c.Param("id"), req.StudentID, filepath.Base(file.Filename)), src)
	if err != nil {
		return req, err
	}
	req.FilePath = &stored
	return req, nil
}

// Roster godoc
// @Summary Activity roster
// @Description Lists every enrolled student with their submission state and derived lateness.
// @Tags Grading
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/submissions [get]
func (h *GradingHandler) Roster(c *gin.Context) {
	rows, err := h.grading.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Grade godoc
// @Summary Grade submission
// @Tags Grading
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body service.GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/grade [put]
func (h *GradingHandler) Grade(c *gin.Context) {
	var req service.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	submission, err := h.grading.Grade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// StudentClassScore godoc
// @Summary Student's overall class score
// @Tags Grading
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/scores/{studentId} [get]
func (h *GradingHandler) StudentClassScore(c *gin.Context) {
	score, err := h.grading.StudentClassScore(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score, nil)
}
