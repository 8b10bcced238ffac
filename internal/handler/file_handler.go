package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/scholaris/lms-api/internal/service"
	appErrors "github.com/scholaris/lms-api/pkg/errors"
	"github.com/scholaris/lms-api/pkg/response"
	"github.com/scholaris/lms-api/pkg/storage"
)

// FileHandler serves uploaded attachments through signed download links.
type FileHandler struct {
	grading *service.GradingService
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(grading *service.GradingService, store *storage.LocalStorage, signer *storage.SignedURLSigner) *FileHandler {
	return &FileHandler{grading: grading, store: store, signer: signer}
}

// SubmissionDownloadLink godoc
// @Summary Signed download link for a submission attachment
// @Tags Grading
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/file [get]
func (h *FileHandler) SubmissionDownloadLink(c *gin.Context) {
	submission, err := h.grading.GetSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if submission.FilePath == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "submission has no attachment"))
		return
	}
	token, expiresAt, err := h.signer.Generate(submission.ID, *submission.FilePath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":        "/api/v1/files/" + token,
		"expires_at": expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a file by signed token
// @Tags Grading
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, http.StatusNotFound, "invalid or expired download link"))
		return
	}
	c.FileAttachment(h.store.Path(relPath), filepath.Base(relPath))
}
