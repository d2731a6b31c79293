package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eskolar/grading-api/internal/models"
	appErrors "github.com/eskolar/grading-api/pkg/errors"
	"github.com/eskolar/grading-api/pkg/response"
)

type archiveService interface {
	CheckAndArchiveCourse(ctx context.Context, gradeID, actorID string) models.ArchiveResult
	ListArchived(ctx context.Context, academicYear, semester string) ([]models.ArchivedCourse, error)
}

// ArchiveHandler manages cohort archival endpoints.
type ArchiveHandler struct {
	service archiveService
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(service archiveService) *ArchiveHandler {
	return &ArchiveHandler{service: service}
}

// Check godoc
// @Summary Archive the cohort of a grade when every grade in it is approved
// @Tags Archives
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/archive-check [post]
func (h *ArchiveHandler) Check(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result := h.service.CheckAndArchiveCourse(c.Request.Context(), c.Param("id"), claims.UserID)
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List archived cohorts
// @Tags Archives
// @Produce json
// @Param academicYear query string false "Academic year filter"
// @Param semester query string false "Semester filter"
// @Success 200 {object} response.Envelope
// @Router /archived-courses [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	records, err := h.service.ListArchived(c.Request.Context(), strings.TrimSpace(c.Query("academicYear")), strings.TrimSpace(c.Query("semester")))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived courses"))
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
