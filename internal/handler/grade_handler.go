package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eskolar/grading-api/internal/models"
	"github.com/eskolar/grading-api/internal/service"
	appErrors "github.com/eskolar/grading-api/pkg/errors"
	"github.com/eskolar/grading-api/pkg/response"
)

type gradeSubmitter interface {
	SubmitFinalGrade(ctx context.Context, teacherID string, req service.SubmitFinalGradeRequest) models.SubmissionResult
	AuditTrail(ctx context.Context, gradeID string) ([]models.GradeAuditEntry, error)
}

type gradeLockChecker interface {
	IsGradeLocked(ctx context.Context, gradeID, subjectID, academicYear, semester string) models.LockStatus
}

// GradeHandler manages final-grade HTTP endpoints.
type GradeHandler struct {
	submissions gradeSubmitter
	locks       gradeLockChecker
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(submissions gradeSubmitter, locks gradeLockChecker) *GradeHandler {
	return &GradeHandler{submissions: submissions, locks: locks}
}

// SubmitFinal godoc
// @Summary Submit or resubmit a final grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.SubmitFinalGradeRequest true "Final grade"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /grades/final [post]
func (h *GradeHandler) SubmitFinal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitFinalGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload"))
		return
	}

	result := h.submissions.SubmitFinalGrade(c.Request.Context(), claims.UserID, req)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	response.JSON(c, status, result, nil)
}

// LockStatus godoc
// @Summary Report whether a grade is currently editable
// @Tags Grades
// @Produce json
// @Param id path string true "Grade ID"
// @Param subjectId query string false "Subject ID"
// @Param academicYear query string true "Academic year"
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/lock [get]
func (h *GradeHandler) LockStatus(c *gin.Context) {
	academicYear := strings.TrimSpace(c.Query("academicYear"))
	semester := strings.TrimSpace(c.Query("semester"))
	if academicYear == "" || semester == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear and semester are required"))
		return
	}

	status := h.locks.IsGradeLocked(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("subjectId")), academicYear, semester)
	response.JSON(c, http.StatusOK, status, nil)
}

// AuditTrail godoc
// @Summary List the audit trail of a grade
// @Tags Grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/audit [get]
func (h *GradeHandler) AuditTrail(c *gin.Context) {
	entries, err := h.submissions.AuditTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail"))
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
