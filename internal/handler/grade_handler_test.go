package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eskolar/grading-api/internal/middleware"
	"github.com/eskolar/grading-api/internal/models"
	"github.com/eskolar/grading-api/internal/service"
)

type gradeSubmitterMock struct {
	result    models.SubmissionResult
	teacherID string
	trail     []models.GradeAuditEntry
}

func (m *gradeSubmitterMock) SubmitFinalGrade(ctx context.Context, teacherID string, req service.SubmitFinalGradeRequest) models.SubmissionResult {
	m.teacherID = teacherID
	return m.result
}

func (m *gradeSubmitterMock) AuditTrail(ctx context.Context, gradeID string) ([]models.GradeAuditEntry, error) {
	return m.trail, nil
}

type gradeLockCheckerMock struct {
	status models.LockStatus
}

func (m *gradeLockCheckerMock) IsGradeLocked(ctx context.Context, gradeID, subjectID, academicYear, semester string) models.LockStatus {
	return m.status
}

func TestGradeHandlerSubmitFinal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	submitter := &gradeSubmitterMock{result: models.SubmissionResult{Success: true, GradeID: "g1", Message: "final grade submitted"}}
	handler := NewGradeHandler(submitter, &gradeLockCheckerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.SubmitFinalGradeRequest{
		StudentID:    "s1",
		SubjectID:    "sub1",
		ClassroomID:  "c1",
		Grade:        88,
		AcademicYear: "2025-2026",
		Semester:     "1",
	})
	req, _ := http.NewRequest(http.MethodPost, "/grades/final", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})

	handler.SubmitFinal(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", submitter.teacherID)
}

func TestGradeHandlerSubmitFinalRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	submitter := &gradeSubmitterMock{result: models.SubmissionResult{Success: false, Message: "the finals grading period is not active"}}
	handler := NewGradeHandler(submitter, &gradeLockCheckerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.SubmitFinalGradeRequest{StudentID: "s1"})
	req, _ := http.NewRequest(http.MethodPost, "/grades/final", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})

	handler.SubmitFinal(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGradeHandlerSubmitFinalUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeSubmitterMock{}, &gradeLockCheckerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/grades/final", bytes.NewReader([]byte(`{}`)))
	c.Request = req

	handler.SubmitFinal(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGradeHandlerLockStatusRequiresTerm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeSubmitterMock{}, &gradeLockCheckerMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/grades/g1/lock", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "g1"}}

	handler.LockStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeHandlerLockStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(&gradeSubmitterMock{}, &gradeLockCheckerMock{status: models.LockStatus{Locked: true, Reason: "grade is locked"}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/grades/g1/lock?academicYear=2025-2026&semester=1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "g1"}}

	handler.LockStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"locked":true`)
}
