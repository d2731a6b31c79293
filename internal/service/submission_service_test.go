package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eskolar/grading-api/internal/models"
	"github.com/eskolar/grading-api/internal/repository"
)

type mockPeriodChecker struct {
	check models.PeriodCheck
}

func (m *mockPeriodChecker) IsFinalsPeriodActive(ctx context.Context, academicYear, semester string) models.PeriodCheck {
	return m.check
}

type mockAssignmentChecker struct {
	assigned bool
}

func (m *mockAssignmentChecker) IsTeacherAssignedToCourse(ctx context.Context, teacherID, subjectID, classroomID, academicYear, semester string) bool {
	return m.assigned
}

type mockLockChecker struct {
	status models.LockStatus
}

func (m *mockLockChecker) IsGradeLocked(ctx context.Context, gradeID, subjectID, academicYear, semester string) models.LockStatus {
	return m.status
}

func (m *mockLockChecker) ValidateGradeValue(grade, maxPoints float64) (bool, string) {
	if maxPoints <= 0 {
		maxPoints = 100
	}
	if grade < 0 {
		return false, "grade cannot be negative"
	}
	if grade > maxPoints {
		return false, fmt.Sprintf("grade cannot exceed %g points", maxPoints)
	}
	return true, ""
}

type mockSubmissionStore struct {
	existing  *models.Grade
	record    *models.SubmissionRecord
	submitErr error
	lastSub   models.FinalSubmission
	submits   int
}

func (m *mockSubmissionStore) FindFinal(ctx context.Context, studentID, subjectID, academicYear, semester string) (*models.Grade, error) {
	if m.existing == nil {
		return nil, sql.ErrNoRows
	}
	return m.existing, nil
}

func (m *mockSubmissionStore) SubmitFinal(ctx context.Context, sub models.FinalSubmission) (*models.SubmissionRecord, error) {
	m.submits++
	m.lastSub = sub
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.record, nil
}

type mockTermReader struct {
	term *models.Term
	err  error
}

func (m *mockTermReader) Find(ctx context.Context, academicYear, semester string) (*models.Term, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.term == nil {
		return nil, sql.ErrNoRows
	}
	return m.term, nil
}

type mockAuditTrail struct {
	entries []models.GradeAuditEntry
	trail   []models.GradeAuditEntry
	err     error
}

func (m *mockAuditTrail) Create(ctx context.Context, entry *models.GradeAuditEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditTrail) ListByGrade(ctx context.Context, gradeID string) ([]models.GradeAuditEntry, error) {
	return m.trail, nil
}

func openPeriodCheck() models.PeriodCheck {
	return models.PeriodCheck{Active: true, Message: "the finals grading period is open"}
}

func activeTerm() *models.Term {
	return &models.Term{ID: "term1", AcademicYear: "2025-2026", Semester: "1", Status: models.TermStatusActive}
}

func validSubmission() SubmitFinalGradeRequest {
	return SubmitFinalGradeRequest{
		StudentID:    "s1",
		SubjectID:    "sub1",
		ClassroomID:  "c1",
		Grade:        88,
		MaxPoints:    100,
		AcademicYear: "2025-2026",
		Semester:     "1",
	}
}

func TestSubmissionServiceFirstSubmission(t *testing.T) {
	store := &mockSubmissionStore{record: &models.SubmissionRecord{
		Grade:   &models.Grade{ID: "g1", ApprovalStatus: models.ApprovalSubmitted},
		Created: true,
	}}
	audit := &mockAuditTrail{}
	svc := NewGradeSubmissionService(
		&mockPeriodChecker{check: openPeriodCheck()},
		&mockAssignmentChecker{assigned: true},
		&mockLockChecker{},
		store,
		&mockTermReader{term: activeTerm()},
		audit, nil, nil, 100)

	result := svc.SubmitFinalGrade(context.Background(), "t1", validSubmission())
	assert.True(t, result.Success)
	assert.Equal(t, "g1", result.GradeID)
	assert.Equal(t, "final grade submitted", result.Message)
	assert.Equal(t, "t1", store.lastSub.TeacherID)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.GradeActionSubmitted, audit.entries[0].ActionType)
}

func TestSubmissionServiceGateCollectsEveryFailure(t *testing.T) {
	store := &mockSubmissionStore{}
	svc := NewGradeSubmissionService(
		&mockPeriodChecker{check: models.PeriodCheck{Active: false, Message: "the finals grading period is not active"}},
		&mockAssignmentChecker{assigned: false},
		&mockLockChecker{},
		store,
		&mockTermReader{},
		&mockAuditTrail{}, nil, nil, 100)

	req := validSubmission()
	req.Grade = -5
	result := svc.SubmitFinalGrade(context.Background(), "t1", req)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "grade cannot be negative")
	assert.Contains(t, result.Message, "not assigned to this subject")
	assert.Contains(t, result.Message, "term does not exist")
	assert.Contains(t, result.Message, "grading period is not active")
	assert.Zero(t, store.submits)
}

func TestSubmissionServiceGateIncludesLockReason(t *testing.T) {
	store := &mockSubmissionStore{existing: &models.Grade{ID: "g1", ApprovalStatus: models.ApprovalApproved, IsLocked: true}}
	svc := NewGradeSubmissionService(
		&mockPeriodChecker{check: openPeriodCheck()},
		&mockAssignmentChecker{assigned: true},
		&mockLockChecker{status: models.LockStatus{Locked: true, Reason: "grade is approved and locked"}},
		store,
		&mockTermReader{term: activeTerm()},
		&mockAuditTrail{}, nil, nil, 100)

	result := svc.SubmitFinalGrade(context.Background(), "t1", validSubmission())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "grade is approved and locked")
	assert.Zero(t, store.submits)
}

func TestSubmissionServiceLockedWithoutTokenAtStorage(t *testing.T) {
	// the gate saw the grade as editable but the transaction caught the lock
	store := &mockSubmissionStore{
		existing:  &models.Grade{ID: "g1", ApprovalStatus: models.ApprovalSubmitted},
		submitErr: repository.ErrLockedWithoutToken,
	}
	svc := NewGradeSubmissionService(
		&mockPeriodChecker{check: openPeriodCheck()},
		&mockAssignmentChecker{assigned: true},
		&mockLockChecker{},
		store,
		&mockTermReader{term: activeTerm()},
		&mockAuditTrail{}, nil, nil, 100)

	result := svc.SubmitFinalGrade(context.Background(), "t1", validSubmission())
	assert.False(t, result.Success)
	assert.Equal(t, "grade is approved and locked; request an edit before resubmitting", result.Message)
}

func TestSubmissionServiceResubmissionConsumesToken(t *testing.T) {
	prev := models.ApprovalApproved
	store := &mockSubmissionStore{
		existing: &models.Grade{ID: "g1", ApprovalStatus: models.ApprovalApproved, IsLocked: true},
		record: &models.SubmissionRecord{
			Grade:             &models.Grade{ID: "g1", ApprovalStatus: models.ApprovalSubmitted},
			PreviousStatus:    &prev,
			ConsumedRequestID: "req1",
		},
	}
	audit := &mockAuditTrail{}
	svc := NewGradeSubmissionService(
		&mockPeriodChecker{check: openPeriodCheck()},
		&mockAssignmentChecker{assigned: true},
		&mockLockChecker{status: models.LockStatus{Locked: false, Reason: "edit approved, the grade is editable once"}},
		store,
		&mockTermReader{term: activeTerm()},
		audit, nil, nil, 100)

	result := svc.SubmitFinalGrade(context.Background(), "t1", validSubmission())
	assert.True(t, result.Success)
	assert.Equal(t, "final grade updated", result.Message)
	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, models.GradeActionResubmitted, entry.ActionType)
	require.NotNil(t, entry.PreviousStatus)
	assert.Equal(t, "approved", *entry.PreviousStatus)
	require.NotNil(t, entry.Notes)
	assert.Contains(t, *entry.Notes, "req1")
}

func TestSubmissionServiceRejectsInvalidPayload(t *testing.T) {
	svc := NewGradeSubmissionService(
		&mockPeriodChecker{check: openPeriodCheck()},
		&mockAssignmentChecker{assigned: true},
		&mockLockChecker{},
		&mockSubmissionStore{},
		&mockTermReader{term: activeTerm()},
		&mockAuditTrail{}, nil, nil, 100)

	result := svc.SubmitFinalGrade(context.Background(), "t1", SubmitFinalGradeRequest{SubjectID: "sub1"})
	assert.False(t, result.Success)
	assert.Equal(t, "invalid submission payload", result.Message)
}

func TestSubmissionServiceDefaultsMaxPoints(t *testing.T) {
	store := &mockSubmissionStore{record: &models.SubmissionRecord{
		Grade:   &models.Grade{ID: "g1", ApprovalStatus: models.ApprovalSubmitted},
		Created: true,
	}}
	svc := NewGradeSubmissionService(
		&mockPeriodChecker{check: openPeriodCheck()},
		&mockAssignmentChecker{assigned: true},
		&mockLockChecker{},
		store,
		&mockTermReader{term: activeTerm()},
		&mockAuditTrail{}, nil, nil, 100)

	req := validSubmission()
	req.MaxPoints = 0
	result := svc.SubmitFinalGrade(context.Background(), "t1", req)
	assert.True(t, result.Success)
	assert.Equal(t, float64(100), store.lastSub.MaxPoints)
}
