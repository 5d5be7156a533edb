package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	"github.com/noah-isme/erp-training-api/internal/repository"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]models.TrainingEnrollment
	active      map[string]bool
	created     *models.TrainingEnrollment
	createErr   error
	withdrawn   []string
	withdrawErr error
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.TrainingEnrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.TrainingEnrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enrollment"
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ExistsActive(ctx context.Context, scheduleID, employeeID string) (bool, error) {
	return m.active[scheduleID+"/"+employeeID], nil
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.TrainingEnrollment, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) Withdraw(ctx context.Context, id, scheduleID string) error {
	if m.withdrawErr != nil {
		return m.withdrawErr
	}
	if e, ok := m.enrollments[id]; ok {
		e.Status = models.EnrollmentStatusWithdrawn
		m.enrollments[id] = e
	}
	m.withdrawn = append(m.withdrawn, id)
	return nil
}

type mockScheduleReader struct {
	schedules map[string]models.TrainingSchedule
}

func (m *mockScheduleReader) FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error) {
	if s, ok := m.schedules[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func enrollRequest(scheduleID, employeeID string) EnrollEmployeeRequest {
	return EnrollEmployeeRequest{
		ScheduleID:   scheduleID,
		EmployeeID:   employeeID,
		EmployeeCode: "EMP-" + employeeID,
		EmployeeName: "Employee " + employeeID,
		Department:   "Engineering",
	}
}

func newTestSchedules(enrolled, capacity int) *mockScheduleReader {
	return &mockScheduleReader{schedules: map[string]models.TrainingSchedule{
		"s1": {
			ID:              "s1",
			ProgramID:       "p1",
			ProgramTitle:    "Go Fundamentals",
			Status:          models.ScheduleStatusPlanned,
			MaxParticipants: capacity,
			EnrolledCount:   enrolled,
		},
	}}
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, newTestSchedules(0, 10), nil, nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Enroll(context.Background(), enrollRequest("s1", "e1"))
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	assert.Equal(t, "p1", enrollment.ProgramID)
	assert.Equal(t, "Go Fundamentals", enrollment.ProgramTitle)

	// Enrollment date is date-only.
	assert.Equal(t, enrollment.EnrollmentDate, enrollment.EnrollmentDate.Truncate(24*time.Hour))
}

func TestEnrollmentServiceEnrollScheduleNotFound(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, newTestSchedules(0, 10), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), enrollRequest("missing", "e1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceCapacityExceeded(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, newTestSchedules(2, 2), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), enrollRequest("s1", "e3"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceCapacityRaceFromRepo(t *testing.T) {
	// Snapshot shows a free seat but the atomic claim in the repository loses
	// the race.
	repo := &mockEnrollmentRepo{createErr: repository.ErrCapacityFull}
	svc := NewEnrollmentService(repo, newTestSchedules(1, 2), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), enrollRequest("s1", "e2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{active: map[string]bool{"s1/e1": true}}
	svc := NewEnrollmentService(repo, newTestSchedules(1, 10), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), enrollRequest("s1", "e1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceDuplicateRaceFromRepo(t *testing.T) {
	repo := &mockEnrollmentRepo{createErr: repository.ErrDuplicateEnrollment}
	svc := NewEnrollmentService(repo, newTestSchedules(1, 10), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), enrollRequest("s1", "e1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEnrollment.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceSameEmployeeDifferentSchedule(t *testing.T) {
	schedules := newTestSchedules(1, 10)
	schedules.schedules["s2"] = models.TrainingSchedule{
		ID: "s2", ProgramID: "p2", ProgramTitle: "Advanced Go",
		Status: models.ScheduleStatusPlanned, MaxParticipants: 10, EnrolledCount: 0,
	}
	repo := &mockEnrollmentRepo{active: map[string]bool{"s1/e1": true}}
	svc := NewEnrollmentService(repo, schedules, nil, nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Enroll(context.Background(), enrollRequest("s2", "e1"))
	require.NoError(t, err)
	assert.Equal(t, "s2", enrollment.ScheduleID)
}

func TestEnrollmentServiceWithdraw(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.TrainingEnrollment{
		"e1": {ID: "e1", ScheduleID: "s1", Status: models.EnrollmentStatusEnrolled},
	}}
	svc := NewEnrollmentService(repo, newTestSchedules(1, 10), nil, nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Withdraw(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusWithdrawn, enrollment.Status)
	assert.Contains(t, repo.withdrawn, "e1")
}

func TestEnrollmentServiceWithdrawRaceFromRepo(t *testing.T) {
	// Snapshot shows ENROLLED but a concurrent withdrawal transitions the row
	// first; the guarded update reports nothing to withdraw.
	repo := &mockEnrollmentRepo{
		enrollments: map[string]models.TrainingEnrollment{
			"e1": {ID: "e1", ScheduleID: "s1", Status: models.EnrollmentStatusEnrolled},
		},
		withdrawErr: repository.ErrNotWithdrawable,
	}
	svc := NewEnrollmentService(repo, newTestSchedules(1, 10), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Withdraw(context.Background(), "e1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceWithdrawFinalized(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.TrainingEnrollment{
		"e1": {ID: "e1", ScheduleID: "s1", Status: models.EnrollmentStatusCompleted},
	}}
	svc := NewEnrollmentService(repo, newTestSchedules(1, 10), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Withdraw(context.Background(), "e1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.withdrawn)
}
