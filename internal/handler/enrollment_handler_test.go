package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-training-api/internal/models"
	"github.com/noah-isme/erp-training-api/internal/repository"
	"github.com/noah-isme/erp-training-api/internal/service"
)

type enrollmentRepoMock struct {
	createErr error
	exists    bool
	created   *models.TrainingEnrollment
}

func (m *enrollmentRepoMock) Create(ctx context.Context, enrollment *models.TrainingEnrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = enrollment
	return nil
}

func (m *enrollmentRepoMock) FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error) {
	return nil, sql.ErrNoRows
}

func (m *enrollmentRepoMock) ExistsActive(ctx context.Context, scheduleID, employeeID string) (bool, error) {
	return m.exists, nil
}

func (m *enrollmentRepoMock) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.TrainingEnrollment, int, error) {
	return nil, 0, nil
}

func (m *enrollmentRepoMock) Withdraw(ctx context.Context, id, scheduleID string) error {
	return nil
}

type scheduleReaderMock struct {
	schedule *models.TrainingSchedule
}

func (m *scheduleReaderMock) FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error) {
	if m.schedule == nil || m.schedule.ID != id {
		return nil, sql.ErrNoRows
	}
	s := *m.schedule
	return &s, nil
}

func newEnrollmentHandler(repo *enrollmentRepoMock, schedules *scheduleReaderMock) *EnrollmentHandler {
	enrollments := service.NewEnrollmentService(repo, schedules, nil, nil, nil, nil)
	return NewEnrollmentHandler(enrollments, nil)
}

func testScheduleForEnroll() *models.TrainingSchedule {
	return &models.TrainingSchedule{
		ID:              "sched-1",
		ProgramID:       "prog-1",
		ProgramTitle:    "Go Fundamentals",
		Status:          models.ScheduleStatusPlanned,
		MaxParticipants: 15,
		EnrolledCount:   3,
	}
}

func enrollBody(t *testing.T) *bytes.Reader {
	body, err := json.Marshal(service.EnrollEmployeeRequest{
		ScheduleID:   "sched-1",
		EmployeeID:   "emp-1",
		EmployeeCode: "E-001",
		EmployeeName: "Employee One",
		Department:   "Engineering",
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestEnrollmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoMock{}
	handler := newEnrollmentHandler(repo, &scheduleReaderMock{schedule: testScheduleForEnroll()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", enrollBody(t))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "prog-1", repo.created.ProgramID)
}

func TestEnrollmentHandlerCreateCapacityConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &enrollmentRepoMock{createErr: repository.ErrCapacityFull}
	handler := newEnrollmentHandler(repo, &scheduleReaderMock{schedule: testScheduleForEnroll()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", enrollBody(t))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEnrollmentHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newEnrollmentHandler(&enrollmentRepoMock{}, &scheduleReaderMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
