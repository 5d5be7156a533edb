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
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type mockAttendanceRepo struct {
	enrollments map[string]models.TrainingEnrollment
	records     map[string]models.AttendanceRecord
	advanced    []string
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) UpsertAttendance(ctx context.Context, record *models.AttendanceRecord) error {
	if m.records == nil {
		m.records = make(map[string]models.AttendanceRecord)
	}
	key := record.EnrollmentID + "/" + record.SessionID
	if existing, ok := m.records[key]; ok {
		record.ID = existing.ID
	} else if record.ID == "" {
		record.ID = "att-" + key
	}
	m.records[key] = *record
	return nil
}

func (m *mockAttendanceRepo) AdvanceStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) error {
	if e, ok := m.enrollments[id]; ok && e.Status == from {
		e.Status = to
		m.enrollments[id] = e
		m.advanced = append(m.advanced, id)
	}
	return nil
}

type mockSessionReader struct {
	sessions map[string]models.TrainingSession
}

func (m *mockSessionReader) FindSession(ctx context.Context, scheduleID, sessionID string) (*models.TrainingSession, error) {
	if s, ok := m.sessions[sessionID]; ok && s.ScheduleID == scheduleID {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func newAttendanceFixture() (*mockAttendanceRepo, *mockSessionReader) {
	repo := &mockAttendanceRepo{enrollments: map[string]models.TrainingEnrollment{
		"e1": {ID: "e1", ScheduleID: "s1", Status: models.EnrollmentStatusEnrolled},
	}}
	sessions := &mockSessionReader{sessions: map[string]models.TrainingSession{
		"sess-1": {ID: "sess-1", ScheduleID: "s1", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}}
	return repo, sessions
}

func TestAttendanceServiceMark(t *testing.T) {
	repo, sessions := newAttendanceFixture()
	svc := NewAttendanceService(repo, sessions, validator.New(), zap.NewNop())

	record, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "e1", SessionID: "sess-1", Present: true,
	})
	require.NoError(t, err)
	assert.True(t, record.Present)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), record.Date)

	// First mark advances the enrollment.
	assert.Equal(t, models.EnrollmentStatusInProgress, repo.enrollments["e1"].Status)
}

func TestAttendanceServiceMarkReplacesExisting(t *testing.T) {
	repo, sessions := newAttendanceFixture()
	svc := NewAttendanceService(repo, sessions, validator.New(), zap.NewNop())

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "e1", SessionID: "sess-1", Present: true,
	})
	require.NoError(t, err)
	_, err = svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "e1", SessionID: "sess-1", Present: false,
	})
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	assert.False(t, repo.records["e1/sess-1"].Present)

	// A second mark does not advance the enrollment further.
	assert.Equal(t, models.EnrollmentStatusInProgress, repo.enrollments["e1"].Status)
	assert.Len(t, repo.advanced, 1)
}

func TestAttendanceServiceMarkEnrollmentNotFound(t *testing.T) {
	repo, sessions := newAttendanceFixture()
	svc := NewAttendanceService(repo, sessions, validator.New(), zap.NewNop())

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "missing", SessionID: "sess-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkSessionNotInSchedule(t *testing.T) {
	repo, sessions := newAttendanceFixture()
	sessions.sessions["sess-2"] = models.TrainingSession{ID: "sess-2", ScheduleID: "other"}
	svc := NewAttendanceService(repo, sessions, validator.New(), zap.NewNop())

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "e1", SessionID: "sess-2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceBulkMark(t *testing.T) {
	repo, sessions := newAttendanceFixture()
	repo.enrollments["e2"] = models.TrainingEnrollment{ID: "e2", ScheduleID: "s1", Status: models.EnrollmentStatusInProgress}
	svc := NewAttendanceService(repo, sessions, validator.New(), zap.NewNop())

	records, failed, err := svc.BulkMark(context.Background(), BulkMarkAttendanceRequest{
		SessionID: "sess-1",
		Records: []BulkAttendanceItem{
			{EnrollmentID: "e1", Present: true},
			{EnrollmentID: "e2", Present: false},
			{EnrollmentID: "missing", Present: true},
		},
	})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, []string{"missing"}, failed)
}
