package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-training-api/internal/models"
)

func TestScheduleRepositoryCreateWithSessions(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO training_schedules")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO training_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO training_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	schedule := &models.TrainingSchedule{
		ProgramID:       "prog-1",
		ProgramTitle:    "Go Fundamentals",
		Mode:            models.DeliveryModeOnline,
		StartDate:       time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
		Location:        "Remote",
		Status:          models.ScheduleStatusPlanned,
		MaxParticipants: 15,
		Sessions: []models.TrainingSession{
			{Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "12:00", Topic: "Basics"},
			{Date: time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "12:00", Topic: "Concurrency"},
		},
	}
	err := repo.Create(context.Background(), schedule)
	require.NoError(t, err)
	require.NotEmpty(t, schedule.ID)
	require.Equal(t, schedule.ID, schedule.Sessions[0].ScheduleID)
	require.Equal(t, 0, schedule.Sessions[0].Position)
	require.Equal(t, 1, schedule.Sessions[1].Position)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindSessionScoped(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "schedule_id", "position", "date", "start_time", "end_time", "topic", "venue", "meeting_link"}).
		AddRow("sess-1", "sched-1", 0, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), "09:00", "12:00", "Basics", "", nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM training_sessions WHERE id = $1 AND schedule_id = $2")).
		WithArgs("sess-1", "sched-1").
		WillReturnRows(rows)

	session, err := repo.FindSession(context.Background(), "sched-1", "sess-1")
	require.NoError(t, err)
	require.Equal(t, "sess-1", session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_schedules SET status = $2 WHERE id = $1")).
		WithArgs("sched-1", models.ScheduleStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "sched-1", models.ScheduleStatusInProgress)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
