package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-training-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testEnrollment() *models.TrainingEnrollment {
	return &models.TrainingEnrollment{
		ScheduleID:     "sched-1",
		ProgramID:      "prog-1",
		ProgramTitle:   "Go Fundamentals",
		EmployeeID:     "emp-1",
		EmployeeCode:   "E-001",
		EmployeeName:   "Employee One",
		Department:     "Engineering",
		EnrollmentDate: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		Status:         models.EnrollmentStatusEnrolled,
	}
}

func TestEnrollmentRepositoryCreateClaimsSeat(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_schedules")).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO training_enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment := testEnrollment()
	err := repo.Create(context.Background(), enrollment)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.ID)
	require.False(t, enrollment.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByEmployeeOrder(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "status"}).
		AddRow("enr-1", "emp-1", models.EnrollmentStatusCompleted).
		AddRow("enr-2", "emp-1", models.EnrollmentStatusEnrolled)
	// Same-day enrollments tie-break on insertion, not on random UUID.
	mock.ExpectQuery(regexp.QuoteMeta("WHERE employee_id = $1 ORDER BY created_at, id")).
		WithArgs("emp-1").
		WillReturnRows(rows)

	history, err := repo.ListByEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCapacityFull(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_schedules")).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), testEnrollment())
	require.ErrorIs(t, err, ErrCapacityFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_schedules")).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO training_enrollments")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), testEnrollment())
	require.ErrorIs(t, err, ErrDuplicateEnrollment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsActive(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"?column?"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM training_enrollments")).
		WithArgs("sched-1", "emp-1", models.EnrollmentStatusWithdrawn).
		WillReturnRows(rows)

	exists, err := repo.ExistsActive(context.Background(), "sched-1", "emp-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsActiveNoRows(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM training_enrollments")).
		WithArgs("sched-1", "emp-1", models.EnrollmentStatusWithdrawn).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsActive(context.Background(), "sched-1", "emp-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpsertAttendance(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AttendanceRecord{
		EnrollmentID: "enr-1",
		SessionID:    "sess-1",
		Date:         time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Present:      true,
	}
	err := repo.UpsertAttendance(context.Background(), record)
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryWithdrawReleasesSeat(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_enrollments")).
		WithArgs("enr-1", models.EnrollmentStatusWithdrawn, models.EnrollmentStatusEnrolled, models.EnrollmentStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_schedules")).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Withdraw(context.Background(), "enr-1", "sched-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryWithdrawAlreadyGone(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_enrollments")).
		WithArgs("enr-1", models.EnrollmentStatusWithdrawn, models.EnrollmentStatusEnrolled, models.EnrollmentStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Withdraw(context.Background(), "enr-1", "sched-1")
	require.ErrorIs(t, err, ErrNotWithdrawable)
	require.NoError(t, mock.ExpectationsWereMet())
}
