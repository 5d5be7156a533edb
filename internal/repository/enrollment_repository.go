package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/erp-training-api/internal/models"
)

const pqUniqueViolation = "23505"

// EnrollmentRepository handles persistence of enrollments and their
// attendance records.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment while claiming a seat on the schedule. The
// capacity check and the enrolled-count increment run as one guarded UPDATE
// inside the same transaction as the insert, so two concurrent callers can
// never both claim the last seat. A partial unique index on
// (schedule_id, employee_id) for non-withdrawn rows backstops the duplicate
// guard; violations surface as ErrDuplicateEnrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.TrainingEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const claimSeat = `UPDATE training_schedules
        SET enrolled_count = enrolled_count + 1
        WHERE id = $1 AND enrolled_count < max_participants`
	result, err := tx.ExecContext(ctx, claimSeat, enrollment.ScheduleID)
	if err != nil {
		return fmt.Errorf("claim seat: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrCapacityFull
	}

	const insert = `INSERT INTO training_enrollments
        (id, schedule_id, program_id, program_title, employee_id, employee_code, employee_name, department, enrollment_date, status, created_at)
        VALUES (:id, :schedule_id, :program_id, :program_title, :employee_id, :employee_code, :employee_name, :department, :enrollment_date, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, enrollment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrDuplicateEnrollment
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll: %w", err)
	}
	return nil
}

// FindByID returns an enrollment with its attendance records.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error) {
	const query = `SELECT id, schedule_id, program_id, program_title, employee_id, employee_code, employee_name, department,
        enrollment_date, status, completion_date, score, grade, feedback, certificate_id, created_at
        FROM training_enrollments WHERE id = $1`
	var enrollment models.TrainingEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}

	const attendanceQuery = `SELECT id, enrollment_id, session_id, date, present, remarks
        FROM attendance_records WHERE enrollment_id = $1 ORDER BY date, session_id`
	if err := r.db.SelectContext(ctx, &enrollment.Attendance, attendanceQuery, id); err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	return &enrollment, nil
}

// ExistsActive checks whether a non-withdrawn enrollment exists for the
// (schedule, employee) pair.
func (r *EnrollmentRepository) ExistsActive(ctx context.Context, scheduleID, employeeID string) (bool, error) {
	const query = `SELECT 1 FROM training_enrollments
        WHERE schedule_id = $1 AND employee_id = $2 AND status <> $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, scheduleID, employeeID, models.EnrollmentStatusWithdrawn); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return true, nil
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.TrainingEnrollment, int, error) {
	base := `FROM training_enrollments e`
	var conditions []string
	var args []interface{}

	if filter.ScheduleID != "" {
		conditions = append(conditions, fmt.Sprintf("e.schedule_id = $%d", len(args)+1))
		args = append(args, filter.ScheduleID)
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("e.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("e.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrollment_date": "e.enrollment_date",
		"employee_name":   "e.employee_name",
		"created_at":      "e.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.enrollment_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.schedule_id, e.program_id, e.program_title, e.employee_id, e.employee_code,
        e.employee_name, e.department, e.enrollment_date, e.status, e.completion_date, e.score, e.grade, e.feedback, e.certificate_id, e.created_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.TrainingEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListByProgram returns every enrollment for a program in insertion order.
func (r *EnrollmentRepository) ListByProgram(ctx context.Context, programID string) ([]models.TrainingEnrollment, error) {
	const query = `SELECT id, schedule_id, program_id, program_title, employee_id, employee_code, employee_name, department,
        enrollment_date, status, completion_date, score, grade, feedback, certificate_id, created_at
        FROM training_enrollments WHERE program_id = $1 ORDER BY created_at, id`
	var enrollments []models.TrainingEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, programID); err != nil {
		return nil, fmt.Errorf("list program enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByEmployee returns an employee's full training history in insertion
// order.
func (r *EnrollmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.TrainingEnrollment, error) {
	const query = `SELECT id, schedule_id, program_id, program_title, employee_id, employee_code, employee_name, department,
        enrollment_date, status, completion_date, score, grade, feedback, certificate_id, created_at
        FROM training_enrollments WHERE employee_id = $1 ORDER BY created_at, id`
	var enrollments []models.TrainingEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, employeeID); err != nil {
		return nil, fmt.Errorf("list employee enrollments: %w", err)
	}
	return enrollments, nil
}

// UpsertAttendance inserts or replaces the attendance record for the
// (enrollment, session) pair.
func (r *EnrollmentRepository) UpsertAttendance(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	const query = `INSERT INTO attendance_records (id, enrollment_id, session_id, date, present, remarks)
        VALUES (:id, :enrollment_id, :session_id, :date, :present, :remarks)
        ON CONFLICT (enrollment_id, session_id)
        DO UPDATE SET date = EXCLUDED.date, present = EXCLUDED.present, remarks = EXCLUDED.remarks`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// AdvanceStatus moves an enrollment from one status to another. The guard on
// the current status makes the transition one-way and idempotent.
func (r *EnrollmentRepository) AdvanceStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) error {
	const query = `UPDATE training_enrollments SET status = $3 WHERE id = $1 AND status = $2`
	if _, err := r.db.ExecContext(ctx, query, id, from, to); err != nil {
		return fmt.Errorf("advance enrollment status: %w", err)
	}
	return nil
}

// Complete finalizes an enrollment with its scored outcome in one write.
func (r *EnrollmentRepository) Complete(ctx context.Context, id string, status models.EnrollmentStatus, completedAt time.Time, score int, grade string, feedback, certificateID *string) error {
	const query = `UPDATE training_enrollments
        SET status = $2, completion_date = $3, score = $4, grade = $5, feedback = $6, certificate_id = $7
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, completedAt, score, grade, feedback, certificateID); err != nil {
		return fmt.Errorf("complete enrollment: %w", err)
	}
	return nil
}

// Withdraw marks an enrollment withdrawn and releases its seat. The status
// update is guarded on the current status, mirroring the seat claim in Create:
// only the caller that actually transitions the row releases the seat, so a
// concurrent withdrawal of the same enrollment cannot decrement twice.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, id, scheduleID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin withdraw: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const updateEnrollment = `UPDATE training_enrollments SET status = $2
        WHERE id = $1 AND status IN ($3, $4)`
	result, err := tx.ExecContext(ctx, updateEnrollment, id, models.EnrollmentStatusWithdrawn,
		models.EnrollmentStatusEnrolled, models.EnrollmentStatusInProgress)
	if err != nil {
		return fmt.Errorf("withdraw enrollment: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotWithdrawable
	}

	const releaseSeat = `UPDATE training_schedules
        SET enrolled_count = GREATEST(enrolled_count - 1, 0) WHERE id = $1`
	if _, err := tx.ExecContext(ctx, releaseSeat, scheduleID); err != nil {
		return fmt.Errorf("release seat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit withdraw: %w", err)
	}
	return nil
}
