package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-training-api/internal/models"
)

// ScheduleRepository handles persistence of training schedules and sessions.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create persists a schedule together with its sessions.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.TrainingSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create schedule: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertSchedule = `INSERT INTO training_schedules
        (id, program_id, program_title, mode, trainer_id, trainer_name, start_date, end_date, location, status, max_participants, enrolled_count, created_at)
        VALUES (:id, :program_id, :program_title, :mode, :trainer_id, :trainer_name, :start_date, :end_date, :location, :status, :max_participants, :enrolled_count, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertSchedule, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}

	const insertSession = `INSERT INTO training_sessions
        (id, schedule_id, position, date, start_time, end_time, topic, venue, meeting_link)
        VALUES (:id, :schedule_id, :position, :date, :start_time, :end_time, :topic, :venue, :meeting_link)`
	for i := range schedule.Sessions {
		session := &schedule.Sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		session.ScheduleID = schedule.ID
		session.Position = i
		if _, err := tx.NamedExecContext(ctx, insertSession, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create schedule: %w", err)
	}
	return nil
}

// FindByID returns a schedule with its sessions.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error) {
	const query = `SELECT id, program_id, program_title, mode, trainer_id, trainer_name, start_date, end_date, location, status, max_participants, enrolled_count, created_at
        FROM training_schedules WHERE id = $1`
	var schedule models.TrainingSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}

	const sessionQuery = `SELECT id, schedule_id, position, date, start_time, end_time, topic, venue, meeting_link
        FROM training_sessions WHERE schedule_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &schedule.Sessions, sessionQuery, id); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return &schedule, nil
}

// FindSession resolves a session within a specific schedule.
func (r *ScheduleRepository) FindSession(ctx context.Context, scheduleID, sessionID string) (*models.TrainingSession, error) {
	const query = `SELECT id, schedule_id, position, date, start_time, end_time, topic, venue, meeting_link
        FROM training_sessions WHERE id = $1 AND schedule_id = $2`
	var session models.TrainingSession
	if err := r.db.GetContext(ctx, &session, query, sessionID, scheduleID); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns schedules filtered by the provided criteria.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.TrainingSchedule, int, error) {
	base := `FROM training_schedules s`
	var conditions []string
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("s.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Month != nil {
		monthStart := time.Date(filter.Month.Year(), filter.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		conditions = append(conditions, fmt.Sprintf("s.start_date >= $%d AND s.start_date < $%d", len(args)+1, len(args)+2))
		args = append(args, monthStart, monthStart.AddDate(0, 1, 0))
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"start_date": "s.start_date",
		"created_at": "s.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "s.start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT s.id, s.program_id, s.program_title, s.mode, s.trainer_id, s.trainer_name,
        s.start_date, s.end_date, s.location, s.status, s.max_participants, s.enrolled_count, s.created_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var schedules []models.TrainingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// ListUpcoming returns planned schedules starting on or after the given day.
func (r *ScheduleRepository) ListUpcoming(ctx context.Context, from time.Time) ([]models.TrainingSchedule, error) {
	const query = `SELECT id, program_id, program_title, mode, trainer_id, trainer_name, start_date, end_date, location, status, max_participants, enrolled_count, created_at
        FROM training_schedules WHERE status = $1 AND start_date >= $2 ORDER BY start_date`
	var schedules []models.TrainingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, models.ScheduleStatusPlanned, from); err != nil {
		return nil, fmt.Errorf("list upcoming schedules: %w", err)
	}
	return schedules, nil
}

// ListByMonth returns schedules whose start date falls inside the calendar
// month containing the given instant.
func (r *ScheduleRepository) ListByMonth(ctx context.Context, month time.Time) ([]models.TrainingSchedule, error) {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	const query = `SELECT id, program_id, program_title, mode, trainer_id, trainer_name, start_date, end_date, location, status, max_participants, enrolled_count, created_at
        FROM training_schedules WHERE start_date >= $1 AND start_date < $2 ORDER BY start_date`
	var schedules []models.TrainingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return nil, fmt.Errorf("list schedules by month: %w", err)
	}
	return schedules, nil
}

// UpdateStatus moves a schedule to the given status.
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id string, status models.ScheduleStatus) error {
	const query = `UPDATE training_schedules SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	return nil
}
