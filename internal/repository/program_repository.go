package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-training-api/internal/models"
)

// ProgramRepository handles persistence of training programs and their
// curriculum modules.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Create persists a program together with its curriculum modules.
func (r *ProgramRepository) Create(ctx context.Context, program *models.TrainingProgram) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	if program.CreatedAt.IsZero() {
		program.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create program: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertProgram = `INSERT INTO training_programs
        (id, code, title, type, mode, duration_hours, max_participants, trainer_id, trainer_name, vendor, cost, active, created_at)
        VALUES (:id, :code, :title, :type, :mode, :duration_hours, :max_participants, :trainer_id, :trainer_name, :vendor, :cost, :active, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertProgram, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}

	const insertModule = `INSERT INTO curriculum_modules
        (id, program_id, position, title, description, duration_hours, assessment)
        VALUES (:id, :program_id, :position, :title, :description, :duration_hours, :assessment)`
	for i := range program.Modules {
		module := &program.Modules[i]
		if module.ID == "" {
			module.ID = uuid.NewString()
		}
		module.ProgramID = program.ID
		module.Position = i
		if _, err := tx.NamedExecContext(ctx, insertModule, module); err != nil {
			return fmt.Errorf("create curriculum module: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create program: %w", err)
	}
	return nil
}

// FindByID returns a program with its curriculum modules.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	const query = `SELECT id, code, title, type, mode, duration_hours, max_participants, trainer_id, trainer_name, vendor, cost, active, created_at
        FROM training_programs WHERE id = $1`
	var program models.TrainingProgram
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}

	const moduleQuery = `SELECT id, program_id, position, title, description, duration_hours, assessment
        FROM curriculum_modules WHERE program_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &program.Modules, moduleQuery, id); err != nil {
		return nil, fmt.Errorf("load curriculum modules: %w", err)
	}
	return &program, nil
}

// List returns programs filtered by the provided criteria.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramFilter) ([]models.TrainingProgram, int, error) {
	base := `FROM training_programs p`
	var conditions []string
	var args []interface{}

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("p.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("p.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "p.created_at",
		"title":      "p.title",
		"code":       "p.code",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "p.created_at"
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

	query := fmt.Sprintf(`SELECT p.id, p.code, p.title, p.type, p.mode, p.duration_hours, p.max_participants,
        p.trainer_id, p.trainer_name, p.vendor, p.cost, p.active, p.created_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var programs []models.TrainingProgram
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}
	return programs, total, nil
}

// SetActive updates the active flag, the one mutable program field.
func (r *ProgramRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE training_programs SET active = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set program active: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
