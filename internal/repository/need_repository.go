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

// NeedRepository handles persistence of identified training needs.
type NeedRepository struct {
	db *sqlx.DB
}

// NewNeedRepository constructs the repository.
func NewNeedRepository(db *sqlx.DB) *NeedRepository {
	return &NeedRepository{db: db}
}

// Create persists a new training need.
func (r *NeedRepository) Create(ctx context.Context, need *models.TrainingNeed) error {
	if need.ID == "" {
		need.ID = uuid.NewString()
	}
	if need.IdentifiedDate.IsZero() {
		need.IdentifiedDate = time.Now().UTC()
	}
	if need.Status == "" {
		need.Status = models.NeedStatusIdentified
	}
	const query = `INSERT INTO training_needs
        (id, employee_id, employee_name, department, identified_by, identified_date, skill_gap, priority, suggested_program_id, target_date, status)
        VALUES (:id, :employee_id, :employee_name, :department, :identified_by, :identified_date, :skill_gap, :priority, :suggested_program_id, :target_date, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, need); err != nil {
		return fmt.Errorf("create need: %w", err)
	}
	return nil
}

// FindByID returns a need by its ID.
func (r *NeedRepository) FindByID(ctx context.Context, id string) (*models.TrainingNeed, error) {
	const query = `SELECT id, employee_id, employee_name, department, identified_by, identified_date, skill_gap, priority, suggested_program_id, target_date, status
        FROM training_needs WHERE id = $1`
	var need models.TrainingNeed
	if err := r.db.GetContext(ctx, &need, query, id); err != nil {
		return nil, err
	}
	return &need, nil
}

// List returns needs filtered by the provided criteria.
func (r *NeedRepository) List(ctx context.Context, filter models.NeedFilter) ([]models.TrainingNeed, int, error) {
	base := `FROM training_needs n`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("n.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("n.priority = $%d", len(args)+1))
		args = append(args, filter.Priority)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("n.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"identified_date": "n.identified_date",
		"priority":        "n.priority",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "n.identified_date"
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

	query := fmt.Sprintf(`SELECT n.id, n.employee_id, n.employee_name, n.department, n.identified_by, n.identified_date,
        n.skill_gap, n.priority, n.suggested_program_id, n.target_date, n.status
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var needs []models.TrainingNeed
	if err := r.db.SelectContext(ctx, &needs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list needs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count needs: %w", err)
	}
	return needs, total, nil
}

// ListAll returns every need; the needs analysis classifies them in memory so
// the keyword policy stays in application code.
func (r *NeedRepository) ListAll(ctx context.Context) ([]models.TrainingNeed, error) {
	const query = `SELECT id, employee_id, employee_name, department, identified_by, identified_date, skill_gap, priority, suggested_program_id, target_date, status
        FROM training_needs ORDER BY identified_date, id`
	var needs []models.TrainingNeed
	if err := r.db.SelectContext(ctx, &needs, query); err != nil {
		return nil, fmt.Errorf("list all needs: %w", err)
	}
	return needs, nil
}

// UpdateStatus moves a need to the given status.
func (r *NeedRepository) UpdateStatus(ctx context.Context, id string, status models.NeedStatus) error {
	const query = `UPDATE training_needs SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update need status: %w", err)
	}
	return nil
}
