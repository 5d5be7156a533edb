package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-training-api/internal/models"
)

// AnalyticsRepository runs the cross-cutting aggregate queries behind the
// training summary and skill matrix.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Summary gathers organisation-wide counts in a single round trip. Training
// hours join each completed enrollment to its own program's duration rather
// than multiplying totals.
func (r *AnalyticsRepository) Summary(ctx context.Context) (*models.SummaryCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM training_programs) AS total_programs,
        (SELECT COUNT(*) FROM training_programs WHERE active) AS active_programs,
        (SELECT COUNT(*) FROM training_enrollments) AS total_enrollments,
        (SELECT COUNT(*) FROM training_enrollments WHERE status = 'COMPLETED') AS completed_enrollments,
        (SELECT COUNT(*) FROM training_schedules WHERE status = 'PLANNED' AND start_date >= CURRENT_DATE) AS upcoming_schedules,
        (SELECT COALESCE(SUM(p.duration_hours), 0)
            FROM training_enrollments e
            JOIN training_programs p ON p.id = e.program_id
            WHERE e.status = 'COMPLETED') AS total_training_hours`
	var counts models.SummaryCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("summary counts: %w", err)
	}
	return &counts, nil
}

// SkillMatrixRows returns completed, scored enrollments for a department.
// Employees without such an enrollment do not appear.
func (r *AnalyticsRepository) SkillMatrixRows(ctx context.Context, department string) ([]models.SkillMatrixRow, error) {
	const query = `SELECT employee_id, employee_name, program_title, score
        FROM training_enrollments
        WHERE department = $1 AND status = 'COMPLETED' AND score IS NOT NULL AND score > 0
        ORDER BY employee_name, program_title`
	var rows []models.SkillMatrixRow
	if err := r.db.SelectContext(ctx, &rows, query, department); err != nil {
		return nil, fmt.Errorf("skill matrix rows: %w", err)
	}
	return rows, nil
}
