package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/erp-training-api/internal/models"
)

// BudgetRepository reads training budget lines maintained by the finance
// module. This engine never writes them.
type BudgetRepository struct {
	db *sqlx.DB
}

// NewBudgetRepository constructs the repository.
func NewBudgetRepository(db *sqlx.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// List returns budget lines, optionally filtered by department.
func (r *BudgetRepository) List(ctx context.Context, department string) ([]models.TrainingBudget, error) {
	const base = `SELECT id, fiscal_year, department, allocated, utilized, remaining, planned_trainings, completed_trainings
        FROM training_budgets`

	var budgets []models.TrainingBudget
	if department == "" {
		if err := r.db.SelectContext(ctx, &budgets, base+" ORDER BY fiscal_year, department"); err != nil {
			return nil, fmt.Errorf("list budgets: %w", err)
		}
		return budgets, nil
	}
	if err := r.db.SelectContext(ctx, &budgets, base+" WHERE department = $1 ORDER BY fiscal_year", department); err != nil {
		return nil, fmt.Errorf("list budgets by department: %w", err)
	}
	return budgets, nil
}
