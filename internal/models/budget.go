package models

// TrainingBudget is a per-department training budget line for a fiscal year.
// Budgets are maintained by the finance module; this engine only reads them.
type TrainingBudget struct {
	ID                 string  `db:"id" json:"id"`
	FiscalYear         string  `db:"fiscal_year" json:"fiscal_year"`
	Department         string  `db:"department" json:"department"`
	Allocated          float64 `db:"allocated" json:"allocated"`
	Utilized           float64 `db:"utilized" json:"utilized"`
	Remaining          float64 `db:"remaining" json:"remaining"`
	PlannedTrainings   int     `db:"planned_trainings" json:"planned_trainings"`
	CompletedTrainings int     `db:"completed_trainings" json:"completed_trainings"`
}
