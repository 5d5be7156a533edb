package dto

import (
	"time"

	"github.com/noah-isme/erp-training-api/internal/models"
)

// NeedAnalysisResponse breaks identified training needs down by department,
// priority and derived skill category.
type NeedAnalysisResponse struct {
	TotalNeeds    int                          `json:"total_needs"`
	ByDepartment  map[string]int               `json:"by_department"`
	ByPriority    map[models.NeedPriority]int  `json:"by_priority"`
	ByCategory    map[models.SkillCategory]int `json:"by_category"`
	AddressedRate int                          `json:"addressed_rate"`
}

// ProgramEffectivenessResponse summarises outcomes for one program.
// Satisfaction and skill improvement come from an external feedback survey
// system and are omitted when no source is configured.
type ProgramEffectivenessResponse struct {
	ProgramID         string   `json:"program_id"`
	ProgramTitle      string   `json:"program_title"`
	TotalParticipants int      `json:"total_participants"`
	CompletionRate    int      `json:"completion_rate"`
	AverageScore      int      `json:"average_score"`
	PassRate          int      `json:"pass_rate"`
	Satisfaction      *float64 `json:"satisfaction,omitempty"`
	SkillImprovement  *float64 `json:"skill_improvement,omitempty"`
}

// TrainingSummaryResponse is the organisation-wide training overview.
type TrainingSummaryResponse struct {
	TotalPrograms         int `json:"total_programs"`
	ActivePrograms        int `json:"active_programs"`
	TotalEnrollments      int `json:"total_enrollments"`
	CompletedEnrollments  int `json:"completed_enrollments"`
	UpcomingSchedules     int `json:"upcoming_schedules"`
	AverageCompletionRate int `json:"average_completion_rate"`
	TotalTrainingHours    int `json:"total_training_hours"`
}

// SkillMatrixResponse maps employees to the programs they completed with a
// recorded score, per department.
type SkillMatrixResponse struct {
	Department string                      `json:"department"`
	Employees  map[string]EmployeeSkillRow `json:"employees"`
	Programs   []string                    `json:"programs"`
}

// EmployeeSkillRow is one employee's completed-program scores.
type EmployeeSkillRow struct {
	EmployeeName string         `json:"employee_name"`
	Scores       map[string]int `json:"scores"`
}

// CalendarEntry is a schedule summarised for calendar rendering.
type CalendarEntry struct {
	ScheduleID   string                `json:"schedule_id"`
	ProgramTitle string                `json:"program_title"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      time.Time             `json:"end_date"`
	Location     string                `json:"location"`
	Status       models.ScheduleStatus `json:"status"`
	Enrolled     int                   `json:"enrolled"`
	Capacity     int                   `json:"capacity"`
}
