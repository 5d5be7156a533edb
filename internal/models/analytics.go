package models

import "time"

// SummaryCounts carries the raw aggregates behind the training summary.
// Training hours attribute each completed enrollment the duration of its own
// program.
type SummaryCounts struct {
	TotalPrograms        int `db:"total_programs"`
	ActivePrograms       int `db:"active_programs"`
	TotalEnrollments     int `db:"total_enrollments"`
	CompletedEnrollments int `db:"completed_enrollments"`
	UpcomingSchedules    int `db:"upcoming_schedules"`
	TotalTrainingHours   int `db:"total_training_hours"`
}

// SkillMatrixRow is one completed, scored enrollment projected for the skill
// matrix.
type SkillMatrixRow struct {
	EmployeeID   string `db:"employee_id"`
	EmployeeName string `db:"employee_name"`
	ProgramTitle string `db:"program_title"`
	Score        int    `db:"score"`
}

// AnalyticsSystemMetrics is a lightweight instrumentation snapshot surfaced
// alongside the domain analytics.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
