package models

import "time"

// EnrollmentStatus represents the lifecycle of a training enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentStatusInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentStatusCompleted  EnrollmentStatus = "COMPLETED"
	EnrollmentStatusFailed     EnrollmentStatus = "FAILED"
	EnrollmentStatusWithdrawn  EnrollmentStatus = "WITHDRAWN"
)

// Valid reports whether the enrollment status is supported.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusInProgress, EnrollmentStatusCompleted,
		EnrollmentStatusFailed, EnrollmentStatusWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether the enrollment reached a scored outcome.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusCompleted || s == EnrollmentStatusFailed
}

// PassScore is the minimum score for a COMPLETED outcome.
const PassScore = 60

// gradeBands are evaluated in descending order; first match wins.
var gradeBands = []struct {
	Min   int
	Grade string
}{
	{90, "A+"},
	{80, "A"},
	{70, "B"},
	{60, "C"},
}

// GradeForScore derives the letter grade from a completion score.
func GradeForScore(score int) string {
	for _, band := range gradeBands {
		if score >= band.Min {
			return band.Grade
		}
	}
	return "F"
}

// TrainingEnrollment is one employee's participation record in one schedule.
// Program identity and title are denormalized at enrollment time for display
// stability. Enrollments are never deleted.
type TrainingEnrollment struct {
	ID             string           `db:"id" json:"id"`
	ScheduleID     string           `db:"schedule_id" json:"schedule_id"`
	ProgramID      string           `db:"program_id" json:"program_id"`
	ProgramTitle   string           `db:"program_title" json:"program_title"`
	EmployeeID     string           `db:"employee_id" json:"employee_id"`
	EmployeeCode   string           `db:"employee_code" json:"employee_code"`
	EmployeeName   string           `db:"employee_name" json:"employee_name"`
	Department     string           `db:"department" json:"department"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	CompletionDate *time.Time       `db:"completion_date" json:"completion_date,omitempty"`
	Score          *int             `db:"score" json:"score,omitempty"`
	Grade          *string          `db:"grade" json:"grade,omitempty"`
	Feedback       *string          `db:"feedback" json:"feedback,omitempty"`
	CertificateID  *string          `db:"certificate_id" json:"certificate_id,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`

	Attendance []AttendanceRecord `db:"-" json:"attendance,omitempty"`
}

// AttendanceRecord captures per-session presence for an enrollment. At most
// one record exists per (enrollment, session) pair; a later mark replaces the
// earlier one in place.
type AttendanceRecord struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	Date         time.Time `db:"date" json:"date"`
	Present      bool      `db:"present" json:"present"`
	Remarks      *string   `db:"remarks" json:"remarks,omitempty"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	ScheduleID string
	ProgramID  string
	EmployeeID string
	Department string
	Status     EnrollmentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
