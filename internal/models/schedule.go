package models

import "time"

// ScheduleStatus represents the lifecycle of a scheduled program run.
type ScheduleStatus string

// Possible schedule statuses.
const (
	ScheduleStatusPlanned    ScheduleStatus = "PLANNED"
	ScheduleStatusInProgress ScheduleStatus = "IN_PROGRESS"
	ScheduleStatusCompleted  ScheduleStatus = "COMPLETED"
	ScheduleStatusCancelled  ScheduleStatus = "CANCELLED"
)

// Valid reports whether the schedule status is supported.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusPlanned, ScheduleStatusInProgress, ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the planned → in_progress → completed chain, with
// cancellation allowed before completion.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	switch s {
	case ScheduleStatusPlanned:
		return next == ScheduleStatusInProgress || next == ScheduleStatusCancelled
	case ScheduleStatusInProgress:
		return next == ScheduleStatusCompleted || next == ScheduleStatusCancelled
	}
	return false
}

// TrainingSchedule is one dated offering of a program. Capacity, mode and
// trainer are copied from the program at creation time so later program edits
// do not retroactively affect existing runs.
type TrainingSchedule struct {
	ID              string         `db:"id" json:"id"`
	ProgramID       string         `db:"program_id" json:"program_id"`
	ProgramTitle    string         `db:"program_title" json:"program_title"`
	Mode            DeliveryMode   `db:"mode" json:"mode"`
	TrainerID       *string        `db:"trainer_id" json:"trainer_id,omitempty"`
	TrainerName     *string        `db:"trainer_name" json:"trainer_name,omitempty"`
	StartDate       time.Time      `db:"start_date" json:"start_date"`
	EndDate         time.Time      `db:"end_date" json:"end_date"`
	Location        string         `db:"location" json:"location"`
	Status          ScheduleStatus `db:"status" json:"status"`
	MaxParticipants int            `db:"max_participants" json:"max_participants"`
	EnrolledCount   int            `db:"enrolled_count" json:"enrolled_count"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`

	Sessions []TrainingSession `db:"-" json:"sessions,omitempty"`
}

// TrainingSession is a single dated meeting within a schedule. Immutable once
// created; attendance records reference it by id.
type TrainingSession struct {
	ID          string    `db:"id" json:"id"`
	ScheduleID  string    `db:"schedule_id" json:"schedule_id"`
	Position    int       `db:"position" json:"position"`
	Date        time.Time `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Topic       string    `db:"topic" json:"topic"`
	Venue       string    `db:"venue" json:"venue"`
	MeetingLink *string   `db:"meeting_link" json:"meeting_link,omitempty"`
}

// ScheduleFilter provides filters for listing schedules.
type ScheduleFilter struct {
	ProgramID string
	Status    ScheduleStatus
	Month     *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
