package repository

import "errors"

// Sentinel errors surfaced by mutating repository operations. Services map
// these onto the API error taxonomy.
var (
	// ErrCapacityFull is returned when the enrolled-count compare-and-swap
	// finds the schedule already at max participants.
	ErrCapacityFull = errors.New("schedule capacity reached")

	// ErrDuplicateEnrollment is returned when the partial unique index on
	// (schedule_id, employee_id) rejects an insert.
	ErrDuplicateEnrollment = errors.New("duplicate active enrollment")

	// ErrNotWithdrawable is returned when the guarded withdraw finds the
	// enrollment no longer in a withdrawable status.
	ErrNotWithdrawable = errors.New("enrollment not withdrawable")
)
