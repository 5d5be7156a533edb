package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeForScore(t *testing.T) {
	cases := []struct {
		score int
		grade string
	}{
		{0, "F"},
		{59, "F"},
		{60, "C"},
		{69, "C"},
		{70, "B"},
		{79, "B"},
		{80, "A"},
		{89, "A"},
		{90, "A+"},
		{100, "A+"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, GradeForScore(tc.score), "score %d", tc.score)
	}
}

func TestEnrollmentStatusTerminal(t *testing.T) {
	assert.True(t, EnrollmentStatusCompleted.Terminal())
	assert.True(t, EnrollmentStatusFailed.Terminal())
	assert.False(t, EnrollmentStatusEnrolled.Terminal())
	assert.False(t, EnrollmentStatusInProgress.Terminal())
	assert.False(t, EnrollmentStatusWithdrawn.Terminal())
}

func TestEnrollmentStatusValid(t *testing.T) {
	assert.True(t, EnrollmentStatusEnrolled.Valid())
	assert.False(t, EnrollmentStatus("DROPPED").Valid())
}
