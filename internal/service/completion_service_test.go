package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type mockCompletionRepo struct {
	enrollments map[string]models.TrainingEnrollment
	completed   bool
}

func (m *mockCompletionRepo) FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCompletionRepo) Complete(ctx context.Context, id string, status models.EnrollmentStatus, completedAt time.Time, score int, grade string, feedback, certificateID *string) error {
	e := m.enrollments[id]
	e.Status = status
	e.CompletionDate = &completedAt
	e.Score = &score
	e.Grade = &grade
	e.Feedback = feedback
	e.CertificateID = certificateID
	m.enrollments[id] = e
	m.completed = true
	return nil
}

func newCompletionFixture() *mockCompletionRepo {
	return &mockCompletionRepo{enrollments: map[string]models.TrainingEnrollment{
		"e1": {ID: "e1", ScheduleID: "s1", Status: models.EnrollmentStatusInProgress},
	}}
}

func TestCompletionServiceGradingBoundaries(t *testing.T) {
	cases := []struct {
		score  int
		grade  string
		status models.EnrollmentStatus
	}{
		{59, "F", models.EnrollmentStatusFailed},
		{60, "C", models.EnrollmentStatusCompleted},
		{70, "B", models.EnrollmentStatusCompleted},
		{80, "A", models.EnrollmentStatusCompleted},
		{90, "A+", models.EnrollmentStatusCompleted},
	}
	for _, tc := range cases {
		repo := newCompletionFixture()
		svc := NewCompletionService(repo, nil, validator.New(), zap.NewNop())

		enrollment, err := svc.Complete(context.Background(), CompleteTrainingRequest{
			EnrollmentID: "e1", Score: tc.score,
		})
		require.NoError(t, err, "score %d", tc.score)
		assert.Equal(t, tc.status, enrollment.Status, "score %d", tc.score)
		require.NotNil(t, enrollment.Grade)
		assert.Equal(t, tc.grade, *enrollment.Grade, "score %d", tc.score)
	}
}

func TestCompletionServiceCertificateOnlyOnPass(t *testing.T) {
	repo := newCompletionFixture()
	svc := NewCompletionService(repo, nil, validator.New(), zap.NewNop())

	enrollment, err := svc.Complete(context.Background(), CompleteTrainingRequest{EnrollmentID: "e1", Score: 85})
	require.NoError(t, err)
	require.NotNil(t, enrollment.CertificateID)
	assert.Contains(t, *enrollment.CertificateID, "CERT-")

	repo = newCompletionFixture()
	svc = NewCompletionService(repo, nil, validator.New(), zap.NewNop())

	enrollment, err = svc.Complete(context.Background(), CompleteTrainingRequest{EnrollmentID: "e1", Score: 40})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusFailed, enrollment.Status)
	assert.Nil(t, enrollment.CertificateID)
}

func TestCompletionServiceCertificatesUnique(t *testing.T) {
	repo := newCompletionFixture()
	repo.enrollments["e2"] = models.TrainingEnrollment{ID: "e2", ScheduleID: "s1", Status: models.EnrollmentStatusInProgress}
	svc := NewCompletionService(repo, nil, validator.New(), zap.NewNop())

	first, err := svc.Complete(context.Background(), CompleteTrainingRequest{EnrollmentID: "e1", Score: 75})
	require.NoError(t, err)
	second, err := svc.Complete(context.Background(), CompleteTrainingRequest{EnrollmentID: "e2", Score: 75})
	require.NoError(t, err)

	require.NotNil(t, first.CertificateID)
	require.NotNil(t, second.CertificateID)
	assert.NotEqual(t, *first.CertificateID, *second.CertificateID)
}

func TestCompletionServiceFeedbackStoredVerbatim(t *testing.T) {
	repo := newCompletionFixture()
	svc := NewCompletionService(repo, nil, validator.New(), zap.NewNop())

	feedback := "  Great course!  "
	enrollment, err := svc.Complete(context.Background(), CompleteTrainingRequest{
		EnrollmentID: "e1", Score: 92, Feedback: &feedback,
	})
	require.NoError(t, err)
	require.NotNil(t, enrollment.Feedback)
	assert.Equal(t, feedback, *enrollment.Feedback)
}

func TestCompletionServiceCompletionDateIsDateOnly(t *testing.T) {
	repo := newCompletionFixture()
	svc := NewCompletionService(repo, nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 15, 42, 7, 0, time.UTC) }

	enrollment, err := svc.Complete(context.Background(), CompleteTrainingRequest{EnrollmentID: "e1", Score: 61})
	require.NoError(t, err)
	require.NotNil(t, enrollment.CompletionDate)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), *enrollment.CompletionDate)
}

func TestCompletionServiceRejectsFinalized(t *testing.T) {
	repo := newCompletionFixture()
	repo.enrollments["e1"] = models.TrainingEnrollment{ID: "e1", Status: models.EnrollmentStatusCompleted}
	svc := NewCompletionService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Complete(context.Background(), CompleteTrainingRequest{EnrollmentID: "e1", Score: 50})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.completed)
}

func TestCompletionServiceNotFound(t *testing.T) {
	svc := NewCompletionService(newCompletionFixture(), nil, validator.New(), zap.NewNop())

	_, err := svc.Complete(context.Background(), CompleteTrainingRequest{EnrollmentID: "missing", Score: 80})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
