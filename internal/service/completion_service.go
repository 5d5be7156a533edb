package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type completionRepository interface {
	FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error)
	Complete(ctx context.Context, id string, status models.EnrollmentStatus, completedAt time.Time, score int, grade string, feedback, certificateID *string) error
}

// CompleteTrainingRequest finalizes an enrollment with its assessment result.
type CompleteTrainingRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Score        int     `json:"score" validate:"min=0,max=100"`
	Feedback     *string `json:"feedback,omitempty"`
}

// CompletionService evaluates training outcomes. An enrollment passes at
// PassScore and above, gets a letter grade from the score, and a certificate
// only on a pass.
type CompletionService struct {
	repo      completionRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCompletionService constructs CompletionService.
func NewCompletionService(repo completionRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CompletionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Complete finalizes an enrollment. The outcome is COMPLETED when the score
// reaches the pass mark and FAILED otherwise; both are terminal.
func (s *CompletionService) Complete(ctx context.Context, req CompleteTrainingRequest) (*models.TrainingEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid completion payload")
	}

	enrollment, err := s.repo.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment already finalized")
	}
	if enrollment.Status == models.EnrollmentStatusWithdrawn {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment was withdrawn")
	}

	status := models.EnrollmentStatusFailed
	var certificateID *string
	if req.Score >= models.PassScore {
		status = models.EnrollmentStatusCompleted
		cert := "CERT-" + uuid.NewString()
		certificateID = &cert
	}
	grade := models.GradeForScore(req.Score)
	completedAt := dateOnly(s.now())

	if err := s.repo.Complete(ctx, enrollment.ID, status, completedAt, req.Score, grade, req.Feedback, certificateID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize enrollment")
	}

	enrollment.Status = status
	enrollment.CompletionDate = &completedAt
	score := req.Score
	enrollment.Score = &score
	enrollment.Grade = &grade
	enrollment.Feedback = req.Feedback
	enrollment.CertificateID = certificateID

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "analytics:*")
	}
	s.logger.Info("enrollment finalized",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("status", string(status)),
		zap.Int("score", req.Score))
	return enrollment, nil
}
