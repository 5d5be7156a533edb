package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type needRepository interface {
	Create(ctx context.Context, need *models.TrainingNeed) error
	FindByID(ctx context.Context, id string) (*models.TrainingNeed, error)
	List(ctx context.Context, filter models.NeedFilter) ([]models.TrainingNeed, int, error)
	UpdateStatus(ctx context.Context, id string, status models.NeedStatus) error
}

// IdentifyNeedRequest records a skill gap for an employee.
type IdentifyNeedRequest struct {
	EmployeeID         string  `json:"employee_id" validate:"required"`
	EmployeeName       string  `json:"employee_name" validate:"required"`
	Department         string  `json:"department" validate:"required"`
	IdentifiedBy       string  `json:"identified_by" validate:"required"`
	SkillGap           string  `json:"skill_gap" validate:"required"`
	Priority           string  `json:"priority" validate:"required,need_priority"`
	SuggestedProgramID *string `json:"suggested_program_id,omitempty"`
	TargetDate         *string `json:"target_date,omitempty"`
}

// UpdateNeedStatusRequest moves a need along its lifecycle.
type UpdateNeedStatusRequest struct {
	Status string `json:"status" validate:"required,need_status"`
}

// NeedService tracks identified skill gaps through their lifecycle.
type NeedService struct {
	repo      needRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNeedService constructs NeedService.
func NewNeedService(repo needRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *NeedService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerEnumValidators(validate)
	return &NeedService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Identify records a new training need in IDENTIFIED status.
func (s *NeedService) Identify(ctx context.Context, req IdentifyNeedRequest) (*models.TrainingNeed, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid need payload")
	}

	need := &models.TrainingNeed{
		EmployeeID:         req.EmployeeID,
		EmployeeName:       req.EmployeeName,
		Department:         req.Department,
		IdentifiedBy:       req.IdentifiedBy,
		IdentifiedDate:     dateOnly(s.now()),
		SkillGap:           req.SkillGap,
		Priority:           models.NeedPriority(normalizeEnum(req.Priority)),
		SuggestedProgramID: req.SuggestedProgramID,
		Status:             models.NeedStatusIdentified,
	}
	if req.TargetDate != nil {
		target, err := parseDate(*req.TargetDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "target_date must be YYYY-MM-DD")
		}
		need.TargetDate = &target
	}

	if err := s.repo.Create(ctx, need); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create training need")
	}

	s.invalidateAnalytics(ctx)
	s.logger.Info("training need identified",
		zap.String("need_id", need.ID),
		zap.String("employee_id", need.EmployeeID),
		zap.String("priority", string(need.Priority)))
	return need, nil
}

// Get returns one training need.
func (s *NeedService) Get(ctx context.Context, id string) (*models.TrainingNeed, error) {
	need, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training need not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training need")
	}
	return need, nil
}

// List returns needs with pagination metadata.
func (s *NeedService) List(ctx context.Context, filter models.NeedFilter) ([]models.TrainingNeed, *models.Pagination, error) {
	needs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list training needs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return needs, pagination, nil
}

// UpdateStatus advances a need one step along identified, planned, addressed,
// closed. Skipping a step or moving backwards is rejected.
func (s *NeedService) UpdateStatus(ctx context.Context, id string, req UpdateNeedStatusRequest) (*models.TrainingNeed, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	need, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.NeedStatus(normalizeEnum(req.Status))
	if !need.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			"cannot move need from "+string(need.Status)+" to "+string(next))
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update need status")
	}
	need.Status = next
	s.invalidateAnalytics(ctx)
	return need, nil
}

func (s *NeedService) invalidateAnalytics(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "analytics:*")
	}
}
