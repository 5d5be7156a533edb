package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	"github.com/noah-isme/erp-training-api/internal/repository"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.TrainingEnrollment) error
	FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error)
	ExistsActive(ctx context.Context, scheduleID, employeeID string) (bool, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.TrainingEnrollment, int, error)
	Withdraw(ctx context.Context, id, scheduleID string) error
}

type scheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error)
}

// EnrollEmployeeRequest describes the enrollment payload. Employee identity
// fields come from the HR module.
type EnrollEmployeeRequest struct {
	ScheduleID   string `json:"schedule_id" validate:"required"`
	EmployeeID   string `json:"employee_id" validate:"required"`
	EmployeeCode string `json:"employee_code" validate:"required"`
	EmployeeName string `json:"employee_name" validate:"required"`
	Department   string `json:"department" validate:"required"`
}

// EnrollmentService owns enrollment records and the capacity and duplicate
// invariants around them.
type EnrollmentService struct {
	repo      enrollmentRepository
	schedules scheduleReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, schedules scheduleReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		schedules: schedules,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Enroll registers an employee into a schedule. The capacity check and the
// enrolled-count increment are one atomic unit inside the repository; the
// pre-checks here only produce the right error without burning a seat.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollEmployeeRequest) (*models.TrainingEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	schedule, err := s.schedules.FindByID(ctx, req.ScheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if schedule.EnrolledCount >= schedule.MaxParticipants {
		s.metrics.RecordEnrollment("capacity_exceeded")
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "")
	}

	exists, err := s.repo.ExistsActive(ctx, req.ScheduleID, req.EmployeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if exists {
		s.metrics.RecordEnrollment("duplicate")
		return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	}

	enrollment := &models.TrainingEnrollment{
		ScheduleID:     schedule.ID,
		ProgramID:      schedule.ProgramID,
		ProgramTitle:   schedule.ProgramTitle,
		EmployeeID:     req.EmployeeID,
		EmployeeCode:   req.EmployeeCode,
		EmployeeName:   req.EmployeeName,
		Department:     req.Department,
		EnrollmentDate: dateOnly(s.now()),
		Status:         models.EnrollmentStatusEnrolled,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityFull):
			s.metrics.RecordEnrollment("capacity_exceeded")
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "")
		case errors.Is(err, repository.ErrDuplicateEnrollment):
			s.metrics.RecordEnrollment("duplicate")
			return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.metrics.RecordEnrollment("enrolled")
	s.invalidateAnalytics(ctx)
	s.logger.Info("employee enrolled",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("schedule_id", schedule.ID),
		zap.String("employee_id", req.EmployeeID))
	return enrollment, nil
}

// Get returns an enrollment with its attendance records.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.TrainingEnrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.TrainingEnrollment, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
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
	return enrollments, pagination, nil
}

// Withdraw marks an enrollment withdrawn and frees its seat so another
// employee can take it.
func (s *EnrollmentService) Withdraw(ctx context.Context, id string) (*models.TrainingEnrollment, error) {
	enrollment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment already finalized")
	}
	if enrollment.Status == models.EnrollmentStatusWithdrawn {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment already withdrawn")
	}
	if err := s.repo.Withdraw(ctx, id, enrollment.ScheduleID); err != nil {
		if errors.Is(err, repository.ErrNotWithdrawable) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment already finalized or withdrawn")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw enrollment")
	}
	enrollment.Status = models.EnrollmentStatusWithdrawn
	s.invalidateAnalytics(ctx)
	return enrollment, nil
}

func (s *EnrollmentService) invalidateAnalytics(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "analytics:*")
	}
}
