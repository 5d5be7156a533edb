package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type scheduleRepository interface {
	Create(ctx context.Context, schedule *models.TrainingSchedule) error
	FindByID(ctx context.Context, id string) (*models.TrainingSchedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.TrainingSchedule, int, error)
	UpdateStatus(ctx context.Context, id string, status models.ScheduleStatus) error
}

type programReader interface {
	FindByID(ctx context.Context, id string) (*models.TrainingProgram, error)
}

// SessionDraftRequest describes one planned meeting of a schedule.
type SessionDraftRequest struct {
	Date        string  `json:"date" validate:"required"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	Topic       string  `json:"topic" validate:"required"`
	Venue       string  `json:"venue"`
	MeetingLink *string `json:"meeting_link"`
}

// ScheduleTrainingRequest describes the schedule creation payload.
type ScheduleTrainingRequest struct {
	ProgramID string                `json:"program_id" validate:"required"`
	StartDate string                `json:"start_date" validate:"required"`
	EndDate   string                `json:"end_date" validate:"required"`
	Location  string                `json:"location" validate:"required"`
	Sessions  []SessionDraftRequest `json:"sessions" validate:"required,min=1,dive"`
}

// UpdateScheduleStatusRequest moves a schedule through its lifecycle.
type UpdateScheduleStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ScheduleService instantiates dated offerings of catalog programs.
type ScheduleService struct {
	repo      scheduleRepository
	programs  programReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs ScheduleService.
func NewScheduleService(repo scheduleRepository, programs programReader, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, programs: programs, validator: validate, logger: logger}
}

// Schedule creates a dated run of a program. Capacity, mode and trainer are
// copied from the program at this instant, so later program edits never
// retroactively change an existing run.
func (s *ScheduleService) Schedule(ctx context.Context, req ScheduleTrainingRequest) (*models.TrainingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_date, expected YYYY-MM-DD")
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_date, expected YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date before start_date")
	}

	program, err := s.programs.FindByID(ctx, req.ProgramID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	if !program.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "program is deactivated")
	}

	sessions := make([]models.TrainingSession, len(req.Sessions))
	for i, draft := range req.Sessions {
		date, err := parseDate(draft.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid session date, expected YYYY-MM-DD")
		}
		sessions[i] = models.TrainingSession{
			Date:        date,
			StartTime:   draft.StartTime,
			EndTime:     draft.EndTime,
			Topic:       draft.Topic,
			Venue:       draft.Venue,
			MeetingLink: draft.MeetingLink,
		}
	}

	schedule := &models.TrainingSchedule{
		ProgramID:       program.ID,
		ProgramTitle:    program.Title,
		Mode:            program.Mode,
		TrainerID:       program.TrainerID,
		TrainerName:     program.TrainerName,
		StartDate:       startDate,
		EndDate:         endDate,
		Location:        req.Location,
		Status:          models.ScheduleStatusPlanned,
		MaxParticipants: program.MaxParticipants,
		EnrolledCount:   0,
		Sessions:        sessions,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.logger.Info("training scheduled",
		zap.String("schedule_id", schedule.ID),
		zap.String("program_id", program.ID),
		zap.Int("sessions", len(sessions)))
	return schedule, nil
}

// Get returns a schedule with its sessions.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.TrainingSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// List returns schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.TrainingSchedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
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
	return schedules, pagination, nil
}

// UpdateStatus advances a schedule through planned → in_progress → completed,
// or cancels it before completion.
func (s *ScheduleService) UpdateStatus(ctx context.Context, id string, req UpdateScheduleStatusRequest) (*models.TrainingSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	next := models.ScheduleStatus(normalizeEnum(req.Status))
	if !next.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown schedule status")
	}

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !schedule.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "invalid schedule status transition")
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule status")
	}
	schedule.Status = next
	return schedule, nil
}
