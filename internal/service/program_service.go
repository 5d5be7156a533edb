package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type programRepository interface {
	Create(ctx context.Context, program *models.TrainingProgram) error
	FindByID(ctx context.Context, id string) (*models.TrainingProgram, error)
	List(ctx context.Context, filter models.ProgramFilter) ([]models.TrainingProgram, int, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// CurriculumModuleRequest describes one unit of a program's curriculum.
type CurriculumModuleRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description"`
	DurationHours int     `json:"duration_hours" validate:"gte=0"`
	Assessment    *string `json:"assessment"`
}

// CreateProgramRequest describes the program registration payload.
type CreateProgramRequest struct {
	Code            string                    `json:"code" validate:"required"`
	Title           string                    `json:"title" validate:"required"`
	Type            string                    `json:"type" validate:"required,program_type"`
	Mode            string                    `json:"mode" validate:"required,delivery_mode"`
	DurationHours   int                       `json:"duration_hours" validate:"required,gt=0"`
	MaxParticipants int                       `json:"max_participants" validate:"required,gt=0"`
	TrainerID       *string                   `json:"trainer_id"`
	TrainerName     *string                   `json:"trainer_name"`
	Vendor          *string                   `json:"vendor"`
	Cost            float64                   `json:"cost" validate:"gte=0"`
	Modules         []CurriculumModuleRequest `json:"modules" validate:"dive"`
}

// ProgramService owns the training program catalog.
type ProgramService struct {
	repo      programRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs ProgramService.
func NewProgramService(repo programRepository, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ProgramService{repo: repo, validator: validate, logger: logger}
	registerEnumValidators(svc.validator)
	return svc
}

func registerEnumValidators(v *validator.Validate) {
	_ = v.RegisterValidation("program_type", func(fl validator.FieldLevel) bool {
		return models.ProgramType(normalizeEnum(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("delivery_mode", func(fl validator.FieldLevel) bool {
		return models.DeliveryMode(normalizeEnum(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("need_priority", func(fl validator.FieldLevel) bool {
		return models.NeedPriority(normalizeEnum(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("need_status", func(fl validator.FieldLevel) bool {
		return models.NeedStatus(normalizeEnum(fl.Field().String())).Valid()
	})
}

// Create registers a new program in the catalog.
func (s *ProgramService) Create(ctx context.Context, req CreateProgramRequest) (*models.TrainingProgram, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}

	modules := make([]models.CurriculumModule, len(req.Modules))
	for i, m := range req.Modules {
		modules[i] = models.CurriculumModule{
			Title:         m.Title,
			Description:   m.Description,
			DurationHours: m.DurationHours,
			Assessment:    m.Assessment,
		}
	}

	program := &models.TrainingProgram{
		Code:            req.Code,
		Title:           req.Title,
		Type:            models.ProgramType(normalizeEnum(req.Type)),
		Mode:            models.DeliveryMode(normalizeEnum(req.Mode)),
		DurationHours:   req.DurationHours,
		MaxParticipants: req.MaxParticipants,
		TrainerID:       req.TrainerID,
		TrainerName:     req.TrainerName,
		Vendor:          req.Vendor,
		Cost:            req.Cost,
		Active:          true,
		Modules:         modules,
	}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	s.logger.Info("program created", zap.String("program_id", program.ID), zap.String("code", program.Code))
	return program, nil
}

// Get returns a program with its curriculum.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.TrainingProgram, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// List returns programs with pagination metadata.
func (s *ProgramService) List(ctx context.Context, filter models.ProgramFilter) ([]models.TrainingProgram, *models.Pagination, error) {
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
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
	return programs, pagination, nil
}

// SetActive toggles the active flag, the one mutable field of a program.
func (s *ProgramService) SetActive(ctx context.Context, id string, active bool) (*models.TrainingProgram, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	return s.Get(ctx, id)
}
