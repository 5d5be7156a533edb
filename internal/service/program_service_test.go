package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type mockProgramRepo struct {
	programs map[string]models.TrainingProgram
	created  *models.TrainingProgram
}

func (m *mockProgramRepo) Create(ctx context.Context, program *models.TrainingProgram) error {
	if m.programs == nil {
		m.programs = make(map[string]models.TrainingProgram)
	}
	if program.ID == "" {
		program.ID = "new-program"
	}
	m.programs[program.ID] = *program
	m.created = program
	return nil
}

func (m *mockProgramRepo) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	if p, ok := m.programs[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgramRepo) List(ctx context.Context, filter models.ProgramFilter) ([]models.TrainingProgram, int, error) {
	return nil, 0, nil
}

func (m *mockProgramRepo) SetActive(ctx context.Context, id string, active bool) error {
	p, ok := m.programs[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Active = active
	m.programs[id] = p
	return nil
}

func validProgramRequest() CreateProgramRequest {
	return CreateProgramRequest{
		Code:            "TRN-001",
		Title:           "Go Fundamentals",
		Type:            "technical",
		Mode:            "online",
		DurationHours:   16,
		MaxParticipants: 20,
		Modules: []CurriculumModuleRequest{
			{Title: "Basics", DurationHours: 8},
			{Title: "Concurrency", DurationHours: 8},
		},
	}
}

func TestProgramServiceCreate(t *testing.T) {
	repo := &mockProgramRepo{}
	svc := NewProgramService(repo, validator.New(), zap.NewNop())

	program, err := svc.Create(context.Background(), validProgramRequest())
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.ProgramTypeTechnical, program.Type)
	assert.Equal(t, models.DeliveryModeOnline, program.Mode)
	assert.True(t, program.Active)
	require.Len(t, program.Modules, 2)
	assert.Equal(t, "Basics", program.Modules[0].Title)
}

func TestProgramServiceCreateRejectsUnknownType(t *testing.T) {
	svc := NewProgramService(&mockProgramRepo{}, validator.New(), zap.NewNop())

	req := validProgramRequest()
	req.Type = "WORKSHOP"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceGetNotFound(t *testing.T) {
	svc := NewProgramService(&mockProgramRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceDeactivate(t *testing.T) {
	repo := &mockProgramRepo{programs: map[string]models.TrainingProgram{
		"p1": {ID: "p1", Title: "Go Fundamentals", Active: true},
	}}
	svc := NewProgramService(repo, validator.New(), zap.NewNop())

	program, err := svc.SetActive(context.Background(), "p1", false)
	require.NoError(t, err)
	assert.False(t, program.Active)
	assert.False(t, repo.programs["p1"].Active)
}
