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

type mockNeedRepo struct {
	needs   map[string]models.TrainingNeed
	created *models.TrainingNeed
	status  map[string]models.NeedStatus
}

func (m *mockNeedRepo) Create(ctx context.Context, need *models.TrainingNeed) error {
	if m.needs == nil {
		m.needs = make(map[string]models.TrainingNeed)
	}
	if need.ID == "" {
		need.ID = "new-need"
	}
	m.needs[need.ID] = *need
	m.created = need
	return nil
}

func (m *mockNeedRepo) FindByID(ctx context.Context, id string) (*models.TrainingNeed, error) {
	if n, ok := m.needs[id]; ok {
		return &n, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockNeedRepo) List(ctx context.Context, filter models.NeedFilter) ([]models.TrainingNeed, int, error) {
	return nil, 0, nil
}

func (m *mockNeedRepo) UpdateStatus(ctx context.Context, id string, status models.NeedStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.NeedStatus)
	}
	m.status[id] = status
	if n, ok := m.needs[id]; ok {
		n.Status = status
		m.needs[id] = n
	}
	return nil
}

func TestNeedServiceIdentify(t *testing.T) {
	repo := &mockNeedRepo{}
	svc := NewNeedService(repo, nil, validator.New(), zap.NewNop())

	need, err := svc.Identify(context.Background(), IdentifyNeedRequest{
		EmployeeID:   "e1",
		EmployeeName: "Employee One",
		Department:   "Engineering",
		IdentifiedBy: "mgr-1",
		SkillGap:     "Kubernetes operations",
		Priority:     "high",
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.NeedStatusIdentified, need.Status)
	assert.Equal(t, models.NeedPriorityHigh, need.Priority)
	assert.False(t, need.IdentifiedDate.IsZero())
}

func TestNeedServiceIdentifyRejectsBadPriority(t *testing.T) {
	svc := NewNeedService(&mockNeedRepo{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Identify(context.Background(), IdentifyNeedRequest{
		EmployeeID:   "e1",
		EmployeeName: "Employee One",
		Department:   "Engineering",
		IdentifiedBy: "mgr-1",
		SkillGap:     "Kubernetes operations",
		Priority:     "URGENT",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNeedServiceUpdateStatus(t *testing.T) {
	repo := &mockNeedRepo{needs: map[string]models.TrainingNeed{
		"n1": {ID: "n1", Status: models.NeedStatusIdentified},
	}}
	svc := NewNeedService(repo, nil, validator.New(), zap.NewNop())

	need, err := svc.UpdateStatus(context.Background(), "n1", UpdateNeedStatusRequest{Status: "planned"})
	require.NoError(t, err)
	assert.Equal(t, models.NeedStatusPlanned, need.Status)
	assert.Equal(t, models.NeedStatusPlanned, repo.status["n1"])
}

func TestNeedServiceUpdateStatusRejectsSkip(t *testing.T) {
	repo := &mockNeedRepo{needs: map[string]models.TrainingNeed{
		"n1": {ID: "n1", Status: models.NeedStatusIdentified},
	}}
	svc := NewNeedService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "n1", UpdateNeedStatusRequest{Status: "CLOSED"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.status)
}
