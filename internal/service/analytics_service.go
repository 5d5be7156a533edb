package service

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/dto"
	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type analyticsRepository interface {
	Summary(ctx context.Context) (*models.SummaryCounts, error)
	SkillMatrixRows(ctx context.Context, department string) ([]models.SkillMatrixRow, error)
}

type needLister interface {
	ListAll(ctx context.Context) ([]models.TrainingNeed, error)
}

type enrollmentLister interface {
	ListByProgram(ctx context.Context, programID string) ([]models.TrainingEnrollment, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.TrainingEnrollment, error)
}

type scheduleLister interface {
	ListUpcoming(ctx context.Context, from time.Time) ([]models.TrainingSchedule, error)
	ListByMonth(ctx context.Context, month time.Time) ([]models.TrainingSchedule, error)
}

type budgetLister interface {
	List(ctx context.Context, department string) ([]models.TrainingBudget, error)
}

// FeedbackProvider supplies survey-derived figures the engine cannot compute
// from its own data. Both values are per program; a nil provider leaves them
// absent from effectiveness results.
type FeedbackProvider interface {
	Satisfaction(ctx context.Context, programID string) (*float64, error)
	SkillImprovement(ctx context.Context, programID string) (*float64, error)
}

// AnalyticsService computes read-only cross-cutting views over the training
// state. Results are cached under the analytics: key prefix; every mutating
// service invalidates that prefix.
type AnalyticsService struct {
	repo        analyticsRepository
	needs       needLister
	enrollments enrollmentLister
	schedules   scheduleLister
	budgets     budgetLister
	programs    programReader
	feedback    FeedbackProvider
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewAnalyticsService constructs AnalyticsService. feedback may be nil.
func NewAnalyticsService(
	repo analyticsRepository,
	needs needLister,
	enrollments enrollmentLister,
	schedules scheduleLister,
	budgets budgetLister,
	programs programReader,
	feedback FeedbackProvider,
	cache *CacheService,
	metrics *MetricsService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &AnalyticsService{
		repo:        repo,
		needs:       needs,
		enrollments: enrollments,
		schedules:   schedules,
		budgets:     budgets,
		programs:    programs,
		feedback:    feedback,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

func roundPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// NeedAnalysis breaks identified needs down by department, priority and
// derived skill category. The addressed rate counts needs in ADDRESSED or
// CLOSED status against the total.
func (s *AnalyticsService) NeedAnalysis(ctx context.Context) (*dto.NeedAnalysisResponse, bool, error) {
	const cacheKey = "analytics:needs"
	var cached dto.NeedAnalysisResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	start := s.now()
	needs, err := s.needs.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training needs")
	}
	s.metrics.ObserveDBQuery("needs_list_all", s.now().Sub(start))

	result := &dto.NeedAnalysisResponse{
		TotalNeeds:   len(needs),
		ByDepartment: make(map[string]int),
		ByPriority:   make(map[models.NeedPriority]int),
		ByCategory:   make(map[models.SkillCategory]int),
	}
	resolved := 0
	for _, need := range needs {
		result.ByDepartment[need.Department]++
		result.ByPriority[need.Priority]++
		result.ByCategory[models.CategorizeSkillGap(need.SkillGap, models.DefaultSkillCategoryRules)]++
		if need.Status.Resolved() {
			resolved++
		}
	}
	result.AddressedRate = roundPercent(resolved, len(needs))

	_ = s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
	return result, false, nil
}

// Effectiveness summarises outcomes for one program. Completion rate counts
// enrollments that reached a scored terminal outcome; pass rate counts
// COMPLETED among those.
func (s *AnalyticsService) Effectiveness(ctx context.Context, programID string) (*dto.ProgramEffectivenessResponse, bool, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	cacheKey := "analytics:effectiveness:" + programID
	var cached dto.ProgramEffectivenessResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	enrollments, err := s.enrollments.ListByProgram(ctx, programID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	result := &dto.ProgramEffectivenessResponse{
		ProgramID:    program.ID,
		ProgramTitle: program.Title,
	}
	if len(enrollments) > 0 {
		terminal, passed, scoreSum, scored := 0, 0, 0, 0
		for _, e := range enrollments {
			if !e.Status.Terminal() {
				continue
			}
			terminal++
			if e.Status == models.EnrollmentStatusCompleted {
				passed++
			}
			if e.Score != nil {
				scoreSum += *e.Score
				scored++
			}
		}
		result.TotalParticipants = len(enrollments)
		result.CompletionRate = roundPercent(terminal, len(enrollments))
		result.PassRate = roundPercent(passed, terminal)
		if scored > 0 {
			result.AverageScore = int(math.Round(float64(scoreSum) / float64(scored)))
		}
	}

	if s.feedback != nil {
		if v, err := s.feedback.Satisfaction(ctx, programID); err == nil {
			result.Satisfaction = v
		}
		if v, err := s.feedback.SkillImprovement(ctx, programID); err == nil {
			result.SkillImprovement = v
		}
	}

	_ = s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
	return result, false, nil
}

// BudgetUtilization is a pass-through over externally maintained budget
// records, optionally filtered by department.
func (s *AnalyticsService) BudgetUtilization(ctx context.Context, department string) ([]models.TrainingBudget, error) {
	budgets, err := s.budgets.List(ctx, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load budgets")
	}
	return budgets, nil
}

// EmployeeHistory returns all of an employee's enrollments in enrollment
// order.
func (s *AnalyticsService) EmployeeHistory(ctx context.Context, employeeID string) ([]models.TrainingEnrollment, error) {
	history, err := s.enrollments.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training history")
	}
	return history, nil
}

// Upcoming returns planned schedules starting today or later.
func (s *AnalyticsService) Upcoming(ctx context.Context) ([]dto.CalendarEntry, error) {
	schedules, err := s.schedules.ListUpcoming(ctx, dateOnly(s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upcoming schedules")
	}
	return calendarEntries(schedules), nil
}

// Calendar returns the schedules starting within the given month.
func (s *AnalyticsService) Calendar(ctx context.Context, month time.Time) ([]dto.CalendarEntry, error) {
	schedules, err := s.schedules.ListByMonth(ctx, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training calendar")
	}
	return calendarEntries(schedules), nil
}

func calendarEntries(schedules []models.TrainingSchedule) []dto.CalendarEntry {
	entries := make([]dto.CalendarEntry, len(schedules))
	for i, sch := range schedules {
		entries[i] = dto.CalendarEntry{
			ScheduleID:   sch.ID,
			ProgramTitle: sch.ProgramTitle,
			StartDate:    sch.StartDate,
			EndDate:      sch.EndDate,
			Location:     sch.Location,
			Status:       sch.Status,
			Enrolled:     sch.EnrolledCount,
			Capacity:     sch.MaxParticipants,
		}
	}
	return entries
}

// Summary is the organisation-wide overview. Training hours attribute each
// completed enrollment the duration of its own program.
func (s *AnalyticsService) Summary(ctx context.Context) (*dto.TrainingSummaryResponse, bool, error) {
	const cacheKey = "analytics:summary"
	var cached dto.TrainingSummaryResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	start := s.now()
	counts, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute training summary")
	}
	s.metrics.ObserveDBQuery("analytics_summary", s.now().Sub(start))

	result := &dto.TrainingSummaryResponse{
		TotalPrograms:         counts.TotalPrograms,
		ActivePrograms:        counts.ActivePrograms,
		TotalEnrollments:      counts.TotalEnrollments,
		CompletedEnrollments:  counts.CompletedEnrollments,
		UpcomingSchedules:     counts.UpcomingSchedules,
		AverageCompletionRate: roundPercent(counts.CompletedEnrollments, counts.TotalEnrollments),
		TotalTrainingHours:    counts.TotalTrainingHours,
	}

	_ = s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
	return result, false, nil
}

// SkillMatrix maps each employee in a department to the programs they
// completed with a recorded score. Employees without any such enrollment do
// not appear.
func (s *AnalyticsService) SkillMatrix(ctx context.Context, department string) (*dto.SkillMatrixResponse, bool, error) {
	cacheKey := "analytics:skill_matrix:" + department
	var cached dto.SkillMatrixResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	start := s.now()
	rows, err := s.repo.SkillMatrixRows(ctx, department)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute skill matrix")
	}
	s.metrics.ObserveDBQuery("analytics_skill_matrix", s.now().Sub(start))

	result := &dto.SkillMatrixResponse{
		Department: department,
		Employees:  make(map[string]dto.EmployeeSkillRow),
	}
	programSet := make(map[string]struct{})
	for _, row := range rows {
		entry, ok := result.Employees[row.EmployeeID]
		if !ok {
			entry = dto.EmployeeSkillRow{EmployeeName: row.EmployeeName, Scores: make(map[string]int)}
		}
		entry.Scores[row.ProgramTitle] = row.Score
		result.Employees[row.EmployeeID] = entry
		programSet[row.ProgramTitle] = struct{}{}
	}
	result.Programs = make([]string, 0, len(programSet))
	for title := range programSet {
		result.Programs = append(result.Programs, title)
	}
	sort.Strings(result.Programs)

	_ = s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
	return result, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.AnalyticsSystemMetrics {
	return s.metrics.Snapshot()
}
