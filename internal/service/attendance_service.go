package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erp-training-api/internal/models"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
)

type attendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.TrainingEnrollment, error)
	UpsertAttendance(ctx context.Context, record *models.AttendanceRecord) error
	AdvanceStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) error
}

type sessionReader interface {
	FindSession(ctx context.Context, scheduleID, sessionID string) (*models.TrainingSession, error)
}

// MarkAttendanceRequest records one employee's presence in one session.
type MarkAttendanceRequest struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	SessionID    string  `json:"session_id" validate:"required"`
	Present      bool    `json:"present"`
	Remarks      *string `json:"remarks,omitempty"`
}

// BulkMarkAttendanceRequest records presence for a whole session at once.
type BulkMarkAttendanceRequest struct {
	SessionID string               `json:"session_id" validate:"required"`
	Records   []BulkAttendanceItem `json:"records" validate:"required,min=1,dive"`
}

// BulkAttendanceItem is one enrollment's entry inside a bulk mark.
type BulkAttendanceItem struct {
	EnrollmentID string  `json:"enrollment_id" validate:"required"`
	Present      bool    `json:"present"`
	Remarks      *string `json:"remarks,omitempty"`
}

// AttendanceService records per-session presence against enrollments.
type AttendanceService struct {
	repo      attendanceRepository
	sessions  sessionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, sessions sessionReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, sessions: sessions, validator: validate, logger: logger}
}

// Mark records presence for one enrollment in one session. Marking the same
// pair again replaces the previous record. The first mark also moves the
// enrollment from ENROLLED to IN_PROGRESS.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	enrollment, err := s.repo.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	session, err := s.sessions.FindSession(ctx, enrollment.ScheduleID, req.SessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found in this schedule")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	record := &models.AttendanceRecord{
		EnrollmentID: enrollment.ID,
		SessionID:    session.ID,
		Date:         session.Date,
		Present:      req.Present,
		Remarks:      req.Remarks,
	}
	if err := s.repo.UpsertAttendance(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	if enrollment.Status == models.EnrollmentStatusEnrolled {
		if err := s.repo.AdvanceStatus(ctx, enrollment.ID, models.EnrollmentStatusEnrolled, models.EnrollmentStatusInProgress); err != nil {
			s.logger.Warn("failed to advance enrollment status",
				zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		}
	}
	return record, nil
}

// BulkMark records a whole session's attendance sheet. Entries are processed
// independently; a failing entry is reported without blocking the rest.
func (s *AttendanceService) BulkMark(ctx context.Context, req BulkMarkAttendanceRequest) ([]models.AttendanceRecord, []string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}

	records := make([]models.AttendanceRecord, 0, len(req.Records))
	var failed []string
	for _, item := range req.Records {
		record, err := s.Mark(ctx, MarkAttendanceRequest{
			EnrollmentID: item.EnrollmentID,
			SessionID:    req.SessionID,
			Present:      item.Present,
			Remarks:      item.Remarks,
		})
		if err != nil {
			s.logger.Warn("bulk attendance entry failed",
				zap.String("enrollment_id", item.EnrollmentID),
				zap.String("session_id", req.SessionID),
				zap.Error(err))
			failed = append(failed, item.EnrollmentID)
			continue
		}
		records = append(records, *record)
	}
	return records, failed, nil
}
