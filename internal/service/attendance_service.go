package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type attendanceRepository interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	Amend(ctx context.Context, id string, status models.AttendanceStatus, remarks *string, updatedBy string) (*models.AttendanceRecord, error)
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentRef string, filter models.StudentAttendanceFilter) ([]models.AttendanceRecord, error)
	ListBySubject(ctx context.Context, subjectCode string, filter models.SubjectAttendanceFilter) ([]models.AttendanceRecord, error)
	ListByDate(ctx context.Context, date time.Time, filter models.DateAttendanceFilter) ([]models.AttendanceRecord, error)
}

type attendanceStudentRepository interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

// AttendanceService provides attendance ledger use cases.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, students: students, cache: cache, validator: validate, logger: logger}
}

func statsCachePattern(studentID string) string {
	return fmt.Sprintf("attendance:stats:%s*", studentID)
}

// RecordBatch marks attendance for a whole class sitting. Entries succeed or
// fail independently; a duplicate or unknown student never aborts the batch.
func (s *AttendanceService) RecordBatch(ctx context.Context, req models.MarkAttendanceRequest, markedBy string) (*models.MarkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	session := req.Session
	if session == "" {
		session = models.SessionFullDay
	}
	if !session.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown session %q", session))
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	result := &models.MarkAttendanceResult{}
	for _, entry := range req.Entries {
		if !entry.Status.Valid() {
			result.Errors = append(result.Errors, models.AttendanceEntryError{
				StudentID: entry.StudentID,
				Error:     fmt.Sprintf("unknown status %q", entry.Status),
			})
			continue
		}
		student, err := s.students.FindByStudentID(ctx, entry.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Errors = append(result.Errors, models.AttendanceEntryError{
					StudentID: entry.StudentID, Error: "student not found",
				})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
		}

		// Standing is snapshotted at marking time so the ledger stays
		// truthful after promotions or section changes.
		record := &models.AttendanceRecord{
			StudentRef:  student.ID,
			StudentID:   student.StudentID,
			Subject:     req.Subject,
			SubjectCode: req.SubjectCode,
			FacultyID:   req.FacultyID,
			Date:        date,
			Status:      entry.Status,
			Session:     session,
			Year:        student.CurrentYear,
			Semester:    student.CurrentSemester,
			Department:  student.Department,
			Section:     student.Section,
			Remarks:     entry.Remarks,
			MarkedBy:    markedBy,
		}
		stored, err := s.repo.Insert(ctx, record)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Errors = append(result.Errors, models.AttendanceEntryError{
					StudentID: entry.StudentID,
					Error:     fmt.Sprintf("attendance already marked for %s on %s (%s)", req.Subject, req.Date, session),
				})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
		}
		result.Marked = append(result.Marked, *stored)
		if s.cache != nil {
			_ = s.cache.Invalidate(ctx, statsCachePattern(student.StudentID))
		}
	}

	s.logger.Info("attendance batch recorded",
		zap.String("subject", req.Subject),
		zap.String("date", req.Date),
		zap.Int("marked", len(result.Marked)),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// Amend corrects a ledger entry's status and remarks.
func (s *AttendanceService) Amend(ctx context.Context, id string, req models.AmendAttendanceRequest, updatedBy string) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid amendment payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}
	record, err := s.repo.Amend(ctx, id, req.Status, req.Remarks, updatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to amend attendance")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, statsCachePattern(record.StudentID))
	}
	return record, nil
}

// Remove deletes a ledger entry.
func (s *AttendanceService) Remove(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attendance record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, statsCachePattern(record.StudentID))
	}
	return nil
}

// StudentLedger returns one student's entries, newest first.
func (s *AttendanceService) StudentLedger(ctx context.Context, studentID string, filter models.StudentAttendanceFilter) ([]models.AttendanceRecord, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	records, err := s.repo.ListByStudent(ctx, student.ID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// SubjectLedger returns a subject's entries, newest first.
func (s *AttendanceService) SubjectLedger(ctx context.Context, subjectCode string, filter models.SubjectAttendanceFilter) ([]models.AttendanceRecord, error) {
	if subjectCode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject code is required")
	}
	records, err := s.repo.ListBySubject(ctx, subjectCode, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// DateLedger returns all entries on a date.
func (s *AttendanceService) DateLedger(ctx context.Context, dateString string, filter models.DateAttendanceFilter) ([]models.AttendanceRecord, error) {
	date, err := time.Parse(dateLayout, dateString)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	records, err := s.repo.ListByDate(ctx, date, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}
