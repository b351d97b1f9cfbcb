package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type marksRepository interface {
	Upsert(ctx context.Context, record *models.MarksRecord) (*models.MarksRecord, error)
	ListByStudent(ctx context.Context, studentRef string) ([]models.MarksRecord, error)
	ListBySubject(ctx context.Context, subjectCode string, examType *models.ExamType) ([]models.MarksRecord, error)
}

// MarksService provides marks ledger use cases.
type MarksService struct {
	repo      marksRepository
	students  attendanceStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMarksService constructs a MarksService instance.
func NewMarksService(repo marksRepository, students attendanceStudentRepository, validate *validator.Validate, logger *zap.Logger) *MarksService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MarksService{repo: repo, students: students, validator: validate, logger: logger}
}

// Add records or overwrites the grade for one (student, subject, exam)
// tuple. Re-entry replaces the previous score.
func (s *MarksService) Add(ctx context.Context, req models.AddMarksRequest) (*models.MarksRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}
	if !req.ExamType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown exam type %q", req.ExamType))
	}
	maxMarks := req.MaxMarks
	if maxMarks <= 0 {
		maxMarks = 100
	}
	if req.MarksObtained < 0 || req.MarksObtained > maxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("marks must be between 0 and %g", maxMarks))
	}

	student, err := s.students.FindByStudentID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	record := &models.MarksRecord{
		StudentRef:    student.ID,
		StudentID:     student.StudentID,
		SubjectName:   req.SubjectName,
		SubjectCode:   req.SubjectCode,
		ExamType:      req.ExamType,
		MarksObtained: req.MarksObtained,
		MaxMarks:      maxMarks,
		Semester:      req.Semester,
		FacultyID:     req.FacultyID,
	}
	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record marks")
	}

	s.logger.Info("marks recorded",
		zap.String("student_id", student.StudentID),
		zap.String("subject_code", req.SubjectCode),
		zap.String("exam_type", string(req.ExamType)))
	return stored, nil
}

// BySubject returns all grades recorded for a subject code.
func (s *MarksService) BySubject(ctx context.Context, subjectCode string, examType *models.ExamType) ([]models.MarksRecord, error) {
	if subjectCode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject code is required")
	}
	if examType != nil && !examType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown exam type %q", *examType))
	}
	records, err := s.repo.ListBySubject(ctx, subjectCode, examType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return records, nil
}

// ForStudent returns a student's own grades, newest semester first.
func (s *MarksService) ForStudent(ctx context.Context, studentID string) ([]models.MarksRecord, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	records, err := s.repo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return records, nil
}
