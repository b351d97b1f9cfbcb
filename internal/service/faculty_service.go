package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type facultyRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Faculty, error)
	FindByFacultyID(ctx context.Context, facultyID string) (*models.Faculty, error)
	ListSubjects(ctx context.Context, facultyRef string) ([]models.FacultySubject, error)
	AddSubject(ctx context.Context, subject *models.FacultySubject) (*models.FacultySubject, error)
}

// FacultyService provides faculty profile use cases.
type FacultyService struct {
	repo      facultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs a FacultyService instance.
func NewFacultyService(repo facultyRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FacultyService{repo: repo, validator: validate, logger: logger}
}

// Profile returns the profile linked to the authenticated account.
func (s *FacultyService) Profile(ctx context.Context, userID string) (*models.FacultyProfile, error) {
	faculty, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch faculty profile")
	}
	subjects, err := s.repo.ListSubjects(ctx, faculty.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject assignments")
	}
	return &models.FacultyProfile{Faculty: *faculty, Subjects: subjects}, nil
}

// AssignSubject attaches a subject to the profile with the given business key.
func (s *FacultyService) AssignSubject(ctx context.Context, req models.AssignSubjectRequest) (*models.FacultyProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	faculty, err := s.repo.FindByFacultyID(ctx, req.FacultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch faculty")
	}

	subject := &models.FacultySubject{
		FacultyRef:  faculty.ID,
		SubjectName: req.SubjectName,
		SubjectCode: req.SubjectCode,
		Semester:    req.Semester,
		Branch:      req.Branch,
	}
	if _, err := s.repo.AddSubject(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subject")
	}

	subjects, err := s.repo.ListSubjects(ctx, faculty.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject assignments")
	}

	s.logger.Info("subject assigned",
		zap.String("faculty_id", faculty.FacultyID),
		zap.String("subject_code", req.SubjectCode))
	return &models.FacultyProfile{Faculty: *faculty, Subjects: subjects}, nil
}
