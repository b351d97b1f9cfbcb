package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

const dateLayout = "2006-01-02"

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) (*models.Student, error)
	LinkUser(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	CountTotal(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
	CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
	CountByYear(ctx context.Context) ([]models.YearCount, error)
}

type studentUserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// StudentService provides roster use cases.
type StudentService struct {
	repo      studentRepository
	users     studentUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, users studentUserRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns roster records matching the filter along with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get resolves a roster record by surrogate id, falling back to the
// studentId business key.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	student, err = s.repo.FindByStudentID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// Create admits a new student. Account provisioning is best-effort: a
// failure there is logged and reported in the result, never rolled back.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest, createdBy string) (*models.CreatedStudentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dateOfBirth must be YYYY-MM-DD")
	}

	student := &models.Student{
		StudentID:       req.StudentID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DateOfBirth:     dob,
		Gender:          req.Gender,
		Email:           req.Email,
		Phone:           req.Phone,
		AddressCity:     req.AddressCity,
		AddressState:    req.AddressState,
		EnrollmentYear:  req.EnrollmentYear,
		CurrentYear:     req.CurrentYear,
		CurrentSemester: req.CurrentSemester,
		Department:      req.Department,
		Course:          req.Course,
		Section:         req.Section,
		RollNumber:      req.RollNumber,
		FatherName:      req.FatherName,
		MotherName:      req.MotherName,
		GuardianPhone:   req.GuardianPhone,
		Status:          models.StudentStatusActive,
	}
	if createdBy != "" {
		student.CreatedBy = &createdBy
	}

	stored, err := s.repo.Create(ctx, student)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEntry, fmt.Sprintf("student %s already exists", req.StudentID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	result := &models.CreatedStudentResult{Student: stored}
	if req.CreateUserAccount {
		result.UserAccountCreated = s.provisionAccount(ctx, stored, req.Password)
	}
	return result, nil
}

// provisionAccount creates a student login linked to the roster record.
// Returns false on any failure; the admission itself already succeeded.
func (s *StudentService) provisionAccount(ctx context.Context, student *models.Student, password string) bool {
	if s.users == nil {
		return false
	}
	if password == "" {
		// Initial credential, forced through the change-password flow on
		// first login.
		password = student.StudentID
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Warn("student account provisioning failed",
			zap.String("student_id", student.StudentID), zap.Error(err))
		return false
	}
	user := &models.User{
		Name:         student.FullName(),
		Email:        student.Email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		StudentID:    &student.StudentID,
		Department:   &student.Department,
		Active:       true,
	}
	stored, err := s.users.Create(ctx, user)
	if err != nil {
		s.logger.Warn("student account provisioning failed",
			zap.String("student_id", student.StudentID), zap.Error(err))
		return false
	}
	if err := s.repo.LinkUser(ctx, student.ID, stored.ID); err != nil {
		s.logger.Warn("student account link failed",
			zap.String("student_id", student.StudentID), zap.Error(err))
		return false
	}
	student.UserID = &stored.ID
	return true
}

// Update applies partial edits to a roster record.
func (s *StudentService) Update(ctx context.Context, id string, req models.UpdateStudentRequest, updatedBy string) (*models.Student, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		current.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		current.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dateOfBirth must be YYYY-MM-DD")
		}
		current.DateOfBirth = dob
	}
	if req.Gender != nil {
		current.Gender = *req.Gender
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.Phone != nil {
		current.Phone = *req.Phone
	}
	if req.AddressCity != nil {
		current.AddressCity = req.AddressCity
	}
	if req.AddressState != nil {
		current.AddressState = req.AddressState
	}
	if req.EnrollmentYear != nil {
		current.EnrollmentYear = *req.EnrollmentYear
	}
	if req.CurrentYear != nil {
		current.CurrentYear = *req.CurrentYear
	}
	if req.CurrentSemester != nil {
		current.CurrentSemester = *req.CurrentSemester
	}
	if req.Department != nil {
		current.Department = *req.Department
	}
	if req.Course != nil {
		current.Course = *req.Course
	}
	if req.Section != nil {
		current.Section = *req.Section
	}
	if req.RollNumber != nil {
		current.RollNumber = *req.RollNumber
	}
	if req.FatherName != nil {
		current.FatherName = *req.FatherName
	}
	if req.MotherName != nil {
		current.MotherName = *req.MotherName
	}
	if req.GuardianPhone != nil {
		current.GuardianPhone = req.GuardianPhone
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", *req.Status))
		}
		current.Status = *req.Status
	}
	if updatedBy != "" {
		current.UpdatedBy = &updatedBy
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return updated, nil
}

// Delete removes a roster record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, student.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", student.StudentID))
	return nil
}

// Stats summarises the roster.
func (s *StudentService) Stats(ctx context.Context) (*models.StudentStats, error) {
	total, err := s.repo.CountTotal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	active, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active students")
	}
	departments, err := s.repo.CountByDepartment(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate departments")
	}
	years, err := s.repo.CountByYear(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate years")
	}
	return &models.StudentStats{
		TotalStudents:  total,
		ActiveStudents: active,
		Departments:    departments,
		Years:          years,
	}, nil
}

var importHeader = []string{
	"studentId", "firstName", "lastName", "dateOfBirth", "gender", "email", "phone",
	"enrollmentYear", "currentYear", "currentSemester", "department", "course",
	"section", "rollNumber", "fatherName", "motherName",
}

// Import bulk-admits students from a CSV stream. Rows fail independently;
// one bad row never aborts the batch.
func (s *StudentService) Import(ctx context.Context, r io.Reader, createdBy string) (*models.ImportStudentsResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty or unreadable CSV file")
	}
	index := map[string]int{}
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range importHeader {
		if _, ok := index[col]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing CSV column %q", col))
		}
	}

	result := &models.ImportStudentsResult{}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: row, Error: "malformed CSV row"})
			continue
		}
		field := func(name string) string { return strings.TrimSpace(record[index[name]]) }
		req := models.CreateStudentRequest{
			StudentID:       field("studentId"),
			FirstName:       field("firstName"),
			LastName:        field("lastName"),
			DateOfBirth:     field("dateOfBirth"),
			Gender:          field("gender"),
			Email:           field("email"),
			Phone:           field("phone"),
			Department:      field("department"),
			Course:          field("course"),
			Section:         field("section"),
			RollNumber:      field("rollNumber"),
			FatherName:      field("fatherName"),
			MotherName:      field("motherName"),
		}
		req.EnrollmentYear, _ = strconv.Atoi(field("enrollmentYear"))
		req.CurrentYear, _ = strconv.Atoi(field("currentYear"))
		req.CurrentSemester, _ = strconv.Atoi(field("currentSemester"))

		created, err := s.Create(ctx, req, createdBy)
		if err != nil {
			result.Errors = append(result.Errors, models.ImportRowError{Row: row, Error: appErrors.FromError(err).Message})
			continue
		}
		result.Imported++
		result.Students = append(result.Students, *created.Student)
	}

	s.logger.Info("student import finished",
		zap.Int("imported", result.Imported),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}
