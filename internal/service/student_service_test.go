package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type mockStudentRepo struct {
	byID        map[string]*models.Student
	byStudentID map[string]*models.Student
	createErr   error
	created     []*models.Student
	linked      map[string]string
	deleted     []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range m.byStudentID {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStudentRepo) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	s, ok := m.byStudentID[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, exists := m.byStudentID[student.StudentID]; exists {
		return nil, sql.ErrNoRows
	}
	stored := *student
	stored.ID = "ref-" + student.StudentID
	if m.byStudentID == nil {
		m.byStudentID = map[string]*models.Student{}
	}
	m.byStudentID[student.StudentID] = &stored
	m.created = append(m.created, &stored)
	return &stored, nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) (*models.Student, error) {
	return student, nil
}

func (m *mockStudentRepo) LinkUser(ctx context.Context, id, userID string) error {
	if m.linked == nil {
		m.linked = map[string]string{}
	}
	m.linked[id] = userID
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockStudentRepo) CountTotal(ctx context.Context) (int, error)  { return len(m.byStudentID), nil }
func (m *mockStudentRepo) CountActive(ctx context.Context) (int, error) { return len(m.byStudentID), nil }

func (m *mockStudentRepo) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	return []models.DepartmentCount{{Department: "CSE", Count: len(m.byStudentID)}}, nil
}

func (m *mockStudentRepo) CountByYear(ctx context.Context) ([]models.YearCount, error) {
	return []models.YearCount{{Year: 3, Count: len(m.byStudentID)}}, nil
}

type mockAccountRepo struct {
	createErr error
	created   *models.User
}

func (m *mockAccountRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	stored := *user
	stored.ID = "user-new"
	m.created = &stored
	return &stored, nil
}

func testStudentService(repo *mockStudentRepo, users *mockAccountRepo) *StudentService {
	return NewStudentService(repo, users, validator.New(), zap.NewNop())
}

func validCreateRequest() models.CreateStudentRequest {
	return models.CreateStudentRequest{
		StudentID:       "STU001",
		FirstName:       "Arjun",
		LastName:        "Verma",
		DateOfBirth:     "2004-06-15",
		Gender:          "Male",
		Email:           "arjun@campus.edu",
		Phone:           "9999999999",
		EnrollmentYear:  2022,
		CurrentYear:     3,
		CurrentSemester: 5,
		Department:      "CSE",
		Course:          "B.Tech",
		Section:         "A",
		RollNumber:      "42",
		FatherName:      "Father",
		MotherName:      "Mother",
	}
}

func TestStudentCreateSuccess(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := testStudentService(repo, &mockAccountRepo{})

	result, err := svc.Create(context.Background(), validCreateRequest(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "STU001", result.Student.StudentID)
	assert.Equal(t, models.StudentStatusActive, result.Student.Status)
	assert.False(t, result.UserAccountCreated)
	require.NotNil(t, result.Student.CreatedBy)
	assert.Equal(t, "admin-1", *result.Student.CreatedBy)
}

func TestStudentCreateDuplicate(t *testing.T) {
	repo := &mockStudentRepo{byStudentID: map[string]*models.Student{
		"STU001": rosterStudent("STU001"),
	}}
	svc := testStudentService(repo, &mockAccountRepo{})

	_, err := svc.Create(context.Background(), validCreateRequest(), "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEntry.Code, appErrors.FromError(err).Code)
}

func TestStudentCreateWithAccount(t *testing.T) {
	repo := &mockStudentRepo{}
	users := &mockAccountRepo{}
	svc := testStudentService(repo, users)

	req := validCreateRequest()
	req.CreateUserAccount = true
	req.Password = "initial-pass"
	result, err := svc.Create(context.Background(), req, "admin-1")
	require.NoError(t, err)

	assert.True(t, result.UserAccountCreated)
	require.NotNil(t, users.created)
	assert.Equal(t, models.RoleStudent, users.created.Role)
	assert.Equal(t, "Arjun Verma", users.created.Name)
	assert.Equal(t, "user-new", repo.linked["ref-STU001"])
}

func TestStudentCreateAccountFailureIsNonFatal(t *testing.T) {
	repo := &mockStudentRepo{}
	users := &mockAccountRepo{createErr: errors.New("users table unavailable")}
	svc := testStudentService(repo, users)

	req := validCreateRequest()
	req.CreateUserAccount = true
	result, err := svc.Create(context.Background(), req, "admin-1")

	// The admission itself must survive an account provisioning failure.
	require.NoError(t, err)
	assert.Equal(t, "STU001", result.Student.StudentID)
	assert.False(t, result.UserAccountCreated)
}

func TestStudentGetFallsBackToBusinessKey(t *testing.T) {
	student := rosterStudent("STU001")
	repo := &mockStudentRepo{
		byID:        map[string]*models.Student{},
		byStudentID: map[string]*models.Student{"STU001": student},
	}
	svc := testStudentService(repo, &mockAccountRepo{})

	found, err := svc.Get(context.Background(), "STU001")
	require.NoError(t, err)
	assert.Equal(t, student.ID, found.ID)
}

func TestStudentUpdateRejectsUnknownStatus(t *testing.T) {
	student := rosterStudent("STU001")
	repo := &mockStudentRepo{byID: map[string]*models.Student{student.ID: student}}
	svc := testStudentService(repo, &mockAccountRepo{})

	bad := models.StudentStatus("Expelled")
	_, err := svc.Update(context.Background(), student.ID, models.UpdateStudentRequest{Status: &bad}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentImportPartialFailure(t *testing.T) {
	repo := &mockStudentRepo{byStudentID: map[string]*models.Student{
		"STU001": rosterStudent("STU001"),
	}}
	svc := testStudentService(repo, &mockAccountRepo{})

	csvData := strings.Join([]string{
		"studentId,firstName,lastName,dateOfBirth,gender,email,phone,enrollmentYear,currentYear,currentSemester,department,course,section,rollNumber,fatherName,motherName",
		"STU002,Priya,Sharma,2004-02-20,Female,priya@campus.edu,8888888888,2022,3,5,CSE,B.Tech,A,43,Father,Mother",
		"STU001,Arjun,Verma,2004-06-15,Male,arjun@campus.edu,9999999999,2022,3,5,CSE,B.Tech,A,42,Father,Mother",
		"STU003,,Singh,2004-09-01,Male,rohan@campus.edu,7777777777,2022,3,5,CSE,B.Tech,A,44,Father,Mother",
	}, "\n")

	result, err := svc.Import(context.Background(), strings.NewReader(csvData), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
}

func TestStudentImportMissingColumn(t *testing.T) {
	svc := testStudentService(&mockStudentRepo{}, &mockAccountRepo{})

	_, err := svc.Import(context.Background(), strings.NewReader("studentId,firstName\nSTU001,Arjun"), "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
