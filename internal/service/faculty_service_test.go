package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type mockFacultyRepo struct {
	byUserID    map[string]*models.Faculty
	byFacultyID map[string]*models.Faculty
	subjects    map[string][]models.FacultySubject
}

func (m *mockFacultyRepo) FindByUserID(ctx context.Context, userID string) (*models.Faculty, error) {
	f, ok := m.byUserID[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f, nil
}

func (m *mockFacultyRepo) FindByFacultyID(ctx context.Context, facultyID string) (*models.Faculty, error) {
	f, ok := m.byFacultyID[facultyID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f, nil
}

func (m *mockFacultyRepo) ListSubjects(ctx context.Context, facultyRef string) ([]models.FacultySubject, error) {
	return m.subjects[facultyRef], nil
}

func (m *mockFacultyRepo) AddSubject(ctx context.Context, subject *models.FacultySubject) (*models.FacultySubject, error) {
	stored := *subject
	stored.ID = "sub-new"
	if m.subjects == nil {
		m.subjects = map[string][]models.FacultySubject{}
	}
	m.subjects[subject.FacultyRef] = append(m.subjects[subject.FacultyRef], stored)
	return &stored, nil
}

func sampleFaculty() *models.Faculty {
	return &models.Faculty{
		ID:         "fref-1",
		FacultyID:  "FAC01",
		UserID:     "user-9",
		FirstName:  "Meena",
		LastName:   "Iyer",
		Email:      "meena@campus.edu",
		Department: "CSE",
	}
}

func testFacultyService(repo *mockFacultyRepo) *FacultyService {
	return NewFacultyService(repo, validator.New(), zap.NewNop())
}

func TestFacultyProfileSuccess(t *testing.T) {
	faculty := sampleFaculty()
	repo := &mockFacultyRepo{
		byUserID: map[string]*models.Faculty{"user-9": faculty},
		subjects: map[string][]models.FacultySubject{
			"fref-1": {{ID: "sub-1", FacultyRef: "fref-1", SubjectName: "Data Structures", SubjectCode: "CS301", Semester: 5, Branch: "CSE"}},
		},
	}
	svc := testFacultyService(repo)

	profile, err := svc.Profile(context.Background(), "user-9")
	require.NoError(t, err)
	assert.Equal(t, "FAC01", profile.FacultyID)
	require.Len(t, profile.Subjects, 1)
	assert.Equal(t, "CS301", profile.Subjects[0].SubjectCode)
}

func TestFacultyProfileNotFound(t *testing.T) {
	svc := testFacultyService(&mockFacultyRepo{})

	_, err := svc.Profile(context.Background(), "user-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFacultyAssignSubject(t *testing.T) {
	faculty := sampleFaculty()
	repo := &mockFacultyRepo{byFacultyID: map[string]*models.Faculty{"FAC01": faculty}}
	svc := testFacultyService(repo)

	profile, err := svc.AssignSubject(context.Background(), models.AssignSubjectRequest{
		FacultyID:   "FAC01",
		SubjectName: "Operating Systems",
		SubjectCode: "CS302",
		Semester:    5,
		Branch:      "CSE",
	})
	require.NoError(t, err)
	require.Len(t, profile.Subjects, 1)
	assert.Equal(t, "CS302", profile.Subjects[0].SubjectCode)
}

func TestFacultyAssignSubjectUnknownFaculty(t *testing.T) {
	svc := testFacultyService(&mockFacultyRepo{})

	_, err := svc.AssignSubject(context.Background(), models.AssignSubjectRequest{
		FacultyID:   "FAC404",
		SubjectName: "Operating Systems",
		SubjectCode: "CS302",
		Semester:    5,
		Branch:      "CSE",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFacultyAssignSubjectInvalidPayload(t *testing.T) {
	svc := testFacultyService(&mockFacultyRepo{})

	_, err := svc.AssignSubject(context.Background(), models.AssignSubjectRequest{FacultyID: "FAC01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
