package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type mockAttendanceRepo struct {
	inserted   []*models.AttendanceRecord
	duplicates map[string]bool
	records    map[string]*models.AttendanceRecord
	listed     []models.AttendanceRecord
}

func (m *mockAttendanceRepo) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if m.duplicates[record.StudentID] {
		return nil, sql.ErrNoRows
	}
	stored := *record
	stored.ID = "rec-" + record.StudentID
	m.inserted = append(m.inserted, &stored)
	return &stored, nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rec, nil
}

func (m *mockAttendanceRepo) Amend(ctx context.Context, id string, status models.AttendanceStatus, remarks *string, updatedBy string) (*models.AttendanceRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	rec.Status = status
	if remarks != nil {
		rec.Remarks = remarks
	}
	rec.UpdatedBy = &updatedBy
	return rec, nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) ListByStudent(ctx context.Context, studentRef string, filter models.StudentAttendanceFilter) ([]models.AttendanceRecord, error) {
	return m.listed, nil
}

func (m *mockAttendanceRepo) ListBySubject(ctx context.Context, subjectCode string, filter models.SubjectAttendanceFilter) ([]models.AttendanceRecord, error) {
	return m.listed, nil
}

func (m *mockAttendanceRepo) ListByDate(ctx context.Context, date time.Time, filter models.DateAttendanceFilter) ([]models.AttendanceRecord, error) {
	return m.listed, nil
}

type mockStudentLookup struct {
	students map[string]*models.Student
}

func (m *mockStudentLookup) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	student, ok := m.students[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func rosterStudent(id string) *models.Student {
	return &models.Student{
		ID:              "ref-" + id,
		StudentID:       id,
		FirstName:       "Test",
		LastName:        "Student",
		CurrentYear:     3,
		CurrentSemester: 5,
		Department:      "CSE",
		Section:         "A",
		Status:          models.StudentStatusActive,
	}
}

func testAttendanceService(repo *mockAttendanceRepo, students *mockStudentLookup) *AttendanceService {
	return NewAttendanceService(repo, students, nil, validator.New(), zap.NewNop())
}

func TestAttendanceRecordBatchPartialOutcome(t *testing.T) {
	repo := &mockAttendanceRepo{duplicates: map[string]bool{"STU002": true}}
	students := &mockStudentLookup{students: map[string]*models.Student{
		"STU001": rosterStudent("STU001"),
		"STU002": rosterStudent("STU002"),
	}}
	svc := testAttendanceService(repo, students)

	result, err := svc.RecordBatch(context.Background(), models.MarkAttendanceRequest{
		Subject:     "Data Structures",
		SubjectCode: "CS301",
		Date:        "2024-01-10",
		FacultyID:   "FAC01",
		Entries: []models.AttendanceEntry{
			{StudentID: "STU001", Status: models.AttendanceStatusPresent},
			{StudentID: "STU002", Status: models.AttendanceStatusPresent},
			{StudentID: "STU999", Status: models.AttendanceStatusAbsent},
		},
	}, "user-1")
	require.NoError(t, err)

	require.Len(t, result.Marked, 1)
	assert.Equal(t, "STU001", result.Marked[0].StudentID)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "STU002", result.Errors[0].StudentID)
	assert.Contains(t, result.Errors[0].Error, "already marked")
	assert.Equal(t, "STU999", result.Errors[1].StudentID)
	assert.Contains(t, result.Errors[1].Error, "not found")
}

func TestAttendanceRecordBatchDefaultsSession(t *testing.T) {
	repo := &mockAttendanceRepo{}
	students := &mockStudentLookup{students: map[string]*models.Student{"STU001": rosterStudent("STU001")}}
	svc := testAttendanceService(repo, students)

	result, err := svc.RecordBatch(context.Background(), models.MarkAttendanceRequest{
		Subject:     "Data Structures",
		SubjectCode: "CS301",
		Date:        "2024-01-10",
		FacultyID:   "FAC01",
		Entries:     []models.AttendanceEntry{{StudentID: "STU001", Status: models.AttendanceStatusLate}},
	}, "user-1")
	require.NoError(t, err)
	require.Len(t, result.Marked, 1)
	assert.Equal(t, models.SessionFullDay, result.Marked[0].Session)
}

func TestAttendanceRecordBatchSnapshotsStanding(t *testing.T) {
	repo := &mockAttendanceRepo{}
	students := &mockStudentLookup{students: map[string]*models.Student{"STU001": rosterStudent("STU001")}}
	svc := testAttendanceService(repo, students)

	result, err := svc.RecordBatch(context.Background(), models.MarkAttendanceRequest{
		Subject:     "Data Structures",
		SubjectCode: "CS301",
		Date:        "2024-01-10",
		FacultyID:   "FAC01",
		Entries:     []models.AttendanceEntry{{StudentID: "STU001", Status: models.AttendanceStatusPresent}},
	}, "user-1")
	require.NoError(t, err)

	marked := result.Marked[0]
	assert.Equal(t, 3, marked.Year)
	assert.Equal(t, 5, marked.Semester)
	assert.Equal(t, "CSE", marked.Department)
	assert.Equal(t, "A", marked.Section)
	assert.Equal(t, "user-1", marked.MarkedBy)
}

func TestAttendanceRecordBatchRejectsBadDate(t *testing.T) {
	svc := testAttendanceService(&mockAttendanceRepo{}, &mockStudentLookup{})

	_, err := svc.RecordBatch(context.Background(), models.MarkAttendanceRequest{
		Subject:     "Data Structures",
		SubjectCode: "CS301",
		Date:        "10-01-2024",
		FacultyID:   "FAC01",
		Entries:     []models.AttendanceEntry{{StudentID: "STU001", Status: models.AttendanceStatusPresent}},
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceAmendNotFound(t *testing.T) {
	svc := testAttendanceService(&mockAttendanceRepo{records: map[string]*models.AttendanceRecord{}}, &mockStudentLookup{})

	_, err := svc.Amend(context.Background(), "missing", models.AmendAttendanceRequest{
		Status: models.AttendanceStatusExcused,
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceAmendUpdatesStatusAndRemarks(t *testing.T) {
	remark := "medical leave"
	repo := &mockAttendanceRepo{records: map[string]*models.AttendanceRecord{
		"rec-1": {ID: "rec-1", StudentID: "STU001", Status: models.AttendanceStatusAbsent},
	}}
	svc := testAttendanceService(repo, &mockStudentLookup{})

	updated, err := svc.Amend(context.Background(), "rec-1", models.AmendAttendanceRequest{
		Status:  models.AttendanceStatusExcused,
		Remarks: &remark,
	}, "user-2")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusExcused, updated.Status)
	require.NotNil(t, updated.Remarks)
	assert.Equal(t, "medical leave", *updated.Remarks)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "user-2", *updated.UpdatedBy)
}

func TestAttendanceRemoveMissing(t *testing.T) {
	svc := testAttendanceService(&mockAttendanceRepo{records: map[string]*models.AttendanceRecord{}}, &mockStudentLookup{})

	err := svc.Remove(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceStudentLedgerUnknownStudent(t *testing.T) {
	svc := testAttendanceService(&mockAttendanceRepo{}, &mockStudentLookup{students: map[string]*models.Student{}})

	_, err := svc.StudentLedger(context.Background(), "STU404", models.StudentAttendanceFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
