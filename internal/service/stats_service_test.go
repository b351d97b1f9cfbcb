package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
)

type mockStatsRepo struct {
	overall      models.AttendanceCounts
	subjects     []models.SubjectCounts
	trend        []models.MonthlyTrendPoint
	lowRows      []models.LowAttendanceRow
	gotThreshold float64
	gotSubject   string
}

func (m *mockStatsRepo) OverallCounts(ctx context.Context, studentRef, subject string) (*models.AttendanceCounts, error) {
	m.gotSubject = subject
	counts := m.overall
	return &counts, nil
}

func (m *mockStatsRepo) SubjectCounts(ctx context.Context, studentRef string) ([]models.SubjectCounts, error) {
	return m.subjects, nil
}

func (m *mockStatsRepo) MonthlyTrend(ctx context.Context, studentRef string, months int) ([]models.MonthlyTrendPoint, error) {
	return m.trend, nil
}

func (m *mockStatsRepo) LowAttendance(ctx context.Context, filter models.LowAttendanceFilter) ([]models.LowAttendanceRow, error) {
	m.gotThreshold = filter.Threshold
	return m.lowRows, nil
}

func testStatsService(repo *mockStatsRepo, students *mockStudentLookup) *StatsService {
	return NewStatsService(repo, students, nil, nil, zap.NewNop())
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 0.0, percentage(0, 0))
	assert.Equal(t, 100.0, percentage(10, 10))
	assert.Equal(t, 66.67, percentage(2, 3))
	assert.Equal(t, 33.33, percentage(1, 3))
}

func TestStudentStatsEmptyLedger(t *testing.T) {
	students := &mockStudentLookup{students: map[string]*models.Student{"STU001": rosterStudent("STU001")}}
	svc := testStatsService(&mockStatsRepo{}, students)

	bundle, err := svc.StudentStats(context.Background(), "STU001", "")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStats{}, bundle.Overall)
	assert.Empty(t, bundle.SubjectWise)
	assert.Empty(t, bundle.MonthlyTrend)
}

func TestStudentStatsAggregates(t *testing.T) {
	repo := &mockStatsRepo{
		overall: models.AttendanceCounts{Total: 40, Present: 34},
		subjects: []models.SubjectCounts{
			{Subject: "Data Structures", SubjectCode: "CS301", AttendanceCounts: models.AttendanceCounts{Total: 20, Present: 18}},
			{Subject: "Operating Systems", SubjectCode: "CS302", AttendanceCounts: models.AttendanceCounts{Total: 20, Present: 16}},
		},
		trend: []models.MonthlyTrendPoint{{Year: 2024, Month: 1, Total: 20, Present: 17}},
	}
	students := &mockStudentLookup{students: map[string]*models.Student{"STU001": rosterStudent("STU001")}}
	svc := testStatsService(repo, students)

	bundle, err := svc.StudentStats(context.Background(), "STU001", "")
	require.NoError(t, err)

	assert.Equal(t, 40, bundle.Overall.TotalClasses)
	assert.Equal(t, 34, bundle.Overall.PresentClasses)
	assert.Equal(t, 6, bundle.Overall.AbsentClasses)
	assert.Equal(t, 85.0, bundle.Overall.Percentage)

	require.Len(t, bundle.SubjectWise, 2)
	assert.Equal(t, 90.0, bundle.SubjectWise[0].Percentage)
	assert.Equal(t, 80.0, bundle.SubjectWise[1].Percentage)
	require.Len(t, bundle.MonthlyTrend, 1)
}

func TestStudentStatsUnknownStudent(t *testing.T) {
	svc := testStatsService(&mockStatsRepo{}, &mockStudentLookup{students: map[string]*models.Student{}})

	_, err := svc.StudentStats(context.Background(), "STU404", "")
	require.Error(t, err)
}

func TestStudentOverallScopedToSubject(t *testing.T) {
	repo := &mockStatsRepo{overall: models.AttendanceCounts{Total: 20, Present: 18}}
	students := &mockStudentLookup{students: map[string]*models.Student{"STU001": rosterStudent("STU001")}}
	svc := testStatsService(repo, students)

	stats, err := svc.StudentOverall(context.Background(), "STU001", "Data Structures")
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", repo.gotSubject)
	assert.Equal(t, 20, stats.TotalClasses)
	assert.Equal(t, 2, stats.AbsentClasses)
	assert.Equal(t, 90.0, stats.Percentage)
}

func TestStudentOverallUnknownStudent(t *testing.T) {
	svc := testStatsService(&mockStatsRepo{}, &mockStudentLookup{students: map[string]*models.Student{}})

	_, err := svc.StudentOverall(context.Background(), "STU404", "")
	require.Error(t, err)
}

func TestStudentStatsObservesQueryTiming(t *testing.T) {
	metrics := NewMetricsService()
	students := &mockStudentLookup{students: map[string]*models.Student{"STU001": rosterStudent("STU001")}}
	svc := NewStatsService(&mockStatsRepo{}, students, nil, metrics, zap.NewNop())

	_, err := svc.StudentStats(context.Background(), "STU001", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), metrics.Snapshot().DBQueryCount)
}

func TestLowAttendanceDefaultThreshold(t *testing.T) {
	repo := &mockStatsRepo{}
	svc := testStatsService(repo, &mockStudentLookup{})

	_, err := svc.LowAttendance(context.Background(), models.LowAttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLowAttendanceThreshold, repo.gotThreshold)
}

func TestLowAttendanceMapsRows(t *testing.T) {
	repo := &mockStatsRepo{lowRows: []models.LowAttendanceRow{
		{StudentID: "STU002", FirstName: "Priya", LastName: "Sharma", Department: "CSE", Year: 3, Total: 20, Present: 10},
	}}
	svc := testStatsService(repo, &mockStudentLookup{})

	report, err := svc.LowAttendance(context.Background(), models.LowAttendanceFilter{Threshold: 60})
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "Priya Sharma", report[0].Student.Name)
	assert.Equal(t, 50.0, report[0].Attendance.Percentage)
	assert.Equal(t, 10, report[0].Attendance.AbsentClasses)
}
