package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type statsAttendanceRepository interface {
	OverallCounts(ctx context.Context, studentRef, subject string) (*models.AttendanceCounts, error)
	SubjectCounts(ctx context.Context, studentRef string) ([]models.SubjectCounts, error)
	MonthlyTrend(ctx context.Context, studentRef string, months int) ([]models.MonthlyTrendPoint, error)
	LowAttendance(ctx context.Context, filter models.LowAttendanceFilter) ([]models.LowAttendanceRow, error)
}

// DefaultLowAttendanceThreshold is the percentage below which a student is
// flagged when the caller does not supply one.
const DefaultLowAttendanceThreshold = 75.0

const trendMonths = 6

// StatsService derives attendance percentages and reports from the ledger.
// The ledger rows are the source of truth; every figure here is recomputed,
// never stored.
type StatsService struct {
	repo     statsAttendanceRepository
	students attendanceStudentRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(repo statsAttendanceRepository, students attendanceStudentRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, students: students, cache: cache, metrics: metrics, logger: logger}
}

func (s *StatsService) timeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

// percentage computes (present/total)*100 rounded to two decimals. An empty
// ledger yields zero, never a division error.
func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*100*100) / 100
}

func buildStats(counts models.AttendanceCounts) models.AttendanceStats {
	return models.AttendanceStats{
		TotalClasses:   counts.Total,
		PresentClasses: counts.Present,
		AbsentClasses:  counts.Total - counts.Present,
		Percentage:     percentage(counts.Present, counts.Total),
	}
}

// StudentStats returns the overall, per-subject and monthly aggregates for a
// student, serving from cache when warm.
func (s *StatsService) StudentStats(ctx context.Context, studentID, subject string) (*models.AttendanceStatsBundle, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	cacheKey := fmt.Sprintf("attendance:stats:%s:%s", student.StudentID, subject)
	if s.cache != nil {
		var cached models.AttendanceStatsBundle
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	start := time.Now()
	overall, err := s.repo.OverallCounts(ctx, student.ID, subject)
	s.timeQuery("attendance_overall", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	start = time.Now()
	subjectCounts, err := s.repo.SubjectCounts(ctx, student.ID)
	s.timeQuery("attendance_subjects", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate subjects")
	}
	subjectWise := make([]models.SubjectAttendanceStats, 0, len(subjectCounts))
	for _, sc := range subjectCounts {
		subjectWise = append(subjectWise, models.SubjectAttendanceStats{
			Subject:         sc.Subject,
			SubjectCode:     sc.SubjectCode,
			AttendanceStats: buildStats(sc.AttendanceCounts),
		})
	}

	start = time.Now()
	trend, err := s.repo.MonthlyTrend(ctx, student.ID, trendMonths)
	s.timeQuery("attendance_trend", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate monthly trend")
	}

	bundle := &models.AttendanceStatsBundle{
		Overall:      buildStats(*overall),
		SubjectWise:  subjectWise,
		MonthlyTrend: trend,
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, bundle, 0)
	}
	return bundle, nil
}

// StudentOverall returns just the percentage aggregate for one student,
// optionally scoped to a subject. Ledger views attach this next to the raw
// records.
func (s *StatsService) StudentOverall(ctx context.Context, studentID, subject string) (*models.AttendanceStats, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	start := time.Now()
	counts, err := s.repo.OverallCounts(ctx, student.ID, subject)
	s.timeQuery("attendance_overall", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	stats := buildStats(*counts)
	return &stats, nil
}

// LowAttendance flags active students whose percentage falls below the
// threshold, worst first. Students with no ledger entries are never flagged.
func (s *StatsService) LowAttendance(ctx context.Context, filter models.LowAttendanceFilter) ([]models.LowAttendanceStudent, error) {
	if filter.Threshold <= 0 {
		filter.Threshold = DefaultLowAttendanceThreshold
	}
	start := time.Now()
	rows, err := s.repo.LowAttendance(ctx, filter)
	s.timeQuery("attendance_low", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build low attendance report")
	}
	report := make([]models.LowAttendanceStudent, 0, len(rows))
	for _, row := range rows {
		report = append(report, models.LowAttendanceStudent{
			Student: models.StudentSummary{
				StudentID:  row.StudentID,
				Name:       fmt.Sprintf("%s %s", row.FirstName, row.LastName),
				Department: row.Department,
				Year:       row.Year,
			},
			Attendance: buildStats(models.AttendanceCounts{Total: row.Total, Present: row.Present}),
		})
	}
	return report, nil
}
