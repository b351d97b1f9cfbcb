package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Campus-Management-System/ERP-System/internal/models"
)

const attendanceColumns = `id, student_ref, student_id, subject, subject_code, faculty_id, date, status,
session, year, semester, department, section, remarks, marked_by, updated_by, created_at, updated_at`

// AttendanceRepository manages persistence for the attendance ledger.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Insert stores one ledger entry. The table's unique constraint on
// (student_ref, subject, date, session) makes concurrent duplicates race
// safely: the loser gets no row back and sql.ErrNoRows surfaces so callers
// can report the duplicate.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO attendance_records (id, student_ref, student_id, subject, subject_code, faculty_id, date, status,
session, year, semester, department, section, remarks, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (student_ref, subject, date, session) DO NOTHING
RETURNING %s`, attendanceColumns)
	var stored models.AttendanceRecord
	err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.StudentRef, record.StudentID, record.Subject, record.SubjectCode,
		record.FacultyID, record.Date, record.Status, record.Session, record.Year,
		record.Semester, record.Department, record.Section, record.Remarks, record.MarkedBy,
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("insert attendance: %w", err)
	}
	return &stored, nil
}

// FindByID returns the ledger entry with the given identifier.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE id = $1", attendanceColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance by id: %w", err)
	}
	return &record, nil
}

// Amend corrects the status and remarks of a ledger entry. Identity fields
// and the standing snapshot are never touched.
func (r *AttendanceRepository) Amend(ctx context.Context, id string, status models.AttendanceStatus, remarks *string, updatedBy string) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`UPDATE attendance_records
SET status = $1, remarks = COALESCE($2, remarks), updated_by = $3, updated_at = $4
WHERE id = $5 RETURNING %s`, attendanceColumns)
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query, status, remarks, updatedBy, time.Now().UTC(), id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("amend attendance: %w", err)
	}
	return &stored, nil
}

// Delete removes a ledger entry.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM attendance_records WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByStudent returns a student's ledger entries, newest date first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentRef string, filter models.StudentAttendanceFilter) ([]models.AttendanceRecord, error) {
	conditions := []string{"student_ref = $1"}
	args := []interface{}{studentRef}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE %s ORDER BY date DESC, created_at DESC",
		attendanceColumns, strings.Join(conditions, " AND "))
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// ListBySubject returns a subject's ledger entries, newest date first and
// student id ascending within a date.
func (r *AttendanceRepository) ListBySubject(ctx context.Context, subjectCode string, filter models.SubjectAttendanceFilter) ([]models.AttendanceRecord, error) {
	conditions := []string{"subject_code = $1"}
	args := []interface{}{subjectCode}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE %s ORDER BY date DESC, student_id ASC",
		attendanceColumns, strings.Join(conditions, " AND "))
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by subject: %w", err)
	}
	return records, nil
}

// ListByDate returns all ledger entries on a date, student id ascending.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date time.Time, filter models.DateAttendanceFilter) ([]models.AttendanceRecord, error) {
	conditions := []string{"date = $1"}
	args := []interface{}{date}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE %s ORDER BY student_id ASC",
		attendanceColumns, strings.Join(conditions, " AND "))
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return records, nil
}

// OverallCounts tallies a student's ledger, optionally scoped to a subject.
// Present and Late both count toward the present tally.
func (r *AttendanceRepository) OverallCounts(ctx context.Context, studentRef, subject string) (*models.AttendanceCounts, error) {
	conditions := []string{"student_ref = $1"}
	args := []interface{}{studentRef}
	if subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, subject)
	}
	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE status IN ('Present', 'Late')) AS present
FROM attendance_records WHERE %s`, strings.Join(conditions, " AND "))
	var counts models.AttendanceCounts
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("overall attendance counts: %w", err)
	}
	return &counts, nil
}

// SubjectCounts tallies a student's ledger per subject.
func (r *AttendanceRepository) SubjectCounts(ctx context.Context, studentRef string) ([]models.SubjectCounts, error) {
	query := `SELECT subject, subject_code, COUNT(*) AS total,
COUNT(*) FILTER (WHERE status IN ('Present', 'Late')) AS present
FROM attendance_records WHERE student_ref = $1
GROUP BY subject, subject_code ORDER BY subject ASC`
	var rows []models.SubjectCounts
	if err := r.db.SelectContext(ctx, &rows, query, studentRef); err != nil {
		return nil, fmt.Errorf("subject attendance counts: %w", err)
	}
	return rows, nil
}

// MonthlyTrend tallies a student's ledger per calendar month, most recent
// months first.
func (r *AttendanceRepository) MonthlyTrend(ctx context.Context, studentRef string, months int) ([]models.MonthlyTrendPoint, error) {
	if months <= 0 {
		months = 6
	}
	query := fmt.Sprintf(`SELECT EXTRACT(YEAR FROM date)::int AS year, EXTRACT(MONTH FROM date)::int AS month,
COUNT(*) AS total, COUNT(*) FILTER (WHERE status IN ('Present', 'Late')) AS present
FROM attendance_records WHERE student_ref = $1
GROUP BY 1, 2 ORDER BY year DESC, month DESC LIMIT %d`, months)
	var points []models.MonthlyTrendPoint
	if err := r.db.SelectContext(ctx, &points, query, studentRef); err != nil {
		return nil, fmt.Errorf("monthly attendance trend: %w", err)
	}
	return points, nil
}

// LowAttendance returns per-student tallies for active students whose
// percentage falls below the threshold. Students with no ledger entries are
// excluded by the inner join.
func (r *AttendanceRepository) LowAttendance(ctx context.Context, filter models.LowAttendanceFilter) ([]models.LowAttendanceRow, error) {
	conditions := []string{"s.status = $1"}
	args := []interface{}{models.StudentStatusActive}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("s.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("s.current_year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	args = append(args, filter.Threshold)
	query := fmt.Sprintf(`SELECT s.student_id, s.first_name, s.last_name, s.department, s.current_year AS year,
COUNT(a.id) AS total, COUNT(a.id) FILTER (WHERE a.status IN ('Present', 'Late')) AS present
FROM students s
JOIN attendance_records a ON a.student_ref = s.id
WHERE %s
GROUP BY s.id, s.student_id, s.first_name, s.last_name, s.department, s.current_year
HAVING COUNT(a.id) > 0 AND (COUNT(a.id) FILTER (WHERE a.status IN ('Present', 'Late')))::float * 100 / COUNT(a.id) < $%d
ORDER BY (COUNT(a.id) FILTER (WHERE a.status IN ('Present', 'Late')))::float * 100 / COUNT(a.id) ASC`,
		strings.Join(conditions, " AND "), len(args))
	var rows []models.LowAttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("low attendance report: %w", err)
	}
	return rows, nil
}
