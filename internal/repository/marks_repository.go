package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Campus-Management-System/ERP-System/internal/models"
)

const marksColumns = `id, student_ref, student_id, subject_name, subject_code, exam_type,
marks_obtained, max_marks, semester, faculty_id, created_at, updated_at`

// MarksRepository manages persistence for the marks ledger.
type MarksRepository struct {
	db *sqlx.DB
}

// NewMarksRepository constructs a MarksRepository.
func NewMarksRepository(db *sqlx.DB) *MarksRepository {
	return &MarksRepository{db: db}
}

// Upsert inserts or overwrites the grade for a (student, subject code,
// exam type) tuple. Re-entry replaces the previous score, it never
// accumulates.
func (r *MarksRepository) Upsert(ctx context.Context, record *models.MarksRecord) (*models.MarksRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO marks_records (id, student_ref, student_id, subject_name, subject_code, exam_type,
marks_obtained, max_marks, semester, faculty_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (student_ref, subject_code, exam_type)
DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, max_marks = EXCLUDED.max_marks,
subject_name = EXCLUDED.subject_name, semester = EXCLUDED.semester,
faculty_id = EXCLUDED.faculty_id, updated_at = EXCLUDED.updated_at
RETURNING %s`, marksColumns)
	var stored models.MarksRecord
	err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.StudentRef, record.StudentID, record.SubjectName, record.SubjectCode,
		record.ExamType, record.MarksObtained, record.MaxMarks, record.Semester, record.FacultyID,
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert marks: %w", err)
	}
	return &stored, nil
}

// ListByStudent returns a student's grades, newest semester first.
func (r *MarksRepository) ListByStudent(ctx context.Context, studentRef string) ([]models.MarksRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM marks_records WHERE student_ref = $1
ORDER BY semester DESC, subject_code ASC, exam_type ASC`, marksColumns)
	var records []models.MarksRecord
	if err := r.db.SelectContext(ctx, &records, query, studentRef); err != nil {
		return nil, fmt.Errorf("list marks by student: %w", err)
	}
	return records, nil
}

// ListBySubject returns all grades recorded for a subject code, optionally
// scoped to an exam type.
func (r *MarksRepository) ListBySubject(ctx context.Context, subjectCode string, examType *models.ExamType) ([]models.MarksRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM marks_records WHERE subject_code = $1", marksColumns)
	args := []interface{}{subjectCode}
	if examType != nil {
		query += " AND exam_type = $2"
		args = append(args, *examType)
	}
	query += " ORDER BY student_id ASC, exam_type ASC"
	var records []models.MarksRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list marks by subject: %w", err)
	}
	return records, nil
}
