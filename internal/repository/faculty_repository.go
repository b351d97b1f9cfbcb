package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Campus-Management-System/ERP-System/internal/models"
)

const facultyColumns = `id, faculty_id, user_id, first_name, last_name, email, phone, qualification,
experience_years, department, designation, created_at, updated_at`

// FacultyRepository manages persistence for faculty profiles.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// FindByUserID returns the profile linked to an account.
func (r *FacultyRepository) FindByUserID(ctx context.Context, userID string) (*models.Faculty, error) {
	query := fmt.Sprintf("SELECT %s FROM faculty WHERE user_id = $1", facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find faculty by user id: %w", err)
	}
	return &faculty, nil
}

// FindByFacultyID returns the profile with the given business key.
func (r *FacultyRepository) FindByFacultyID(ctx context.Context, facultyID string) (*models.Faculty, error) {
	query := fmt.Sprintf("SELECT %s FROM faculty WHERE faculty_id = $1", facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, facultyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find faculty by faculty_id: %w", err)
	}
	return &faculty, nil
}

// ListSubjects returns the subject assignments for a profile.
func (r *FacultyRepository) ListSubjects(ctx context.Context, facultyRef string) ([]models.FacultySubject, error) {
	query := `SELECT id, faculty_ref, subject_name, subject_code, semester, branch
FROM faculty_subjects WHERE faculty_ref = $1 ORDER BY semester ASC, subject_code ASC`
	var subjects []models.FacultySubject
	if err := r.db.SelectContext(ctx, &subjects, query, facultyRef); err != nil {
		return nil, fmt.Errorf("list faculty subjects: %w", err)
	}
	return subjects, nil
}

// AddSubject appends a subject assignment to a profile.
func (r *FacultyRepository) AddSubject(ctx context.Context, subject *models.FacultySubject) (*models.FacultySubject, error) {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	query := `INSERT INTO faculty_subjects (id, faculty_ref, subject_name, subject_code, semester, branch)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, faculty_ref, subject_name, subject_code, semester, branch`
	var stored models.FacultySubject
	err := r.db.GetContext(ctx, &stored, query,
		subject.ID, subject.FacultyRef, subject.SubjectName, subject.SubjectCode, subject.Semester, subject.Branch)
	if err != nil {
		return nil, fmt.Errorf("add faculty subject: %w", err)
	}
	return &stored, nil
}
