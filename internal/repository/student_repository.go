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

const studentColumns = `id, student_id, first_name, last_name, date_of_birth, gender, email, phone,
address_city, address_state, enrollment_year, current_year, current_semester, department, course,
section, roll_number, father_name, mother_name, guardian_phone, status, user_id, created_by,
updated_by, created_at, updated_at`

// StudentRepository manages persistence for roster records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters, newest first.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("current_year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("current_semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Status != nil && filter.Status.Valid() {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(student_id) LIKE $%d OR LOWER(email) LIKE $%d)", n, n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	whereClause := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		studentColumns, whereClause, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns the roster record with the given surrogate identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// FindByStudentID returns the roster record with the given business key.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by student_id: %w", err)
	}
	return &student, nil
}

// Create stores a new roster record. A unique violation on student_id or
// email surfaces as sql.ErrNoRows so callers can report the duplicate.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (*models.Student, error) {
	now := time.Now().UTC()
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO students (id, student_id, first_name, last_name, date_of_birth, gender, email, phone,
address_city, address_state, enrollment_year, current_year, current_semester, department, course,
section, roll_number, father_name, mother_name, guardian_phone, status, user_id, created_by, updated_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
ON CONFLICT DO NOTHING
RETURNING %s`, studentColumns)
	var stored models.Student
	err := r.db.GetContext(ctx, &stored, query,
		student.ID, student.StudentID, student.FirstName, student.LastName, student.DateOfBirth,
		student.Gender, student.Email, student.Phone, student.AddressCity, student.AddressState,
		student.EnrollmentYear, student.CurrentYear, student.CurrentSemester, student.Department,
		student.Course, student.Section, student.RollNumber, student.FatherName, student.MotherName,
		student.GuardianPhone, student.Status, student.UserID, student.CreatedBy, student.UpdatedBy,
		student.CreatedAt, student.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return &stored, nil
}

// Update applies edits to a roster record. The student_id business key is
// never touched.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) (*models.Student, error) {
	student.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE students SET first_name = $1, last_name = $2, date_of_birth = $3, gender = $4,
email = $5, phone = $6, address_city = $7, address_state = $8, enrollment_year = $9, current_year = $10,
current_semester = $11, department = $12, course = $13, section = $14, roll_number = $15,
father_name = $16, mother_name = $17, guardian_phone = $18, status = $19, updated_by = $20, updated_at = $21
WHERE id = $22 RETURNING %s`, studentColumns)
	var stored models.Student
	err := r.db.GetContext(ctx, &stored, query,
		student.FirstName, student.LastName, student.DateOfBirth, student.Gender,
		student.Email, student.Phone, student.AddressCity, student.AddressState,
		student.EnrollmentYear, student.CurrentYear, student.CurrentSemester,
		student.Department, student.Course, student.Section, student.RollNumber,
		student.FatherName, student.MotherName, student.GuardianPhone, student.Status,
		student.UpdatedBy, student.UpdatedAt, student.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update student: %w", err)
	}
	return &stored, nil
}

// LinkUser attaches an account to the roster record.
func (r *StudentRepository) LinkUser(ctx context.Context, id, userID string) error {
	query := "UPDATE students SET user_id = $1, updated_at = $2 WHERE id = $3"
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("link student user: %w", err)
	}
	return nil
}

// Delete removes the roster record.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountTotal returns the roster size.
func (r *StudentRepository) CountTotal(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count total students: %w", err)
	}
	return total, nil
}

// CountActive returns the number of active roster records.
func (r *StudentRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students WHERE status = $1", models.StudentStatusActive); err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return total, nil
}

// CountByDepartment groups the roster by department.
func (r *StudentRepository) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	query := `SELECT department, COUNT(*) AS count FROM students GROUP BY department ORDER BY count DESC`
	var rows []models.DepartmentCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count students by department: %w", err)
	}
	return rows, nil
}

// CountByYear groups the roster by academic year.
func (r *StudentRepository) CountByYear(ctx context.Context) ([]models.YearCount, error) {
	query := `SELECT current_year AS year, COUNT(*) AS count FROM students GROUP BY current_year ORDER BY current_year ASC`
	var rows []models.YearCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count students by year: %w", err)
	}
	return rows, nil
}
