package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Campus-Management-System/ERP-System/internal/models"
)

func newAttendanceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var attendanceRows = []string{
	"id", "student_ref", "student_id", "subject", "subject_code", "faculty_id", "date", "status",
	"session", "year", "semester", "department", "section", "remarks", "marked_by", "updated_by",
	"created_at", "updated_at",
}

func TestAttendanceRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO attendance_records").
		WillReturnRows(sqlmock.NewRows(attendanceRows).
			AddRow("rec-1", "ref-1", "STU001", "Data Structures", "CS301", "FAC01", now, "Present",
				"Full Day", 3, 5, "CSE", "A", nil, "user-1", nil, now, now))

	stored, err := repo.Insert(context.Background(), &models.AttendanceRecord{
		StudentRef:  "ref-1",
		StudentID:   "STU001",
		Subject:     "Data Structures",
		SubjectCode: "CS301",
		FacultyID:   "FAC01",
		Date:        now,
		Status:      models.AttendanceStatusPresent,
		Session:     models.SessionFullDay,
		MarkedBy:    "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", stored.ID)
	assert.Equal(t, models.AttendanceStatusPresent, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryInsertDuplicate(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	// ON CONFLICT DO NOTHING returns no row for the losing insert.
	mock.ExpectQuery("INSERT INTO attendance_records").
		WillReturnRows(sqlmock.NewRows(attendanceRows))

	_, err := repo.Insert(context.Background(), &models.AttendanceRecord{
		StudentRef:  "ref-1",
		StudentID:   "STU001",
		Subject:     "Data Structures",
		SubjectCode: "CS301",
		Date:        time.Now(),
		Status:      models.AttendanceStatusPresent,
		Session:     models.SessionFullDay,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByStudentOrdering(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM attendance_records WHERE student_ref = \$1 ORDER BY date DESC, created_at DESC`).
		WithArgs("ref-1").
		WillReturnRows(sqlmock.NewRows(attendanceRows).
			AddRow("rec-2", "ref-1", "STU001", "Data Structures", "CS301", "FAC01", now, "Absent",
				"Full Day", 3, 5, "CSE", "A", nil, "user-1", nil, now, now).
			AddRow("rec-1", "ref-1", "STU001", "Data Structures", "CS301", "FAC01", now.AddDate(0, 0, -1), "Present",
				"Full Day", 3, 5, "CSE", "A", nil, "user-1", nil, now, now))

	records, err := repo.ListByStudent(context.Background(), "ref-1", models.StudentAttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec-2", records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryOverallCounts(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total`).
		WithArgs("ref-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "present"}).AddRow(40, 34))

	counts, err := repo.OverallCounts(context.Background(), "ref-1", "")
	require.NoError(t, err)
	assert.Equal(t, 40, counts.Total)
	assert.Equal(t, 34, counts.Present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryLowAttendance(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`SELECT s\.student_id, s\.first_name, s\.last_name, s\.department, s\.current_year AS year`).
		WithArgs(models.StudentStatusActive, 75.0).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "first_name", "last_name", "department", "year", "total", "present"}).
			AddRow("STU002", "Priya", "Sharma", "CSE", 3, 20, 10))

	rows, err := repo.LowAttendance(context.Background(), models.LowAttendanceFilter{Threshold: 75})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "STU002", rows[0].StudentID)
	assert.Equal(t, 20, rows[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newAttendanceMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("DELETE FROM attendance_records").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
