package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusLate    AttendanceStatus = "Late"
	AttendanceStatusExcused AttendanceStatus = "Excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// CountsAsPresent reports whether the status counts toward the present tally.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// AttendanceSession identifies which session of the day was marked.
type AttendanceSession string

const (
	SessionMorning   AttendanceSession = "Morning"
	SessionAfternoon AttendanceSession = "Afternoon"
	SessionFullDay   AttendanceSession = "Full Day"
)

// Valid returns true when the session is a supported value.
func (s AttendanceSession) Valid() bool {
	switch s {
	case SessionMorning, SessionAfternoon, SessionFullDay:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one ledger row. The year/semester/department/section
// columns are a snapshot of the student's standing at marking time and are
// never recomputed, so history stays accurate after promotions or section
// changes.
type AttendanceRecord struct {
	ID          string            `db:"id" json:"id"`
	StudentRef  string            `db:"student_ref" json:"-"`
	StudentID   string            `db:"student_id" json:"studentId"`
	Subject     string            `db:"subject" json:"subject"`
	SubjectCode string            `db:"subject_code" json:"subjectCode"`
	FacultyID   string            `db:"faculty_id" json:"facultyId"`
	Date        time.Time         `db:"date" json:"date"`
	Status      AttendanceStatus  `db:"status" json:"status"`
	Session     AttendanceSession `db:"session" json:"session"`
	Year        int               `db:"year" json:"year"`
	Semester    int               `db:"semester" json:"semester"`
	Department  string            `db:"department" json:"department"`
	Section     string            `db:"section" json:"section"`
	Remarks     *string           `db:"remarks" json:"remarks,omitempty"`
	MarkedBy    string            `db:"marked_by" json:"markedBy"`
	UpdatedBy   *string           `db:"updated_by" json:"updatedBy,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}

// StudentAttendanceFilter scopes per-student ledger queries.
type StudentAttendanceFilter struct {
	Subject   string
	StartDate *time.Time
	EndDate   *time.Time
}

// SubjectAttendanceFilter scopes per-subject ledger queries.
type SubjectAttendanceFilter struct {
	Date       *time.Time
	Year       int
	Semester   int
	Department string
}

// DateAttendanceFilter scopes per-date ledger queries.
type DateAttendanceFilter struct {
	Subject    string
	Department string
	Year       int
}

// AttendanceCounts is the raw tally a percentage is derived from.
type AttendanceCounts struct {
	Total   int `db:"total"`
	Present int `db:"present"`
}

// SubjectCounts is the raw per-subject tally.
type SubjectCounts struct {
	Subject     string `db:"subject"`
	SubjectCode string `db:"subject_code"`
	AttendanceCounts
}

// AttendanceStats carries the percentage aggregate for a student scope.
type AttendanceStats struct {
	TotalClasses   int     `json:"totalClasses"`
	PresentClasses int     `json:"presentClasses"`
	AbsentClasses  int     `json:"absentClasses"`
	Percentage     float64 `json:"percentage"`
}

// SubjectAttendanceStats is a per-subject percentage aggregate.
type SubjectAttendanceStats struct {
	Subject     string `json:"subject"`
	SubjectCode string `json:"subjectCode"`
	AttendanceStats
}

// MonthlyTrendPoint is one month in the attendance trend.
type MonthlyTrendPoint struct {
	Year    int `db:"year" json:"year"`
	Month   int `db:"month" json:"month"`
	Total   int `db:"total" json:"total"`
	Present int `db:"present" json:"present"`
}

// AttendanceStatsBundle is the full statistics payload for a student.
type AttendanceStatsBundle struct {
	Overall      AttendanceStats          `json:"overall"`
	SubjectWise  []SubjectAttendanceStats `json:"subjectWise"`
	MonthlyTrend []MonthlyTrendPoint      `json:"monthlyTrend"`
}

// StudentAttendancePayload pairs a student's ledger rows with the aggregate
// derived from the same scope.
type StudentAttendancePayload struct {
	Attendance []AttendanceRecord `json:"attendance"`
	Statistics AttendanceStats    `json:"statistics"`
}

// LowAttendanceFilter scopes the low-attendance report.
type LowAttendanceFilter struct {
	Threshold  float64
	Department string
	Year       int
}

// LowAttendanceRow is the raw aggregate row produced by the ledger query.
type LowAttendanceRow struct {
	StudentID  string `db:"student_id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Department string `db:"department"`
	Year       int    `db:"year"`
	Total      int    `db:"total"`
	Present    int    `db:"present"`
}

// LowAttendanceStudent pairs a student summary with their aggregate.
type LowAttendanceStudent struct {
	Student    StudentSummary  `json:"student"`
	Attendance AttendanceStats `json:"attendance"`
}
