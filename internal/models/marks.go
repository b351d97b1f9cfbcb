package models

import "time"

// ExamType identifies the examination a marks record belongs to.
type ExamType string

const (
	ExamMidSemester ExamType = "Mid-Semester"
	ExamEndSemester ExamType = "End-Semester"
	ExamInternal    ExamType = "Internal"
	ExamPractical   ExamType = "Practical"
)

// Valid returns true when the exam type is a supported value.
func (e ExamType) Valid() bool {
	switch e {
	case ExamMidSemester, ExamEndSemester, ExamInternal, ExamPractical:
		return true
	default:
		return false
	}
}

// MarksRecord holds one grade per (student, subject code, exam type) tuple.
type MarksRecord struct {
	ID            string    `db:"id" json:"id"`
	StudentRef    string    `db:"student_ref" json:"-"`
	StudentID     string    `db:"student_id" json:"studentId"`
	SubjectName   string    `db:"subject_name" json:"subjectName"`
	SubjectCode   string    `db:"subject_code" json:"subjectCode"`
	ExamType      ExamType  `db:"exam_type" json:"examType"`
	MarksObtained float64   `db:"marks_obtained" json:"marksObtained"`
	MaxMarks      float64   `db:"max_marks" json:"maxMarks"`
	Semester      int       `db:"semester" json:"semester"`
	FacultyID     string    `db:"faculty_id" json:"facultyId"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
