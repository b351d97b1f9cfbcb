package models

import (
	"fmt"
	"time"
)

// StudentStatus tracks the lifecycle of a roster record.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusInactive  StudentStatus = "Inactive"
	StudentStatusSuspended StudentStatus = "Suspended"
	StudentStatusGraduated StudentStatus = "Graduated"
	StudentStatusDropped   StudentStatus = "Dropped"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusSuspended, StudentStatusGraduated, StudentStatusDropped:
		return true
	default:
		return false
	}
}

// Student represents a roster record keyed by the immutable studentId business key.
type Student struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"studentId"`
	FirstName       string        `db:"first_name" json:"firstName"`
	LastName        string        `db:"last_name" json:"lastName"`
	DateOfBirth     time.Time     `db:"date_of_birth" json:"dateOfBirth"`
	Gender          string        `db:"gender" json:"gender"`
	Email           string        `db:"email" json:"email"`
	Phone           string        `db:"phone" json:"phone"`
	AddressCity     *string       `db:"address_city" json:"addressCity,omitempty"`
	AddressState    *string       `db:"address_state" json:"addressState,omitempty"`
	EnrollmentYear  int           `db:"enrollment_year" json:"enrollmentYear"`
	CurrentYear     int           `db:"current_year" json:"currentYear"`
	CurrentSemester int           `db:"current_semester" json:"currentSemester"`
	Department      string        `db:"department" json:"department"`
	Course          string        `db:"course" json:"course"`
	Section         string        `db:"section" json:"section"`
	RollNumber      string        `db:"roll_number" json:"rollNumber"`
	FatherName      string        `db:"father_name" json:"fatherName"`
	MotherName      string        `db:"mother_name" json:"motherName"`
	GuardianPhone   *string       `db:"guardian_phone" json:"guardianPhone,omitempty"`
	Status          StudentStatus `db:"status" json:"status"`
	UserID          *string       `db:"user_id" json:"userId,omitempty"`
	CreatedBy       *string       `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy       *string       `db:"updated_by" json:"updatedBy,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updatedAt"`
}

// FullName derives the display name. Never stored.
func (s *Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// Summary projects the fields dashboards need.
func (s *Student) Summary() StudentSummary {
	return StudentSummary{
		StudentID:  s.StudentID,
		Name:       s.FullName(),
		Email:      s.Email,
		Department: s.Department,
		Year:       s.CurrentYear,
		Semester:   s.CurrentSemester,
		Status:     s.Status,
	}
}

// StudentSummary is a compact roster projection.
type StudentSummary struct {
	StudentID  string        `json:"studentId"`
	Name       string        `json:"name"`
	Email      string        `json:"email,omitempty"`
	Department string        `json:"department"`
	Year       int           `json:"year"`
	Semester   int           `json:"semester,omitempty"`
	Status     StudentStatus `json:"status,omitempty"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Department string
	Year       int
	Semester   int
	Status     *StudentStatus
	Search     string
	Page       int
	PageSize   int
}

// DepartmentCount aggregates roster size per department.
type DepartmentCount struct {
	Department string `db:"department" json:"department"`
	Count      int    `db:"count" json:"count"`
}

// YearCount aggregates roster size per academic year.
type YearCount struct {
	Year  int `db:"year" json:"year"`
	Count int `db:"count" json:"count"`
}

// StudentStats summarises the roster.
type StudentStats struct {
	TotalStudents  int               `json:"totalStudents"`
	ActiveStudents int               `json:"activeStudents"`
	Departments    []DepartmentCount `json:"departmentStats"`
	Years          []YearCount       `json:"yearStats"`
}
