package models

import "time"

// Faculty represents a faculty profile keyed by the facultyId business key.
type Faculty struct {
	ID              string    `db:"id" json:"id"`
	FacultyID       string    `db:"faculty_id" json:"facultyId"`
	UserID          string    `db:"user_id" json:"userId"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	Qualification   string    `db:"qualification" json:"qualification"`
	ExperienceYears int       `db:"experience_years" json:"experienceYears"`
	Department      string    `db:"department" json:"department"`
	Designation     string    `db:"designation" json:"designation"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// FacultySubject is one entry in a faculty member's assigned subject list.
type FacultySubject struct {
	ID          string `db:"id" json:"id"`
	FacultyRef  string `db:"faculty_ref" json:"-"`
	SubjectName string `db:"subject_name" json:"subjectName"`
	SubjectCode string `db:"subject_code" json:"subjectCode"`
	Semester    int    `db:"semester" json:"semester"`
	Branch      string `db:"branch" json:"branch"`
}

// FacultyProfile bundles the profile with its subject assignments.
type FacultyProfile struct {
	Faculty
	Subjects []FacultySubject `json:"subjectsAssigned"`
}
