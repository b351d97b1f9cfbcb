package models

// AttendanceEntry is one student's status inside a batch marking request.
type AttendanceEntry struct {
	StudentID string           `json:"studentId" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required"`
	Remarks   *string          `json:"remarks"`
}

// MarkAttendanceRequest is the batch marking payload. Dates travel as
// YYYY-MM-DD strings.
type MarkAttendanceRequest struct {
	Subject     string            `json:"subject" validate:"required"`
	SubjectCode string            `json:"subjectCode" validate:"required"`
	Date        string            `json:"date" validate:"required"`
	Session     AttendanceSession `json:"session"`
	FacultyID   string            `json:"facultyId" validate:"required"`
	Entries     []AttendanceEntry `json:"attendanceData" validate:"required,min=1,dive"`
}

// AttendanceEntryError reports why one entry in a batch was rejected.
type AttendanceEntryError struct {
	StudentID string `json:"studentId"`
	Error     string `json:"error"`
}

// MarkAttendanceResult carries the per-entry outcome of a batch marking.
type MarkAttendanceResult struct {
	Marked []AttendanceRecord     `json:"marked"`
	Errors []AttendanceEntryError `json:"errors"`
}

// AmendAttendanceRequest corrects a ledger entry after the fact.
type AmendAttendanceRequest struct {
	Status  AttendanceStatus `json:"status" validate:"required"`
	Remarks *string          `json:"remarks"`
}

// AddMarksRequest records or overwrites one grade.
type AddMarksRequest struct {
	StudentID     string   `json:"studentId" validate:"required"`
	SubjectName   string   `json:"subjectName" validate:"required"`
	SubjectCode   string   `json:"subjectCode" validate:"required"`
	ExamType      ExamType `json:"examType" validate:"required"`
	MarksObtained float64  `json:"marksObtained"`
	MaxMarks      float64  `json:"maxMarks"`
	Semester      int      `json:"semester" validate:"required,min=1,max=8"`
	FacultyID     string   `json:"facultyId" validate:"required"`
}

// AssignSubjectRequest attaches a subject to a faculty profile.
type AssignSubjectRequest struct {
	FacultyID   string `json:"facultyId" validate:"required"`
	SubjectName string `json:"subjectName" validate:"required"`
	SubjectCode string `json:"subjectCode" validate:"required"`
	Semester    int    `json:"semester" validate:"required,min=1,max=8"`
	Branch      string `json:"branch" validate:"required"`
}

// CreateStudentRequest is the admission payload.
type CreateStudentRequest struct {
	StudentID       string  `json:"studentId" validate:"required"`
	FirstName       string  `json:"firstName" validate:"required"`
	LastName        string  `json:"lastName" validate:"required"`
	DateOfBirth     string  `json:"dateOfBirth" validate:"required"`
	Gender          string  `json:"gender" validate:"required,oneof=Male Female Other"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"required"`
	AddressCity     *string `json:"addressCity"`
	AddressState    *string `json:"addressState"`
	EnrollmentYear  int     `json:"enrollmentYear" validate:"required"`
	CurrentYear     int     `json:"currentYear" validate:"required,min=1,max=4"`
	CurrentSemester int     `json:"currentSemester" validate:"required,min=1,max=8"`
	Department      string  `json:"department" validate:"required"`
	Course          string  `json:"course" validate:"required"`
	Section         string  `json:"section" validate:"required"`
	RollNumber      string  `json:"rollNumber" validate:"required"`
	FatherName      string  `json:"fatherName" validate:"required"`
	MotherName      string  `json:"motherName" validate:"required"`
	GuardianPhone   *string `json:"guardianPhone"`

	// When set, a student login account is provisioned alongside the
	// roster record.
	CreateUserAccount bool   `json:"createUserAccount"`
	Password          string `json:"password"`
}

// UpdateStudentRequest carries partial roster edits. Nil fields are left
// untouched; the studentId business key can never change.
type UpdateStudentRequest struct {
	FirstName       *string        `json:"firstName"`
	LastName        *string        `json:"lastName"`
	DateOfBirth     *string        `json:"dateOfBirth"`
	Gender          *string        `json:"gender"`
	Email           *string        `json:"email"`
	Phone           *string        `json:"phone"`
	AddressCity     *string        `json:"addressCity"`
	AddressState    *string        `json:"addressState"`
	EnrollmentYear  *int           `json:"enrollmentYear"`
	CurrentYear     *int           `json:"currentYear"`
	CurrentSemester *int           `json:"currentSemester"`
	Department      *string        `json:"department"`
	Course          *string        `json:"course"`
	Section         *string        `json:"section"`
	RollNumber      *string        `json:"rollNumber"`
	FatherName      *string        `json:"fatherName"`
	MotherName      *string        `json:"motherName"`
	GuardianPhone   *string        `json:"guardianPhone"`
	Status          *StudentStatus `json:"status"`
}

// ImportRowError reports why one CSV row was rejected.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportStudentsResult carries the per-row outcome of a CSV import.
type ImportStudentsResult struct {
	Imported int              `json:"imported"`
	Students []Student        `json:"students"`
	Errors   []ImportRowError `json:"errors"`
}

// CreatedStudentResult pairs the stored record with the account outcome.
type CreatedStudentResult struct {
	Student            *Student `json:"student"`
	UserAccountCreated bool     `json:"userAccountCreated"`
}
