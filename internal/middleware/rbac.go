package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
	"github.com/Campus-Management-System/ERP-System/pkg/response"
)

// Operation names a protected capability. Permissions are declared once in
// the table below instead of being scattered per route.
type Operation string

const (
	OpMarkAttendance        Operation = "attendance:mark"
	OpAmendAttendance       Operation = "attendance:amend"
	OpDeleteAttendance      Operation = "attendance:delete"
	OpViewStudentAttendance Operation = "attendance:view-student"
	OpViewSubjectAttendance Operation = "attendance:view-subject"
	OpViewDateAttendance    Operation = "attendance:view-date"
	OpViewAttendanceStats   Operation = "attendance:view-stats"
	OpViewLowAttendance     Operation = "attendance:view-low"

	OpAddMarks         Operation = "marks:add"
	OpViewSubjectMarks Operation = "marks:view-subject"
	OpViewOwnMarks     Operation = "marks:view-own"

	OpListStudents     Operation = "students:list"
	OpViewStudent      Operation = "students:view"
	OpCreateStudent    Operation = "students:create"
	OpUpdateStudent    Operation = "students:update"
	OpDeleteStudent    Operation = "students:delete"
	OpImportStudents   Operation = "students:import"
	OpViewStudentStats Operation = "students:stats"

	OpViewFacultyProfile Operation = "faculty:profile"
	OpAssignSubject      Operation = "faculty:assign-subject"

	OpViewMetrics Operation = "system:metrics"
)

// permissions is the single authoritative role table. An operation absent
// from the table is denied for everyone.
var permissions = map[Operation][]models.UserRole{
	OpMarkAttendance:        {models.RoleFaculty, models.RoleAdmin},
	OpAmendAttendance:       {models.RoleFaculty, models.RoleAdmin},
	OpDeleteAttendance:      {models.RoleAdmin},
	OpViewStudentAttendance: {models.RoleStudent, models.RoleFaculty, models.RoleAdmin},
	OpViewSubjectAttendance: {models.RoleFaculty, models.RoleAdmin},
	OpViewDateAttendance:    {models.RoleFaculty, models.RoleAdmin},
	OpViewAttendanceStats:   {models.RoleStudent, models.RoleFaculty, models.RoleAdmin},
	OpViewLowAttendance:     {models.RoleFaculty, models.RoleAdmin},

	OpAddMarks:         {models.RoleFaculty},
	OpViewSubjectMarks: {models.RoleFaculty},
	OpViewOwnMarks:     {models.RoleStudent},

	OpListStudents:     {models.RoleAdmin, models.RoleFaculty},
	OpViewStudent:      {models.RoleAdmin, models.RoleFaculty},
	OpCreateStudent:    {models.RoleAdmin},
	OpUpdateStudent:    {models.RoleAdmin},
	OpDeleteStudent:    {models.RoleAdmin},
	OpImportStudents:   {models.RoleAdmin},
	OpViewStudentStats: {models.RoleAdmin, models.RoleFaculty},

	OpViewFacultyProfile: {models.RoleFaculty},
	OpAssignSubject:      {models.RoleAdmin},

	OpViewMetrics: {models.RoleAdmin},
}

// Allowed reports whether a role may perform an operation.
func Allowed(op Operation, role models.UserRole) bool {
	for _, allowed := range permissions[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// RequireOperation enforces the role table for a route. It must run after
// JWT so the claims are present.
func RequireOperation(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		if !Allowed(op, claims.Role) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}
