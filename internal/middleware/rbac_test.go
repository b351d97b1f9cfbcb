package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Campus-Management-System/ERP-System/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAllowedTable(t *testing.T) {
	cases := []struct {
		op   Operation
		role models.UserRole
		want bool
	}{
		{OpMarkAttendance, models.RoleFaculty, true},
		{OpMarkAttendance, models.RoleAdmin, true},
		{OpMarkAttendance, models.RoleStudent, false},
		{OpDeleteAttendance, models.RoleFaculty, false},
		{OpDeleteAttendance, models.RoleAdmin, true},
		{OpViewStudentAttendance, models.RoleStudent, true},
		{OpViewOwnMarks, models.RoleStudent, true},
		{OpViewOwnMarks, models.RoleFaculty, false},
		{OpAddMarks, models.RoleAdmin, false},
		{OpCreateStudent, models.RoleAdmin, true},
		{OpCreateStudent, models.RoleFaculty, false},
		{OpViewMetrics, models.RoleAdmin, true},
		{OpViewMetrics, models.RoleStudent, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Allowed(tc.op, tc.role),
			"op %s role %s", tc.op, tc.role)
	}
}

func TestAllowedUnknownOperation(t *testing.T) {
	assert.False(t, Allowed(Operation("bogus:op"), models.RoleAdmin))
}

func requestWithRole(t *testing.T, op Operation, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	r.GET("/protected", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	}, RequireOperation(op), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequireOperationAllows(t *testing.T) {
	w := requestWithRole(t, OpMarkAttendance, &models.JWTClaims{UserID: "u1", Role: models.RoleFaculty})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireOperationDenies(t *testing.T) {
	w := requestWithRole(t, OpMarkAttendance, &models.JWTClaims{UserID: "u2", Role: models.RoleStudent})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireOperationMissingClaims(t *testing.T) {
	w := requestWithRole(t, OpMarkAttendance, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentClaimsWrongType(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(ContextUserKey, "not claims")

	_, ok := CurrentClaims(c)
	assert.False(t, ok)
}
