package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Campus-Management-System/ERP-System/internal/middleware"
	"github.com/Campus-Management-System/ERP-System/internal/models"
	"github.com/Campus-Management-System/ERP-System/internal/service"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
	"github.com/Campus-Management-System/ERP-System/pkg/response"
)

// FacultyHandler exposes faculty profile endpoints.
type FacultyHandler struct {
	faculty *service.FacultyService
}

// NewFacultyHandler constructs FacultyHandler.
func NewFacultyHandler(faculty *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{faculty: faculty}
}

// Profile godoc
// @Summary Own faculty profile with subject assignments
// @Tags Faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /faculty/profile [get]
func (h *FacultyHandler) Profile(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	profile, err := h.faculty.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", profile)
}

// AssignSubject godoc
// @Summary Assign a subject to a faculty member
// @Tags Faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AssignSubjectRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /faculty/assign-subject [post]
func (h *FacultyHandler) AssignSubject(c *gin.Context) {
	var req models.AssignSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.faculty.AssignSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subject assigned", profile)
}
