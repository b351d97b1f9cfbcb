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

// MarksHandler exposes marks ledger endpoints.
type MarksHandler struct {
	marks *service.MarksService
}

// NewMarksHandler constructs MarksHandler.
func NewMarksHandler(marks *service.MarksService) *MarksHandler {
	return &MarksHandler{marks: marks}
}

// Add godoc
// @Summary Record or overwrite a grade
// @Tags Marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AddMarksRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Router /marks/add [post]
func (h *MarksHandler) Add(c *gin.Context) {
	var req models.AddMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.marks.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "marks recorded", record)
}

// BySubject godoc
// @Summary Grades recorded for a subject
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Param subjectCode path string true "Subject code"
// @Param examType query string false "Filter by exam type"
// @Success 200 {object} response.Envelope
// @Router /marks/subject/{subjectCode} [get]
func (h *MarksHandler) BySubject(c *gin.Context) {
	var examType *models.ExamType
	if raw := c.Query("examType"); raw != "" {
		e := models.ExamType(raw)
		examType = &e
	}
	records, err := h.marks.BySubject(c.Request.Context(), c.Param("subjectCode"), examType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records))
}

// MyMarks godoc
// @Summary Own grades
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /marks/my-marks [get]
func (h *MarksHandler) MyMarks(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	if claims.StudentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a student record"))
		return
	}
	records, err := h.marks.ForStudent(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records))
}
