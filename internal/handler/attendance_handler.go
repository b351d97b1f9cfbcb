package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Campus-Management-System/ERP-System/internal/middleware"
	"github.com/Campus-Management-System/ERP-System/internal/models"
	"github.com/Campus-Management-System/ERP-System/internal/service"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
	"github.com/Campus-Management-System/ERP-System/pkg/export"
	"github.com/Campus-Management-System/ERP-System/pkg/response"
)

// AttendanceHandler exposes attendance ledger endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	stats      *service.StatsService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, stats *service.StatsService, csvExporter *export.CSVExporter, pdfExporter *export.PDFExporter) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, stats: stats, csv: csvExporter, pdf: pdfExporter}
}

// ownStudentID returns the studentId the caller may query. Faculty and
// admins may query anyone; students only themselves.
func ownStudentID(c *gin.Context, requested string) (string, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return "", appErrors.ErrUnauthenticated
	}
	if claims.Role == models.RoleStudent && claims.StudentID != requested {
		return "", appErrors.Clone(appErrors.ErrForbidden, "students may only view their own records")
	}
	return requested, nil
}

// Mark godoc
// @Summary Mark attendance for a class sitting
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MarkAttendanceRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/mark [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req models.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims, _ := middleware.CurrentClaims(c)
	markedBy := ""
	if claims != nil {
		markedBy = claims.UserID
	}
	result, err := h.attendance.RecordBatch(c.Request.Context(), req, markedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	// Per-entry failures are reported in the body; the batch itself is
	// always accepted.
	message := fmt.Sprintf("%d marked, %d rejected", len(result.Marked), len(result.Errors))
	response.Partial(c, http.StatusCreated, message, result.Marked, result.Errors)
}

// Amend godoc
// @Summary Correct an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param payload body models.AmendAttendanceRequest true "Amendment"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Amend(c *gin.Context) {
	var req models.AmendAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims, _ := middleware.CurrentClaims(c)
	updatedBy := ""
	if claims != nil {
		updatedBy = claims.UserID
	}
	record, err := h.attendance.Amend(c.Request.Context(), c.Param("id"), req, updatedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "attendance updated", record)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "attendance deleted", nil)
}

// ByStudent godoc
// @Summary Attendance ledger for one student
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student business key"
// @Param subject query string false "Filter by subject"
// @Param startDate query string false "Range start YYYY-MM-DD"
// @Param endDate query string false "Range end YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /attendance/student/{studentId} [get]
func (h *AttendanceHandler) ByStudent(c *gin.Context) {
	studentID, err := ownStudentID(c, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var filter models.StudentAttendanceFilter
	filter.Subject = c.Query("subject")
	if raw := c.Query("startDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.StartDate = &t
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.EndDate = &t
		}
	}
	records, err := h.attendance.StudentLedger(c.Request.Context(), studentID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.stats.StudentOverall(c.Request.Context(), studentID, filter.Subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	response.OK(c, "", models.StudentAttendancePayload{Attendance: records, Statistics: *stats})
}

// BySubject godoc
// @Summary Attendance ledger for one subject
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param subjectCode path string true "Subject code"
// @Param date query string false "Filter by date YYYY-MM-DD"
// @Param year query int false "Filter by academic year"
// @Param semester query int false "Filter by semester"
// @Param department query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /attendance/subject/{subjectCode} [get]
func (h *AttendanceHandler) BySubject(c *gin.Context) {
	filter := subjectFilterFromQuery(c)
	records, err := h.attendance.SubjectLedger(c.Request.Context(), c.Param("subjectCode"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records))
}

func subjectFilterFromQuery(c *gin.Context) models.SubjectAttendanceFilter {
	var filter models.SubjectAttendanceFilter
	if raw := c.Query("date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.Date = &t
		}
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	filter.Department = c.Query("department")
	return filter
}

// ExportBySubject godoc
// @Summary Export a subject's ledger as CSV or PDF
// @Tags Attendance
// @Produce text/csv
// @Security BearerAuth
// @Param subjectCode path string true "Subject code"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /attendance/subject/{subjectCode}/export [get]
func (h *AttendanceHandler) ExportBySubject(c *gin.Context) {
	subjectCode := c.Param("subjectCode")
	filter := subjectFilterFromQuery(c)
	records, err := h.attendance.SubjectLedger(c.Request.Context(), subjectCode, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := export.Dataset{
		Headers: []string{"Student ID", "Subject", "Date", "Session", "Status", "Department", "Year"},
	}
	for _, r := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID": r.StudentID,
			"Subject":    r.Subject,
			"Date":       r.Date.Format("2006-01-02"),
			"Session":    string(r.Session),
			"Status":     string(r.Status),
			"Department": r.Department,
			"Year":       strconv.Itoa(r.Year),
		})
	}

	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := h.pdf.Render(dataset, fmt.Sprintf("Attendance %s", subjectCode))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.pdf", subjectCode))
		c.Data(http.StatusOK, "application/pdf", payload)
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.csv", subjectCode))
		c.Data(http.StatusOK, "text/csv", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// ByDate godoc
// @Summary Attendance ledger for one date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date YYYY-MM-DD"
// @Param subject query string false "Filter by subject"
// @Param department query string false "Filter by department"
// @Param year query int false "Filter by academic year"
// @Success 200 {object} response.Envelope
// @Router /attendance/date/{date} [get]
func (h *AttendanceHandler) ByDate(c *gin.Context) {
	var filter models.DateAttendanceFilter
	filter.Subject = c.Query("subject")
	filter.Department = c.Query("department")
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	records, err := h.attendance.DateLedger(c.Request.Context(), c.Param("date"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records))
}

// Stats godoc
// @Summary Attendance statistics for one student
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student business key"
// @Param subject query string false "Scope the overall figure to a subject"
// @Success 200 {object} response.Envelope
// @Router /attendance/stats/{studentId} [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	studentID, err := ownStudentID(c, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	bundle, err := h.stats.StudentStats(c.Request.Context(), studentID, c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", bundle)
}

// LowAttendance godoc
// @Summary Students below an attendance threshold
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param threshold query number false "Percentage threshold" default(75)
// @Param department query string false "Filter by department"
// @Param year query int false "Filter by academic year"
// @Success 200 {object} response.Envelope
// @Router /attendance/low-attendance [get]
func (h *AttendanceHandler) LowAttendance(c *gin.Context) {
	var filter models.LowAttendanceFilter
	if threshold, err := strconv.ParseFloat(c.Query("threshold"), 64); err == nil {
		filter.Threshold = threshold
	}
	filter.Department = c.Query("department")
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	report, err := h.stats.LowAttendance(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, report, len(report))
}
