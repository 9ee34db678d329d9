package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/usmanali13/university-timetable-management/internal/models"
	"github.com/usmanali13/university-timetable-management/internal/service"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
	"github.com/usmanali13/university-timetable-management/pkg/response"
)

// TimetableHandler exposes timetable generation and delivery endpoints.
type TimetableHandler struct {
	timetables *service.TimetableService
	exports    *service.ExportService
}

// NewTimetableHandler constructs TimetableHandler.
func NewTimetableHandler(timetables *service.TimetableService, exports *service.ExportService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, exports: exports}
}

func tripleFromQuery(c *gin.Context) (string, string, models.Shift, error) {
	department := strings.TrimSpace(c.Query("department"))
	semester := strings.TrimSpace(c.Query("semester"))
	shift := strings.TrimSpace(c.Query("shift"))
	if department == "" || semester == "" || shift == "" {
		return "", "", "", appErrors.Clone(appErrors.ErrValidation, "department, semester and shift are required")
	}
	if shift != string(models.ShiftMorning) && shift != string(models.ShiftEvening) {
		return "", "", "", appErrors.Clone(appErrors.ErrValidation, "shift must be Morning or Evening")
	}
	return department, semester, models.Shift(shift), nil
}

// Generate godoc
// @Summary Generate timetable
// @Description Generate a weekly timetable for a department, semester and shift
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body service.GenerateTimetableRequest true "Generation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req service.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	timetable, err := h.timetables.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// Get godoc
// @Summary Get timetable
// @Description Fetch the latest timetable for a department, semester and shift
// @Tags Timetables
// @Produce json
// @Param department query string true "Department"
// @Param semester query string true "Semester"
// @Param shift query string true "Shift (Morning/Evening)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	department, semester, shift, err := tripleFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	timetable, err := h.timetables.GetByTriple(c.Request.Context(), department, semester, shift)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// StudentView godoc
// @Summary Student timetable view
// @Description Returns the most recently generated timetable
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/latest [get]
func (h *TimetableHandler) StudentView(c *gin.Context) {
	timetable, err := h.timetables.GetLatest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// EditEntry godoc
// @Summary Edit class entry
// @Description Apply a partial update to a single scheduled class
// @Tags Timetables
// @Accept json
// @Produce json
// @Param entryId path string true "Class entry ID"
// @Param payload body models.ClassEntryUpdate true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/entries/{entryId} [patch]
func (h *TimetableHandler) EditEntry(c *gin.Context) {
	var update models.ClassEntryUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	timetable, err := h.timetables.EditEntry(c.Request.Context(), c.Param("entryId"), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// Delete godoc
// @Summary Delete timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.timetables.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadPDF godoc
// @Summary Download timetable PDF
// @Description Stream the timetable for a triple as a PDF attachment
// @Tags Timetables
// @Produce application/pdf
// @Param department query string true "Department"
// @Param semester query string true "Semester"
// @Param shift query string true "Shift (Morning/Evening)"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /timetables/pdf [get]
func (h *TimetableHandler) DownloadPDF(c *gin.Context) {
	department, semester, shift, err := tripleFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	pdf, filename, err := h.exports.RenderPDF(c.Request.Context(), department, semester, shift)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Email godoc
// @Summary Email timetable
// @Description Queue the timetable PDF for delivery to one recipient
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body service.EmailTimetableRequest true "Email payload"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/email [post]
func (h *TimetableHandler) Email(c *gin.Context) {
	var req service.EmailTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.exports.EmailTimetable(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "timetable email queued"}, nil)
}

// EmailAll godoc
// @Summary Email timetable to all students
// @Description Queue the timetable PDF for delivery to every registered student
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body service.EmailAllRequest true "Email payload"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/email-all [post]
func (h *TimetableHandler) EmailAll(c *gin.Context) {
	var req service.EmailAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	queued, err := h.exports.EmailAllStudents(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "timetable emails queued", "queued": queued}, nil)
}
