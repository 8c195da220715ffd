package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/internal/service"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentRecord, *models.Pagination, error)
	Get(ctx context.Context, epID int64) (*models.StudentRecord, error)
	Create(ctx context.Context, student models.StudentRecord) (*models.StudentRecord, error)
	Update(ctx context.Context, epID int64, student models.StudentRecord) (*models.StudentRecord, error)
	Withdraw(ctx context.Context, epID int64, req service.WithdrawRequest) (*models.StudentRecord, error)
}

type rosterExporter interface {
	Roster(ctx context.Context) (*service.ExportFile, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	exports  rosterExporter
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, exports rosterExporter) *StudentHandler {
	return &StudentHandler{students: students, exports: exports}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "English name prefix, Arabic name, EP ID or phone number"
// @Param status query string false "Current status (NEW, RET, WD, NCL)"
// @Param nationality query string false "Nationality code"
// @Param level query string false "Current level"
// @Param initialSession query string false "Initial session label, e.g. Fa 21"
// @Param active query bool false "Only NEW and RET students"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:         strings.TrimSpace(c.Query("search")),
		Status:         models.Status(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Nationality:    models.Nationality(strings.ToUpper(strings.TrimSpace(c.Query("nationality")))),
		CurrentLevel:   models.GenderedLevel(strings.TrimSpace(c.Query("level"))),
		InitialSession: strings.TrimSpace(c.Query("initialSession")),
		ActiveOnly:     boolQuery(c, "active"),
		Page:           intQuery(c, "page", 1),
		PageSize:       intQuery(c, "limit", 20),
	}
	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param epId path int true "EP ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{epId} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	epID, err := epIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), epID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.StudentRecord true "Student document"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	student := models.NewStudentRecord()
	if err := c.ShouldBindJSON(&student); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.students.Create(c.Request.Context(), student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Replace student document
// @Tags Students
// @Accept json
// @Produce json
// @Param epId path int true "EP ID"
// @Param payload body models.StudentRecord true "Student document"
// @Success 200 {object} response.Envelope
// @Router /students/{epId} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	epID, err := epIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student := models.NewStudentRecord()
	if err := c.ShouldBindJSON(&student); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	updated, err := h.students.Update(c.Request.Context(), epID, student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Withdraw godoc
// @Summary Withdraw student
// @Tags Students
// @Accept json
// @Produce json
// @Param epId path int true "EP ID"
// @Param payload body service.WithdrawRequest true "Withdraw form"
// @Success 200 {object} response.Envelope
// @Router /students/{epId}/withdraw [post]
func (h *StudentHandler) Withdraw(c *gin.Context) {
	epID, err := epIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Withdraw(c.Request.Context(), epID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Export godoc
// @Summary Download the student roster as CSV
// @Tags Students
// @Produce text/csv
// @Success 200 {file} file
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	file, err := h.exports.Roster(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Format.ContentType(), file.Filename, file.Data)
}
