package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/epd-student-api/internal/service"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/response"
)

type importService interface {
	Import(ctx context.Context, r io.Reader, req service.ImportRequest) (*service.ImportSummary, error)
}

// ImportHandler accepts spreadsheet uploads.
type ImportHandler struct {
	imports importService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports importService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Import godoc
// @Summary Import students from a spreadsheet
// @Description Parses an .xlsx or .csv export of the student sheet and upserts every row with an EP ID.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Param sheet formData string false "Worksheet name (xlsx only)"
// @Param dryRun query bool false "Parse without storing"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /imports [post]
func (h *ImportHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open upload"))
		return
	}
	defer file.Close()

	summary, err := h.imports.Import(c.Request.Context(), file, service.ImportRequest{
		Filename: header.Filename,
		Sheet:    c.PostForm("sheet"),
		DryRun:   boolQuery(c, "dryRun"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
