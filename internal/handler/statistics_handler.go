package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/epd-student-api/internal/middleware"
	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/internal/service"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/response"
)

type statisticsService interface {
	Summary(ctx context.Context) (*models.Statistics, bool, error)
}

type statisticsExporter interface {
	Statistics(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
}

// StatisticsHandler serves the dashboard statistics.
type StatisticsHandler struct {
	stats   statisticsService
	exports statisticsExporter
}

// NewStatisticsHandler constructs StatisticsHandler.
func NewStatisticsHandler(stats statisticsService, exports statisticsExporter) *StatisticsHandler {
	return &StatisticsHandler{stats: stats, exports: exports}
}

// Summary godoc
// @Summary Aggregated student statistics
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics [get]
func (h *StatisticsHandler) Summary(c *gin.Context) {
	if h.stats == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download statistics as CSV or PDF
// @Tags Statistics
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /statistics/export [get]
func (h *StatisticsHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv"))))
	file, err := h.exports.Statistics(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Format.ContentType(), file.Filename, file.Data)
}
