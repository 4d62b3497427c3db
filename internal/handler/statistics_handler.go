package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kbm-attendance-api/internal/middleware"
	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/service"
	"github.com/noah-isme/kbm-attendance-api/pkg/response"
)

type statisticsService interface {
	PeriodSummary(ctx context.Context, start, end string) (*models.AttendanceSummary, bool, error)
	MonthlyBreakdown(ctx context.Context, year int, month *int) ([]models.MonthlyBreakdown, bool, error)
}

type exportService interface {
	MonthlyBreakdown(ctx context.Context, year int, month *int, format string) (*service.ExportFile, error)
}

// StatisticsHandler exposes attendance statistics and their exports.
type StatisticsHandler struct {
	statistics statisticsService
	export     exportService
	now        func() time.Time
}

// NewStatisticsHandler constructs a StatisticsHandler.
func NewStatisticsHandler(statistics statisticsService, export exportService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statistics, export: export, now: time.Now}
}

// Summary godoc
// @Summary Attendance summary for a period
// @Description Both bounds are optional and inclusive.
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /statistics/summary [get]
func (h *StatisticsHandler) Summary(c *gin.Context) {
	summary, hit, err := h.statistics.PeriodSummary(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// Monthly godoc
// @Summary Monthly breakdown with weekly buckets
// @Tags Statistics
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, all months when omitted"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /statistics/monthly [get]
func (h *StatisticsHandler) Monthly(c *gin.Context) {
	year, month, ok := h.period(c)
	if !ok {
		return
	}
	breakdown, hit, err := h.statistics.MonthlyBreakdown(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, breakdown, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the monthly breakdown
// @Tags Statistics
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /statistics/monthly/export [get]
func (h *StatisticsHandler) Export(c *gin.Context) {
	year, month, ok := h.period(c)
	if !ok {
		return
	}
	file, err := h.export.MonthlyBreakdown(c.Request.Context(), year, month, c.DefaultQuery("format", string(service.ExportFormatCSV)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

func (h *StatisticsHandler) period(c *gin.Context) (int, *int, bool) {
	year, err := optionalIntQuery(c, "year")
	if err != nil {
		response.Error(c, err)
		return 0, nil, false
	}
	month, err := optionalIntQuery(c, "month")
	if err != nil {
		response.Error(c, err)
		return 0, nil, false
	}
	if year == nil {
		current := h.now().Year()
		year = &current
	}
	return *year, month, true
}
