package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kbm-attendance-api/internal/middleware"
	"github.com/noah-isme/kbm-attendance-api/internal/models"
	"github.com/noah-isme/kbm-attendance-api/internal/service"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

type fakeStatisticsService struct {
	summary   *models.AttendanceSummary
	breakdown []models.MonthlyBreakdown
	hit       bool
	err       error
	lastStart string
	lastEnd   string
	lastYear  int
	lastMonth *int
}

func (f *fakeStatisticsService) PeriodSummary(_ context.Context, start, end string) (*models.AttendanceSummary, bool, error) {
	f.lastStart, f.lastEnd = start, end
	return f.summary, f.hit, f.err
}

func (f *fakeStatisticsService) MonthlyBreakdown(_ context.Context, year int, month *int) ([]models.MonthlyBreakdown, bool, error) {
	f.lastYear, f.lastMonth = year, month
	return f.breakdown, f.hit, f.err
}

type fakeExportService struct {
	file       *service.ExportFile
	err        error
	lastYear   int
	lastMonth  *int
	lastFormat string
}

func (f *fakeExportService) MonthlyBreakdown(_ context.Context, year int, month *int, format string) (*service.ExportFile, error) {
	f.lastYear, f.lastMonth, f.lastFormat = year, month, format
	return f.file, f.err
}

func TestStatisticsHandlerSummaryReportsCacheHit(t *testing.T) {
	stats := &fakeStatisticsService{summary: &models.AttendanceSummary{Present: 3, Period: "2024-01-01 - N/A"}, hit: true}
	handler := NewStatisticsHandler(stats, &fakeExportService{})
	c, rec := newGinContext(http.MethodGet, "/statistics/summary?start=2024-01-01", "")

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, string(envelope.Data), `"present":3`)
	assert.Equal(t, "2024-01-01", stats.lastStart)
	assert.Empty(t, stats.lastEnd)
}

func TestStatisticsHandlerSummaryInvalidRange(t *testing.T) {
	stats := &fakeStatisticsService{err: appErrors.Clone(appErrors.ErrValidation, "start must not be after end")}
	handler := NewStatisticsHandler(stats, &fakeExportService{})
	c, rec := newGinContext(http.MethodGet, "/statistics/summary?start=2024-02-01&end=2024-01-01", "")

	handler.Summary(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsHandlerMonthlyDefaultsToCurrentYear(t *testing.T) {
	stats := &fakeStatisticsService{breakdown: []models.MonthlyBreakdown{{Month: "January", Year: 2026}}}
	handler := NewStatisticsHandler(stats, &fakeExportService{})
	handler.now = func() time.Time { return time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC) }
	c, rec := newGinContext(http.MethodGet, "/statistics/monthly", "")

	handler.Monthly(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2026, stats.lastYear)
	assert.Nil(t, stats.lastMonth)
	assert.Equal(t, false, decodeEnvelope(t, rec).Meta["cache_hit"])
}

func TestStatisticsHandlerMonthlyParsesQuery(t *testing.T) {
	stats := &fakeStatisticsService{}
	handler := NewStatisticsHandler(stats, &fakeExportService{})
	c, rec := newGinContext(http.MethodGet, "/statistics/monthly?year=2024&month=2", "")

	handler.Monthly(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2024, stats.lastYear)
	require.NotNil(t, stats.lastMonth)
	assert.Equal(t, 2, *stats.lastMonth)
	assert.Equal(t, false, middleware.ExtractMeta(c)["cache_hit"])
}

func TestStatisticsHandlerMonthlyRejectsNonNumericMonth(t *testing.T) {
	stats := &fakeStatisticsService{}
	handler := NewStatisticsHandler(stats, &fakeExportService{})
	c, rec := newGinContext(http.MethodGet, "/statistics/monthly?year=2024&month=feb", "")

	handler.Monthly(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stats.lastYear)
}

func TestStatisticsHandlerExport(t *testing.T) {
	export := &fakeExportService{file: &service.ExportFile{
		Filename:    "rekap-kbm-2024-02.csv",
		ContentType: "text/csv",
		Payload:     []byte("Week\n1\n"),
	}}
	handler := NewStatisticsHandler(&fakeStatisticsService{}, export)
	c, rec := newGinContext(http.MethodGet, "/statistics/monthly/export?year=2024&month=2", "")

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", export.lastFormat)
	assert.Equal(t, `attachment; filename="rekap-kbm-2024-02.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "Week\n1\n", rec.Body.String())
}

func TestStatisticsHandlerExportUnknownFormat(t *testing.T) {
	export := &fakeExportService{err: appErrors.Clone(appErrors.ErrValidation, "unsupported export format")}
	handler := NewStatisticsHandler(&fakeStatisticsService{}, export)
	c, rec := newGinContext(http.MethodGet, "/statistics/monthly/export?year=2024&format=xlsx", "")

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "xlsx", export.lastFormat)
}
