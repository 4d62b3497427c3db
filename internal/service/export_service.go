package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/kbm-attendance-api/internal/models"
	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
	"github.com/noah-isme/kbm-attendance-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type breakdownSource interface {
	MonthlyBreakdown(ctx context.Context, year int, month *int) ([]models.MonthlyBreakdown, bool, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders statistics into downloadable files.
type ExportService struct {
	statistics breakdownSource
	renderers  map[ExportFormat]datasetRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export ones.
func NewExportService(statistics breakdownSource, csv, pdf datasetRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		statistics: statistics,
		renderers:  map[ExportFormat]datasetRenderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		logger:     logger,
	}
}

var breakdownColumns = []export.Column{
	{Key: "month", Title: "Month"},
	{Key: "year", Title: "Year"},
	{Key: "total_kbm", Title: "Total KBM"},
	{Key: "avg_attendance", Title: "Avg Attendance"},
	{Key: "week", Title: "Week"},
	{Key: "period", Title: "Period"},
	{Key: "attendance_count", Title: "Attendance"},
	{Key: "total_students", Title: "Students"},
}

// MonthlyBreakdown renders the breakdown of year (and optionally month) with one row per week.
func (s *ExportService) MonthlyBreakdown(ctx context.Context, year int, month *int, format string) (*ExportFile, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if f == "" {
		f = ExportFormatCSV
	}
	renderer, ok := s.renderers[f]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	breakdowns, _, err := s.statistics.MonthlyBreakdown(ctx, year, month)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Rekap KBM %d", year)
	name := fmt.Sprintf("rekap-kbm-%04d", year)
	if month != nil {
		title = fmt.Sprintf("Rekap KBM %s %d", breakdowns[0].Month, year)
		name = fmt.Sprintf("%s-%02d", name, *month)
	}
	dataset := export.Dataset{Title: title, Columns: breakdownColumns}
	for _, b := range breakdowns {
		for _, w := range b.WeeklyData {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"month":            b.Month,
				"year":             strconv.Itoa(b.Year),
				"total_kbm":        strconv.Itoa(b.TotalSessions),
				"avg_attendance":   strconv.FormatFloat(b.AvgAttendance, 'f', 2, 64),
				"week":             strconv.Itoa(w.Week),
				"period":           w.StartDate + " - " + w.EndDate,
				"attendance_count": strconv.Itoa(w.AttendanceCount),
				"total_students":   strconv.Itoa(w.TotalStudents),
			})
		}
	}

	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}
	s.logger.Info("statistics exported", zap.String("format", string(f)), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{
		Filename:    name + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}
