package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/kbm-attendance-api/pkg/errors"
)

func TestExportServiceMonthlyCSV(t *testing.T) {
	stats := newStatisticsService(januaryRows(), nil)
	svc := NewExportService(stats, nil, nil, nil)
	month := 1

	file, err := svc.MonthlyBreakdown(context.Background(), 2024, &month, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "rekap-kbm-2024-01.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Month,Year,Total KBM,Avg Attendance,Week,Period,Attendance,Students", lines[0])
	assert.Equal(t, "January,2024,2,1.50,1,2024-01-01 - 2024-01-07,1,1", lines[1])
	assert.Equal(t, "January,2024,2,1.50,2,2024-01-08 - 2024-01-14,2,2", lines[2])
}

func TestExportServiceWholeYearPDF(t *testing.T) {
	stats := newStatisticsService(&fakeStatisticsRepo{}, nil)
	svc := NewExportService(stats, nil, nil, nil)

	file, err := svc.MonthlyBreakdown(context.Background(), 2024, nil, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "rekap-kbm-2024.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(newStatisticsService(&fakeStatisticsRepo{}, nil), nil, nil, nil)

	_, err := svc.MonthlyBreakdown(context.Background(), 2024, nil, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServicePropagatesValidation(t *testing.T) {
	svc := NewExportService(newStatisticsService(&fakeStatisticsRepo{}, nil), nil, nil, nil)
	month := 14

	_, err := svc.MonthlyBreakdown(context.Background(), 2024, &month, "csv")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

