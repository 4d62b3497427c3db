package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "Rekap Februari 2024",
		Columns: []Column{
			{Key: "week", Title: "Week"},
			{Key: "attendance_count", Title: "Attendance"},
			{Key: "note"},
		},
		Rows: []map[string]string{
			{"week": "1", "attendance_count": "12", "note": "a, b"},
			{"week": "2", "attendance_count": "0"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Week,Attendance,note\n1,12,\"a, b\"\n2,0,\n", string(out))
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	out, err := exporter.Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
	assert.Equal(t, "pdf", exporter.Extension())
}
