package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Student ID", "Status"},
		Rows: []map[string]string{
			{"Student ID": "STU001", "Status": "Present"},
			{"Student ID": "STU002", "Status": "Absent"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Student ID,Status\nSTU001,Present\nSTU002,Absent\n", string(out))
}

func TestCSVExporterMissingCellLeftEmpty(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Student ID", "Remarks"},
		Rows:    []map[string]string{{"Student ID": "STU001"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Student ID,Remarks\nSTU001,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
