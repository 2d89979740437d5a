package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Finanzas",
		Headers: []string{"fecha", "concepto", "monto"},
		Rows: []map[string]string{
			{"fecha": "2024-03-02", "concepto": "Cuota", "monto": "21000"},
			{"fecha": "2024-03-05", "concepto": "Luz", "monto": "-8000"},
		},
		Summary: []SummaryLine{{Label: "Neto", Value: "13000"}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "fecha,concepto,monto\n2024-03-02,Cuota,21000\n2024-03-05,Luz,-8000\n\nNeto,13000\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", NewPDFExporter().ContentType())
}
