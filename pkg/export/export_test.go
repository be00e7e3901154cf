package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Headers: []string{"Produto", "Falhas"},
		Rows: []map[string]string{
			{"Produto": "Placa Inversor", "Falhas": "Solda fria; Curto"},
			{"Produto": "Módulo Ótico", "Falhas": ""},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, utf8BOM))
	body := string(out[len(utf8BOM):])
	assert.Equal(t, "Produto;Falhas\nPlaca Inversor;\"Solda fria; Curto\"\nMódulo Ótico;\n", body)
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	exp := NewPDFExporter()
	exp.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	exp.Widths = map[string]float64{"Falhas": 3}

	out, err := exp.Render(sample(), "Histórico de checklists")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsAndTruncate(t *testing.T) {
	exp := &PDFExporter{Widths: map[string]float64{"b": 3}}
	widths := exp.columnWidths([]string{"a", "b"})
	assert.InDelta(t, pageWidth/4, widths[0], 0.001)
	assert.InDelta(t, pageWidth*3/4, widths[1], 0.001)

	assert.Equal(t, "short", truncate("short", 50))
	assert.Equal(t, "abcd...", truncate("abcdefghijklmnop", 12))
}
