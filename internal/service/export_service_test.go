package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
	"github.com/noah-isme/qc-checklist/pkg/export"
)

type pagedChecklists struct {
	total int
	pages []int
}

func (p *pagedChecklists) List(ctx context.Context, filter models.ChecklistFilter) ([]models.Checklist, int, error) {
	p.pages = append(p.pages, filter.Page)
	start := (filter.Page - 1) * filter.Limit
	var out []models.Checklist
	for i := start; i < p.total && i < start+filter.Limit; i++ {
		out = append(out, models.Checklist{
			DocumentoID: fmt.Sprintf("doc-%d", i),
			Produto:     "PCB",
			Quantidade:  1,
			Status:      models.ChecklistStatusCompleto,
			DataCriacao: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
			Falhas:      models.FailureList{{Falha: "Curto", Setor: "SMT"}},
		})
	}
	return out, p.total, nil
}

type capturePDF struct {
	title string
	rows  int
}

func (c *capturePDF) Render(data export.Dataset, title string) ([]byte, error) {
	c.title = title
	c.rows = len(data.Rows)
	return []byte("%PDF"), nil
}

func TestExportChecklistsCSVPagesThroughHistory(t *testing.T) {
	source := &pagedChecklists{total: 450}
	svc := NewExportService(source, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC) }

	res, err := svc.Checklists(context.Background(), dto.ExportChecklistsQuery{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, source.pages)
	assert.Equal(t, 450, res.Rows)
	assert.Equal(t, "checklists_20260304_180000.csv", res.Filename)
	assert.True(t, strings.HasPrefix(res.ContentType, "text/csv"))
	assert.Contains(t, string(res.Payload), "Documento;Data;Produto")
	assert.Contains(t, string(res.Payload), "Curto (SMT)")
}

func TestExportChecklistsPDF(t *testing.T) {
	pdf := &capturePDF{}
	svc := NewExportService(&pagedChecklists{total: 3}, zap.NewNop(), nil, pdf)

	res, err := svc.Checklists(context.Background(), dto.ExportChecklistsQuery{Format: "PDF", Status: "COMPLETO"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, 3, pdf.rows)
	assert.NotEmpty(t, pdf.title)
}

func TestExportChecklistsRejectsFormat(t *testing.T) {
	svc := NewExportService(&pagedChecklists{}, zap.NewNop(), nil, nil)
	_, err := svc.Checklists(context.Background(), dto.ExportChecklistsQuery{Format: "xlsx"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDescribeFailures(t *testing.T) {
	loc := "R12"
	bot := models.BoardSideBot
	got := describeFailures(models.FailureList{
		{Falha: "Curto", Setor: "SMT", LocalizacaoComponente: &loc, LadoPlaca: &bot},
		{Falha: "Risco", Setor: "Inspecao"},
	})
	assert.Equal(t, "Curto (SMT R12 BOT); Risco (Inspecao)", got)
}
