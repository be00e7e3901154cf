package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
	"github.com/noah-isme/qc-checklist/pkg/export"
)

const (
	exportPageSize = 200
	exportMaxRows  = 10000

	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var checklistExportHeaders = []string{"Documento", "Data", "Produto", "Quantidade", "Status", "Responsavel", "Assistencia", "Finalizado", "Falhas", "Observacao Producao", "Observacao Assistencia"}

type checklistLister interface {
	List(ctx context.Context, filter models.ChecklistFilter) ([]models.Checklist, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered export ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders the checklist history as CSV or PDF.
type ExportService struct {
	checklists checklistLister
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the
// defaults from pkg/export.
func NewExportService(checklists checklistLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{checklists: checklists, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Checklists renders every document matching the query, newest first.
func (s *ExportService) Checklists(ctx context.Context, query dto.ExportChecklistsQuery) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Validation("format must be csv or pdf")
	}
	filter, err := checklistFilter(query.Status, query.Search)
	if err != nil {
		return nil, err
	}

	docs, err := s.collect(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklists for export")
	}
	dataset := checklistDataset(docs)

	stamp := s.now().UTC()
	result := &ExportResult{
		Filename: fmt.Sprintf("checklists_%s.%s", stamp.Format("20060102_150405"), format),
		Rows:     len(docs),
	}
	switch format {
	case ExportFormatCSV:
		result.ContentType = "text/csv; charset=utf-8"
		result.Payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		result.ContentType = "application/pdf"
		result.Payload, err = s.pdf.Render(dataset, "Historico de Checklists")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("checklists exported", zap.String("format", format), zap.Int("rows", result.Rows))
	return result, nil
}

func (s *ExportService) collect(ctx context.Context, filter models.ChecklistFilter) ([]models.Checklist, error) {
	filter.Limit = exportPageSize
	var out []models.Checklist
	for page := 1; len(out) < exportMaxRows; page++ {
		filter.Page = page
		docs, total, err := s.checklists.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
		if len(docs) < exportPageSize || len(out) >= total {
			break
		}
	}
	if len(out) > exportMaxRows {
		out = out[:exportMaxRows]
	}
	return out, nil
}

func checklistDataset(docs []models.Checklist) export.Dataset {
	rows := make([]map[string]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, map[string]string{
			"Documento":              doc.DocumentoID,
			"Data":                   doc.DataCriacao.Format("02/01/2006 15:04"),
			"Produto":                doc.Produto,
			"Quantidade":             strconv.Itoa(doc.Quantidade),
			"Status":                 string(doc.Status),
			"Responsavel":            doc.Responsavel,
			"Assistencia":            deref(doc.ResponsavelAssistencia),
			"Finalizado":             formatOptionalTime(doc.DataFinalizacao),
			"Falhas":                 describeFailures(doc.Falhas),
			"Observacao Producao":    doc.ProductionRemark(),
			"Observacao Assistencia": deref(doc.ObservacaoAssistencia),
		})
	}
	return export.Dataset{Headers: checklistExportHeaders, Rows: rows}
}

func describeFailures(list models.FailureList) string {
	parts := make([]string, 0, len(list))
	for _, rec := range list {
		part := rec.Falha + " (" + rec.Setor
		if rec.LocalizacaoComponente != nil {
			part += " " + *rec.LocalizacaoComponente
		}
		if rec.LadoPlaca != nil {
			part += " " + strings.ToUpper(string(*rec.LadoPlaca))
		}
		parts = append(parts, part+")")
	}
	return strings.Join(parts, "; ")
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
