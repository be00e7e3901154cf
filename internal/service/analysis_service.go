package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

// Analyzer answers a question about a defect digest.
type Analyzer interface {
	Analyze(ctx context.Context, query string, digest models.DefectDigest) (*models.AnalysisResponse, error)
}

type analysisChecklistSource interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Checklist, error)
}

var errAnalyzerUnavailable = appErrors.Clone(appErrors.ErrUnavailable, "analysis is not configured on this server")

// AnalysisService consolidates recent checklists and forwards them with the
// user's question to an Analyzer. Raw documents never leave the server.
type AnalysisService struct {
	checklists analysisChecklistSource
	analyzer   Analyzer
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	periodDays int
	now        func() time.Time
}

// NewAnalysisService constructs an AnalysisService. A nil analyzer makes
// every request fail with UNAVAILABLE.
func NewAnalysisService(checklists analysisChecklistSource, analyzer Analyzer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, periodDays int) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if periodDays <= 0 {
		periodDays = 90
	}
	return &AnalysisService{checklists: checklists, analyzer: analyzer, metrics: metrics, validator: validate, logger: logger, periodDays: periodDays, now: time.Now}
}

// Analyze answers req.Query over the configured period.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "query is required")
	}
	if s.analyzer == nil {
		s.metrics.RecordAnalysis("unavailable")
		return nil, errAnalyzerUnavailable
	}

	since := s.now().UTC().AddDate(0, 0, -s.periodDays)
	docs, err := s.checklists.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklists for analysis")
	}
	digest := BuildDigest(docs, s.periodDays)

	res, err := s.analyzer.Analyze(ctx, req.Query, digest)
	if err != nil {
		s.metrics.RecordAnalysis("error")
		s.logger.Error("analyzer failed", zap.Int("documents", digest.TotalDocuments), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "the analysis service could not answer, try again later")
	}
	res.Fill()
	s.metrics.RecordAnalysis("success")
	return res, nil
}

// BuildDigest folds documents into per-dimension failure counts.
func BuildDigest(docs []models.Checklist, periodDays int) models.DefectDigest {
	digest := models.DefectDigest{
		PeriodDays: periodDays,
		ByDefect:   map[string]int{},
		BySector:   map[string]int{},
		ByProduct:  map[string]int{},
		BoardSides: map[string]int{},
	}
	for _, doc := range docs {
		digest.TotalDocuments++
		digest.TotalBoards += doc.Quantidade
		if doc.Status == models.ChecklistStatusPendente {
			digest.PendingDocuments++
		}
		if p := strings.TrimSpace(doc.Produto); p != "" {
			digest.ByProduct[p] += len(doc.Falhas)
		}
		for _, rec := range doc.Falhas {
			digest.ByDefect[rec.Falha]++
			digest.BySector[rec.Setor]++
			if rec.LadoPlaca != nil {
				digest.BoardSides[string(*rec.LadoPlaca)]++
			}
		}
	}
	return digest
}
