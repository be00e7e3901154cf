package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type checklistRepository interface {
	Create(ctx context.Context, doc *models.Checklist) error
	FindByID(ctx context.Context, id string) (*models.Checklist, error)
	List(ctx context.Context, filter models.ChecklistFilter) ([]models.Checklist, int, error)
	Update(ctx context.Context, doc *models.Checklist) error
}

var (
	errFailureRequired = appErrors.Validation("at least one failure required")
	errReopen          = appErrors.Validation("a completed document cannot be reopened")
	errChecklistAbsent = appErrors.Clone(appErrors.ErrNotFound, "checklist not found")
)

// ChecklistService implements the defect document workflows.
type ChecklistService struct {
	repo      checklistRepository
	audit     auditRecorder
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewChecklistService constructs a ChecklistService. cache and metrics may be
// nil.
func NewChecklistService(repo checklistRepository, audit auditRecorder, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ChecklistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChecklistService{repo: repo, audit: audit, cache: cache, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Create stores a new document. A document routed to assistance starts
// PENDENTE with no failures; any other document needs at least one valid
// failure and is COMPLETO immediately. The author is the token subject.
func (s *ChecklistService) Create(ctx context.Context, req dto.CreateChecklistRequest, meta AuditMeta) (*models.Checklist, error) {
	req.Produto = strings.TrimSpace(req.Produto)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "produto is required and quantidade must be greater than zero")
	}

	doc := &models.Checklist{
		DocumentoID:        uuid.NewString(),
		Produto:            req.Produto,
		Quantidade:         req.Quantidade,
		Responsavel:        meta.Actor,
		DataCriacao:        s.now().UTC(),
		ObservacaoProducao: normalizeOptional(req.ObservacaoProducao),
	}

	if req.VaiParaAssistencia {
		doc.Status = models.ChecklistStatusPendente
		doc.Falhas = models.FailureList{}
	} else {
		falhas, err := normalizeFailures(req.Falhas)
		if err != nil {
			return nil, err
		}
		if len(falhas) == 0 {
			return nil, errFailureRequired
		}
		doc.Status = models.ChecklistStatusCompleto
		doc.Falhas = falhas
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create checklist")
	}

	s.metrics.RecordChecklistCreated(doc.Status)
	s.cache.Invalidate(ctx, dashboardCachePattern)
	if s.audit != nil {
		s.audit.Record(ctx, meta, models.AuditActionChecklistCreate, "checklists", doc.DocumentoID,
			map[string]interface{}{"produto": doc.Produto, "status": doc.Status, "falhas": len(doc.Falhas)})
	}
	return doc, nil
}

// List returns one page of documents matching the query.
func (s *ChecklistService) List(ctx context.Context, query dto.ListChecklistsQuery) (*models.ChecklistPage, error) {
	filter, err := checklistFilter(query.Status, query.Search)
	if err != nil {
		return nil, err
	}
	filter.Page = query.Page
	filter.Limit = query.Limit

	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list checklists")
	}
	if docs == nil {
		docs = []models.Checklist{}
	}
	return &models.ChecklistPage{Items: docs, TotalCount: total}, nil
}

// Get returns a single document with legacy fields projected.
func (s *ChecklistService) Get(ctx context.Context, id string) (*models.Checklist, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errChecklistAbsent
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errChecklistAbsent
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist")
	}
	return doc, nil
}

// Update applies an assistance edit. Only quantidade, status, the remarks and
// the failure list may change. The first transition from PENDENTE to
// COMPLETO stamps the assistance author and the completion time together.
func (s *ChecklistService) Update(ctx context.Context, id string, req dto.UpdateChecklistRequest, meta AuditMeta) (*models.Checklist, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checklist update")
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := doc.Status

	if req.Quantidade != nil {
		doc.Quantidade = *req.Quantidade
	}
	if req.FalhasJSON != nil {
		decoded, err := models.DecodeFailures(*req.FalhasJSON)
		if err != nil {
			return nil, err
		}
		if doc.Falhas, err = normalizeFailures(decoded); err != nil {
			return nil, err
		}
	}
	if req.ObservacaoAssistencia != nil {
		doc.ObservacaoAssistencia = normalizeOptional(req.ObservacaoAssistencia)
	}
	if doc.NeedsRemarkCopyForward() {
		doc.ObservacaoProducao = normalizeOptional(doc.Observacao)
	} else if req.ObservacaoProducao != nil && doc.ProductionRemark() == "" {
		doc.ObservacaoProducao = normalizeOptional(req.ObservacaoProducao)
	}

	if req.Status != nil {
		if previous == models.ChecklistStatusCompleto && *req.Status == models.ChecklistStatusPendente {
			return nil, errReopen
		}
		doc.Status = *req.Status
	}
	if doc.Status == models.ChecklistStatusCompleto && len(doc.Falhas) == 0 {
		return nil, errFailureRequired
	}

	completing := previous == models.ChecklistStatusPendente && doc.Status == models.ChecklistStatusCompleto
	if completing {
		author := meta.Actor
		finished := s.now().UTC()
		doc.ResponsavelAssistencia = &author
		doc.DataFinalizacao = &finished
	}

	if err := s.repo.Update(ctx, doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errChecklistAbsent
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update checklist")
	}

	s.cache.Invalidate(ctx, dashboardCachePattern)
	if completing {
		s.metrics.RecordChecklistCompleted()
		if s.audit != nil {
			s.audit.Record(ctx, meta, models.AuditActionChecklistComplete, "checklists", doc.DocumentoID,
				map[string]interface{}{"falhas": len(doc.Falhas), "quantidade": doc.Quantidade})
		}
	}
	return doc, nil
}

func checklistFilter(status, search string) (models.ChecklistFilter, error) {
	filter := models.ChecklistFilter{Search: strings.TrimSpace(search)}
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		st := models.ChecklistStatus(status)
		if !st.Valid() {
			return filter, appErrors.Validation("status must be PENDENTE or COMPLETO")
		}
		filter.Status = &st
	}
	return filter, nil
}

func normalizeFailures(list models.FailureList) (models.FailureList, error) {
	out := make(models.FailureList, 0, len(list))
	for _, rec := range list {
		out = append(out, rec.Normalize())
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	return models.OptionalString(*v)
}
