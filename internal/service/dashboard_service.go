package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

const (
	dashboardCachePattern = "dashboard:*"
	dashboardCachePrefix  = "dashboard:summary:"
	topDefectsLimit       = 5
	topDefectsWindowDays  = 30
)

var weekdayLabels = [5]string{"Seg", "Ter", "Qua", "Qui", "Sex"}

type dashboardChecklistSource interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Checklist, error)
	CountByStatus(ctx context.Context, status models.ChecklistStatus) (int, error)
}

type dashboardProducaoSource interface {
	ListBetween(ctx context.Context, from, to string) ([]models.ProducaoRegistro, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	Location *time.Location
}

// DashboardService composes the home screen indicators.
type DashboardService struct {
	checklists dashboardChecklistSource
	producao   dashboardProducaoSource
	cache      *CacheService
	logger     *zap.Logger
	group      singleflight.Group
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(checklists dashboardChecklistSource, producao dashboardProducaoSource, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{checklists: checklists, producao: producao, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns the dashboard indicators and whether they came from cache.
// Concurrent misses for the same day share one computation.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	today := startOfDay(s.now().In(s.cfg.Location))
	key := dashboardCachePrefix + today.Format(models.DateLayout)

	var cached models.DashboardSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		summary, err := s.compute(ctx, today)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, summary, s.cfg.CacheTTL)
		return summary, nil
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	summary := *v.(*models.DashboardSummary)
	return &summary, false, nil
}

func (s *DashboardService) compute(ctx context.Context, today time.Time) (*models.DashboardSummary, error) {
	since := today.AddDate(0, 0, -(topDefectsWindowDays - 1))
	docs, err := s.checklists.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	pending, err := s.checklists.CountByStatus(ctx, models.ChecklistStatusPendente)
	if err != nil {
		return nil, err
	}
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	records, err := s.producao.ListBetween(ctx, monthStart.Format(models.DateLayout), today.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		ChecklistsToday:  countBetween(docs, today, today.AddDate(0, 0, 1)),
		PendingCount:     pending,
		WeeklyChecklists: weeklyCounts(docs, today),
		TopDefects:       topDefects(docs, topDefectsLimit),
		MonthProduction:  monthProduction(records, monthStart.Format(models.DateLayout)),
		GeneratedAt:      s.now().UTC(),
	}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func countBetween(docs []models.Checklist, from, to time.Time) int {
	n := 0
	for _, doc := range docs {
		created := doc.DataCriacao.In(from.Location())
		if !created.Before(from) && created.Before(to) {
			n++
		}
	}
	return n
}

// weeklyCounts returns Monday to Friday of the week containing today.
func weeklyCounts(docs []models.Checklist, today time.Time) []models.DayCount {
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)
	out := make([]models.DayCount, 0, len(weekdayLabels))
	for i, label := range weekdayLabels {
		day := monday.AddDate(0, 0, i)
		out = append(out, models.DayCount{
			Date:  day.Format(models.DateLayout),
			Label: label,
			Count: countBetween(docs, day, day.AddDate(0, 0, 1)),
		})
	}
	return out
}

// topDefects counts every failure record by defect type, most frequent
// first and ties by name.
func topDefects(docs []models.Checklist, limit int) []models.DefectCount {
	counts := map[string]int{}
	for _, doc := range docs {
		for _, rec := range doc.Falhas {
			name := strings.TrimSpace(rec.Falha)
			if name == "" {
				continue
			}
			counts[name]++
		}
	}
	out := make([]models.DefectCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.DefectCount{Falha: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Falha < out[j].Falha
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// monthProduction prefers the monthly record and otherwise sums the daily
// records of the month.
func monthProduction(records []models.ProducaoRegistro, monthStart string) int {
	daily := 0
	for _, reg := range records {
		if reg.TipoRegistro == models.RegistroMensal && reg.DataRegistro == monthStart {
			return reg.QuantidadeMensal
		}
		if reg.TipoRegistro == models.RegistroDiario {
			daily += reg.QuantidadeDiaria
		}
	}
	return daily
}
