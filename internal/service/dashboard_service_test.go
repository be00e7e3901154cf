package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string][]byte{}
	return nil
}

type staticChecklistSource struct {
	docs    []models.Checklist
	pending int
	calls   int32
}

func (s *staticChecklistSource) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Checklist, error) {
	atomic.AddInt32(&s.calls, 1)
	var out []models.Checklist
	for _, d := range s.docs {
		if !d.DataCriacao.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *staticChecklistSource) CountByStatus(ctx context.Context, status models.ChecklistStatus) (int, error) {
	return s.pending, nil
}

func docAt(ts time.Time, falhas ...string) models.Checklist {
	list := models.FailureList{}
	for _, f := range falhas {
		list = append(list, models.FailureRecord{Falha: f, Setor: "SMT"})
	}
	return models.Checklist{DataCriacao: ts, Falhas: list, Status: models.ChecklistStatusCompleto}
}

// Wednesday 2026-03-04.
var dashboardNow = time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)

func newDashboardFixture(cache *CacheService) (*DashboardService, *staticChecklistSource) {
	source := &staticChecklistSource{
		pending: 2,
		docs: []models.Checklist{
			docAt(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), "Curto"),
			docAt(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), "Curto", "Solda fria"),
			docAt(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), "Componente ausente"),
			docAt(time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC), "Solda fria", "Curto"),
			docAt(time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC), "Antigo", "Antigo", "Antigo"),
		},
	}
	producao := &memoryProducaoRepo{records: []models.ProducaoRegistro{
		{DataRegistro: "2026-03-02", TipoRegistro: models.RegistroDiario, QuantidadeDiaria: 100},
		{DataRegistro: "2026-03-03", TipoRegistro: models.RegistroDiario, QuantidadeDiaria: 150},
		{DataRegistro: "2026-02-27", TipoRegistro: models.RegistroDiario, QuantidadeDiaria: 999},
	}}
	svc := NewDashboardService(source, producao, cache, zap.NewNop(), DashboardServiceConfig{Location: time.UTC})
	svc.now = func() time.Time { return dashboardNow }
	return svc, source
}

func TestDashboardSummary(t *testing.T) {
	svc, _ := newDashboardFixture(nil)

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	assert.Equal(t, 2, summary.ChecklistsToday)
	assert.Equal(t, 2, summary.PendingCount)
	require.Len(t, summary.WeeklyChecklists, 5)
	assert.Equal(t, models.DayCount{Date: "2026-03-02", Label: "Seg", Count: 1}, summary.WeeklyChecklists[0])
	assert.Equal(t, 0, summary.WeeklyChecklists[1].Count)
	assert.Equal(t, 2, summary.WeeklyChecklists[2].Count)
	assert.Equal(t, "Sex", summary.WeeklyChecklists[4].Label)

	require.Len(t, summary.TopDefects, 3)
	assert.Equal(t, models.DefectCount{Falha: "Curto", Count: 3}, summary.TopDefects[0])
	assert.Equal(t, models.DefectCount{Falha: "Solda fria", Count: 2}, summary.TopDefects[1])
	assert.Equal(t, 250, summary.MonthProduction)
}

func TestDashboardMonthlyRecordWins(t *testing.T) {
	records := []models.ProducaoRegistro{
		{DataRegistro: "2026-03-01", TipoRegistro: models.RegistroMensal, QuantidadeMensal: 4000},
		{DataRegistro: "2026-03-02", TipoRegistro: models.RegistroDiario, QuantidadeDiaria: 100},
	}
	assert.Equal(t, 4000, monthProduction(records, "2026-03-01"))
	assert.Equal(t, 100, monthProduction(records[1:], "2026-03-01"))
}

func TestDashboardUsesCache(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	svc, source := newDashboardFixture(cache)

	_, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, summary.ChecklistsToday)
	assert.EqualValues(t, 1, atomic.LoadInt32(&source.calls))

	cache.Invalidate(context.Background(), dashboardCachePattern)
	_, hit, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestTopDefectsLimit(t *testing.T) {
	docs := []models.Checklist{docAt(dashboardNow, "a", "b", "c", "d", "e", "f", "f")}
	top := topDefects(docs, 5)
	require.Len(t, top, 5)
	assert.Equal(t, "f", top[0].Falha)
	assert.Equal(t, "a", top[1].Falha)
}
