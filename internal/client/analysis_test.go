package client

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type fakeInsights struct {
	queries []string
}

func (f *fakeInsights) Analyze(_ context.Context, query string) (*models.AnalysisResponse, error) {
	f.queries = append(f.queries, query)
	return &models.AnalysisResponse{Summary: "ok", Tips: []string{}, VisualizationData: []models.ChartSpec{}}, nil
}

func (f *fakeInsights) DashboardSummary(context.Context) (*models.DashboardSummary, error) {
	return &models.DashboardSummary{PendingCount: 2}, nil
}

func TestInsightsAnalyze(t *testing.T) {
	gw := &fakeInsights{}

	_, err := NewInsights(gw, sessionAs(models.RoleProducao)).Analyze(context.Background(), "top defeitos")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	in := NewInsights(gw, sessionAs(models.RoleAssistencia))
	_, err = in.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = in.Analyze(context.Background(), strings.Repeat("a", maxQueryLength+1))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, gw.queries)

	res, err := in.Analyze(context.Background(), " top defeitos ")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Summary)
	assert.Equal(t, []string{"top defeitos"}, gw.queries)
}

func TestInsightsDashboardNeedsSession(t *testing.T) {
	gw := &fakeInsights{}
	_, err := NewInsights(gw, &staticSession{}).Dashboard(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	sum, err := NewInsights(gw, sessionAs(models.RoleProducao)).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.PendingCount)
}
