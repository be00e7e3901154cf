package client

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

const maxQueryLength = 1000

type insightGateway interface {
	Analyze(ctx context.Context, query string) (*models.AnalysisResponse, error)
	DashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
}

var errAnalysisRoles = appErrors.Clone(appErrors.ErrForbidden, "only assistance or admin users can run analyses")

// Insights exposes the dashboard and the natural-language analysis.
type Insights struct {
	gw       insightGateway
	sessions sessionSource
}

// NewInsights builds the analysis and dashboard client.
func NewInsights(gw insightGateway, sessions sessionSource) *Insights {
	return &Insights{gw: gw, sessions: sessions}
}

// Analyze asks a question about recent defects.
func (i *Insights) Analyze(ctx context.Context, query string) (*models.AnalysisResponse, error) {
	session := i.sessions.Current()
	if session == nil {
		return nil, errLoginRequired
	}
	if !access.CanAccess(session, access.AssistanceRoles) {
		return nil, errAnalysisRoles
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErrors.Validation("query is required")
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return nil, appErrors.Validation("query is too long")
	}
	return i.gw.Analyze(ctx, query)
}

// Dashboard fetches the home screen indicators.
func (i *Insights) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	if i.sessions.Current() == nil {
		return nil, errLoginRequired
	}
	return i.gw.DashboardSummary(ctx)
}
