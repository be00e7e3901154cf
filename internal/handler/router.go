package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/middleware"
	"github.com/noah-isme/qc-checklist/internal/models"
)

// Handlers groups every endpoint handler mounted under the API prefix.
type Handlers struct {
	Auth      *AuthHandler
	Checklist *ChecklistHandler
	User      *UserHandler
	Producao  *ProducaoHandler
	Dashboard *DashboardHandler
	Analysis  *AnalysisHandler
	Metrics   *MetricsHandler
}

// RouteDeps carries the cross-cutting pieces routes need.
type RouteDeps struct {
	Tokens       middleware.TokenValidator
	Audit        middleware.AuditRecorder
	LoginLimiter *middleware.RateLimiter
}

// Register mounts the API routes on r under prefix. /health and /metrics
// stay at the root.
func Register(r *gin.Engine, prefix string, h Handlers, deps RouteDeps) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/token", middleware.RateLimitByIP(deps.LoginLimiter), h.Auth.Token)

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.Tokens))
	authed.GET("/me", h.Auth.Me)

	assistance := middleware.RequireRoles(access.AssistanceRoles)
	admin := middleware.RequireRoles(access.AdminOnly)

	checklists := authed.Group("/checklists")
	checklists.POST("/", h.Checklist.Create)
	checklists.GET("/", h.Checklist.List)
	checklists.GET("/export", middleware.Audit(deps.Audit, models.AuditActionChecklistExport, "checklists"), h.Checklist.Export)
	checklists.GET("/:id", h.Checklist.Get)
	checklists.PATCH("/:id", assistance, h.Checklist.Update)

	users := authed.Group("/users", admin)
	users.GET("/", h.User.List)
	users.POST("/", h.User.Create)
	users.PATCH("/:id", h.User.Update)
	users.DELETE("/:id", h.User.Delete)

	producao := authed.Group("/producao")
	producao.GET("/", h.Producao.List)
	producao.POST("/", admin, h.Producao.Create)
	producao.DELETE("/:id", admin, h.Producao.Delete)

	authed.GET("/dashboard", h.Dashboard.Summary)
	authed.POST("/analyze", assistance, h.Analysis.Analyze)
}
