package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/internal/service"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
	"github.com/noah-isme/qc-checklist/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticValidator map[string]*models.JWTClaims

func (v staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func claimsFor(username string, role models.UserRole) *models.JWTClaims {
	c := &models.JWTClaims{Role: role}
	c.Subject = username
	return c
}

var tokens = staticValidator{
	"prod-token":  claimsFor("joao", models.RoleProducao),
	"assis-token": claimsFor("ana", models.RoleAssistencia),
	"admin-token": claimsFor("root", models.RoleAdmin),
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func protectedRouter(roles access.RoleSet) *gin.Engine {
	r := gin.New()
	r.GET("/x", JWT(tokens), RequireRoles(roles), func(c *gin.Context) {
		claims, _ := Claims(c)
		c.String(http.StatusOK, claims.Subject)
	})
	return r
}

func TestJWTAndRequireRoles(t *testing.T) {
	r := protectedRouter(access.AssistanceRoles)

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"role denied", "Bearer prod-token", http.StatusForbidden, "FORBIDDEN"},
		{"assistencia allowed", "Bearer assis-token", http.StatusOK, ""},
		{"admin allowed", "bearer admin-token", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.code != "" {
				assert.Equal(t, tc.code, decodeError(t, rec).Code)
			}
		})
	}
}

func TestRateLimitByIP(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/token", RateLimitByIP(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/token", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	blocked := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, blocked).Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
}

type captureRecorder struct {
	meta    []service.AuditMeta
	actions []string
}

func (c *captureRecorder) Record(ctx context.Context, meta service.AuditMeta, action, resource, resourceID string, newValues interface{}) {
	c.meta = append(c.meta, meta)
	c.actions = append(c.actions, action)
}

func TestAuditRecordsOnlySuccess(t *testing.T) {
	rec := &captureRecorder{}
	r := gin.New()
	r.GET("/ok", JWT(tokens), Audit(rec, models.AuditActionChecklistExport, "checklists"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", JWT(tokens), Audit(rec, models.AuditActionChecklistExport, "checklists"), func(c *gin.Context) {
		response.Error(c, errors.New("boom"))
	})

	for _, path := range []string{"/ok", "/fail"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		req.Header.Set("User-Agent", "checklistctl")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, rec.actions, 1)
	assert.Equal(t, "root", rec.meta[0].Actor)
	assert.Equal(t, "checklistctl", rec.meta[0].UserAgent)
}

func TestResponseMetaHeaders(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/x", func(c *gin.Context) {
		SetCacheHit(c, true)
		response.JSON(c, http.StatusOK, gin.H{"ok": true}, ExtractMeta(c))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "HIT", rec.Header().Get(response.HeaderCache))
	assert.NotEmpty(t, rec.Header().Get(response.HeaderProcessingTime))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/checklists/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/checklists/abc", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `path="/checklists/:id"`)
}

type recordedRequest struct {
	method, path string
	status       int
}

type observerFunc func(method, path string, status int, duration time.Duration)

func (f observerFunc) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	f(method, path, status, duration)
}

func TestMetricsMiddlewareSkipsScrapesAndCollapsesUnmatched(t *testing.T) {
	var seen []recordedRequest
	r := gin.New()
	r.Use(Metrics(observerFunc(func(method, path string, status int, _ time.Duration) {
		seen = append(seen, recordedRequest{method, path, status})
	})))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PATCH("/api/checklists/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodGet, "/metrics", nil),
		httptest.NewRequest(http.MethodPatch, "/api/checklists/doc-1", nil),
		httptest.NewRequest(http.MethodGet, "/api/checklists/doc-1/falhas", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []recordedRequest{
		{http.MethodPatch, "/api/checklists/:id", http.StatusNoContent},
		{http.MethodGet, unmatchedRoute, http.StatusNotFound},
	}, seen)
}
