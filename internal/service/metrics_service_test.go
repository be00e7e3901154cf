package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-checklist/internal/models"
)

func TestMetricsServiceExposesDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/checklists/", http.StatusOK, 20*time.Millisecond)
	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordChecklistCreated(models.ChecklistStatusPendente)
	m.RecordChecklistCompleted()
	m.RecordAnalysis("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `qc_logins_total{result="failure"} 1`)
	assert.Contains(t, body, `qc_checklists_created_total{status="PENDENTE"} 1`)
	assert.Contains(t, body, `qc_checklists_completed_total 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/checklists/",status="200"} 1`)
	assert.EqualValues(t, 1, m.Snapshot().RequestsTotal)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordLogin(true)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	})
	assert.Equal(t, "ok", m.Snapshot().Status)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
