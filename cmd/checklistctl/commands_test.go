package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-checklist/internal/client"
	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/pkg/config"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

func testApp(t *testing.T, handler http.Handler, role models.UserRole) (*app, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := client.NewMemoryStore()
	if role != "" {
		require.NoError(t, store.Set(client.KeyAccessToken, "token"))
		require.NoError(t, store.Set(client.KeyUsername, "joao"))
		require.NoError(t, store.Set(client.KeyUserRole, string(role)))
	}
	out := &bytes.Buffer{}
	return &app{
		client: client.Assemble(config.ClientConfig{APIURL: srv.URL}, store, nil),
		out:    out,
		errOut: &bytes.Buffer{},
	}, out
}

func TestParseFailure(t *testing.T) {
	d, err := parseFailure("Solda fria|SMT|R12|top|ponto 3")
	require.NoError(t, err)
	assert.Equal(t, client.FailureDraft{Falha: "Solda fria", Setor: "SMT", LocalizacaoComponente: "R12", LadoPlaca: "top", Observacao: "ponto 3"}, d)

	d, err = parseFailure("Curto|PTH")
	require.NoError(t, err)
	assert.Equal(t, "PTH", d.Setor)
	assert.Empty(t, d.LadoPlaca)

	_, err = parseFailure("Curto")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestNavigationGuard(t *testing.T) {
	var hits int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("[]"))
	})

	a, _ := testApp(t, handler, models.RoleProducao)
	root := newRootCmd(a)
	root.SetArgs([]string{"users", "list"})
	err := root.Execute()
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, "role producao cannot open gerenciar-usuarios (allowed: admin)", appErrors.FromError(err).Message)

	root = newRootCmd(a)
	root.SetArgs([]string{"analyze", "quais falhas?"})
	assert.ErrorIs(t, root.Execute(), appErrors.ErrForbidden)
	assert.Zero(t, atomic.LoadInt32(&hits))

	anon, _ := testApp(t, handler, "")
	root = newRootCmd(anon)
	root.SetArgs([]string{"dashboard"})
	assert.ErrorIs(t, root.Execute(), appErrors.ErrUnauthorized)
}

func TestWhoamiListsScreens(t *testing.T) {
	a, out := testApp(t, http.NotFoundHandler(), models.RoleAssistencia)
	root := newRootCmd(a)
	root.SetArgs([]string{"whoami"})
	require.NoError(t, root.Execute())

	var payload struct {
		Username string   `json:"username"`
		Screens  []string `json:"screens"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, "joao", payload.Username)
	assert.Contains(t, payload.Screens, "assistencia")
	assert.NotContains(t, payload.Screens, "gerenciar-usuarios")
}

func TestChecklistCreateRouted(t *testing.T) {
	var received map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/checklists/", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"documento_id": "doc-1", "produto": "Placa A", "quantidade": 5, "status": "PENDENTE", "falhas": []interface{}{},
		})
	})
	a, out := testApp(t, mux, models.RoleProducao)

	root := newRootCmd(a)
	root.SetArgs([]string{"checklist", "create", "--produto", "Placa A", "--quantidade", "5", "--route"})
	require.NoError(t, root.Execute())

	assert.Equal(t, true, received["vai_para_assistencia"])
	assert.Equal(t, "joao", received["responsavel"])
	assert.Contains(t, out.String(), `"status": "PENDENTE"`)

	root = newRootCmd(a)
	root.SetArgs([]string{"checklist", "create", "--produto", "Placa A", "--quantidade", "5"})
	assert.ErrorIs(t, root.Execute(), appErrors.ErrValidation)
}

func TestRemoveFailuresIgnoresOrderAndRepeats(t *testing.T) {
	agg := client.NewAggregator()
	agg.Seed(models.FailureList{
		{Falha: "Curto", Setor: "SMT"},
		{Falha: "Risco", Setor: "Inspecao"},
		{Falha: "Solda fria", Setor: "PTH"},
	})

	removeFailures(agg, []int{2, 0, 2, 7})

	items := agg.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Risco", items[0].Falha)
}
