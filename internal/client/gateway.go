package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

const (
	defaultGatewayTimeout = 15 * time.Second
	tokenPath             = "/token"
)

// GatewayConfig points the gateway at an API root such as
// http://localhost:8000/api.
type GatewayConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// tokenHolder is the part of the session the gateway needs.
type tokenHolder interface {
	Token() string
	HandleUnauthorized()
}

// Gateway speaks the checklist REST contract. Outbound requests carry the
// session bearer token; a 401 on a request that carried one tears the session
// down. Nothing is retried.
type Gateway struct {
	baseURL string
	http    *http.Client
	session tokenHolder
	logger  *zap.Logger
}

// NewGateway builds a gateway. Bind a session with UseSession before making
// authenticated calls.
func NewGateway(cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultGatewayTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Gateway{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// UseSession attaches the session whose token is sent and whose expiry is
// triggered by 401 responses.
func (g *Gateway) UseSession(s tokenHolder) {
	g.session = s
}

// Authenticate posts form-encoded credentials to /token.
func (g *Gateway) Authenticate(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out models.TokenResponse
	err := g.send(ctx, request{
		method:      http.MethodPost,
		path:        tokenPath,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateChecklist posts a new document.
func (g *Gateway) CreateChecklist(ctx context.Context, req dto.CreateChecklistRequest) (*models.Checklist, error) {
	var out models.Checklist
	if err := g.sendJSON(ctx, http.MethodPost, "/checklists/", nil, req, &out); err != nil {
		return nil, err
	}
	return normalized(&out)
}

// ListChecklists fetches one page of documents.
func (g *Gateway) ListChecklists(ctx context.Context, q dto.ListChecklistsQuery) (*models.ChecklistPage, error) {
	params := url.Values{}
	setIf(params, "status", q.Status)
	setIf(params, "search", q.Search)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var out models.ChecklistPage
	if err := g.sendJSON(ctx, http.MethodGet, "/checklists/", params, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []models.Checklist{}
	}
	for i := range out.Items {
		if err := out.Items[i].Normalize(); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// GetChecklist fetches one document with legacy fields projected.
func (g *Gateway) GetChecklist(ctx context.Context, id string) (*models.Checklist, error) {
	var out models.Checklist
	if err := g.sendJSON(ctx, http.MethodGet, "/checklists/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return normalized(&out)
}

// UpdateChecklist patches a document.
func (g *Gateway) UpdateChecklist(ctx context.Context, id string, req dto.UpdateChecklistRequest) (*models.Checklist, error) {
	var out models.Checklist
	if err := g.sendJSON(ctx, http.MethodPatch, "/checklists/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return normalized(&out)
}

// ExportChecklists downloads the history as csv or pdf and returns the bytes
// with the server-chosen filename.
func (g *Gateway) ExportChecklists(ctx context.Context, q dto.ExportChecklistsQuery) ([]byte, string, error) {
	params := url.Values{}
	setIf(params, "format", q.Format)
	setIf(params, "status", q.Status)
	setIf(params, "search", q.Search)

	var raw rawBody
	if err := g.send(ctx, request{method: http.MethodGet, path: "/checklists/export", query: params}, &raw); err != nil {
		return nil, "", err
	}
	return raw.data, filenameFrom(raw.header.Get("Content-Disposition")), nil
}

// ListUsers calls GET /users/ with the optional role and search filters.
func (g *Gateway) ListUsers(ctx context.Context, q dto.ListUsersQuery) ([]models.User, error) {
	params := url.Values{}
	setIf(params, "role", q.Role)
	setIf(params, "search", q.Search)
	out := []models.User{}
	if err := g.sendJSON(ctx, http.MethodGet, "/users/", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser calls POST /users/.
func (g *Gateway) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	var out models.User
	if err := g.sendJSON(ctx, http.MethodPost, "/users/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser calls PATCH /users/{id}; nil fields are left unchanged.
func (g *Gateway) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*models.User, error) {
	var out models.User
	if err := g.sendJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser calls DELETE /users/{id}.
func (g *Gateway) DeleteUser(ctx context.Context, id string) error {
	return g.sendJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}

// CreateProducao calls POST /producao/. A duplicate date maps to CONFLICT.
func (g *Gateway) CreateProducao(ctx context.Context, req dto.CreateProducaoRequest) (*models.ProducaoRegistro, error) {
	var out models.ProducaoRegistro
	if err := g.sendJSON(ctx, http.MethodPost, "/producao/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducao calls GET /producao/.
func (g *Gateway) ListProducao(ctx context.Context) ([]models.ProducaoRegistro, error) {
	out := []models.ProducaoRegistro{}
	if err := g.sendJSON(ctx, http.MethodGet, "/producao/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProducao calls DELETE /producao/{id}.
func (g *Gateway) DeleteProducao(ctx context.Context, id string) error {
	return g.sendJSON(ctx, http.MethodDelete, "/producao/"+url.PathEscape(id), nil, nil, nil)
}

// Analyze forwards a natural-language question to the analytics endpoint.
func (g *Gateway) Analyze(ctx context.Context, query string) (*models.AnalysisResponse, error) {
	var out models.AnalysisResponse
	if err := g.sendJSON(ctx, http.MethodPost, "/analyze", nil, models.AnalysisRequest{Query: query}, &out); err != nil {
		return nil, err
	}
	out.Fill()
	return &out, nil
}

// DashboardSummary fetches the home screen indicators.
func (g *Gateway) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	var out models.DashboardSummary
	if err := g.sendJSON(ctx, http.MethodGet, "/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	anonymous   bool
}

// rawBody receives undecoded payloads.
type rawBody struct {
	data   []byte
	header http.Header
}

func (g *Gateway) sendJSON(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	req := request{method: method, path: path, query: query}
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.body = bytes.NewReader(buf)
		req.contentType = "application/json"
	}
	return g.send(ctx, req, out)
}

func (g *Gateway) send(ctx context.Context, r request, out interface{}) error {
	target := g.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}

	var token string
	if !r.anonymous && g.session != nil {
		token = g.session.Token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return g.statusError(r, token != "", resp.StatusCode, body)
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *rawBody:
		dst.data = body
		dst.header = resp.Header
		return nil
	default:
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "the server sent an unreadable response")
		}
		return nil
	}
}

func (g *Gateway) statusError(r request, hadToken bool, status int, body []byte) error {
	detail := errorDetail(body)
	g.logger.Debug("api request failed",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", status),
		zap.String("detail", detail),
	)

	switch {
	case status == http.StatusUnauthorized && r.path == tokenPath:
		return appErrors.ErrInvalidCredentials
	case status == http.StatusUnauthorized && hadToken:
		if g.session != nil {
			g.session.HandleUnauthorized()
		}
		return appErrors.ErrSessionExpired
	case status == http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrUnauthorized, detail)
	case status == http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, detail)
	case status == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, detail)
	case status == http.StatusConflict, status == http.StatusBadRequest && mentionsExisting(detail):
		return appErrors.Clone(appErrors.ErrConflict, detail)
	default:
		e := appErrors.Clone(appErrors.ErrServer, detail)
		e.Status = status
		return e
	}
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
}

// errorDetail extracts the server message. detail may be a string or a list
// of field errors carrying msg.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func mentionsExisting(detail string) bool {
	lower := strings.ToLower(detail)
	return strings.Contains(lower, "already exists") || strings.Contains(lower, "já existe")
}

func filenameFrom(disposition string) string {
	const marker = "filename="
	idx := strings.Index(disposition, marker)
	if idx < 0 {
		return ""
	}
	name := strings.TrimSpace(disposition[idx+len(marker):])
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}
	return strings.Trim(name, `"`)
}

func setIf(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}

func normalized(doc *models.Checklist) (*models.Checklist, error) {
	if err := doc.Normalize(); err != nil {
		return nil, err
	}
	return doc, nil
}
