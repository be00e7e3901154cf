package client

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

type documentGateway interface {
	CreateChecklist(ctx context.Context, req dto.CreateChecklistRequest) (*models.Checklist, error)
	ListChecklists(ctx context.Context, q dto.ListChecklistsQuery) (*models.ChecklistPage, error)
	GetChecklist(ctx context.Context, id string) (*models.Checklist, error)
	UpdateChecklist(ctx context.Context, id string, req dto.UpdateChecklistRequest) (*models.Checklist, error)
}

type sessionSource interface {
	Current() *models.Session
}

var (
	errLoginRequired    = appErrors.Clone(appErrors.ErrUnauthorized, "log in first")
	errAssistanceOnly   = appErrors.Clone(appErrors.ErrForbidden, "only assistance or admin users can complete checklists")
	errProdutoRequired  = appErrors.Validation("produto is required")
	errQuantidade       = appErrors.Validation("quantidade must be greater than zero")
	errEditorNotOpen    = appErrors.Validation("the assistance editor is not open")
	errUnknownStatus    = appErrors.Validation("status must be PENDENTE or COMPLETO")
	errDocumentRequired = appErrors.Validation("documento_id is required")
)

// CreateInput is what the production form submits. Quantidade and the
// production remark travel in the draft's shared fields.
type CreateInput struct {
	Produto  string
	Failures *Aggregator
	Draft    FailureDraft
}

// AssistanceEdits are the changes an assistance user submits. An empty Status
// means COMPLETO; PENDENTE saves progress without finishing.
type AssistanceEdits struct {
	Status                models.ChecklistStatus
	Quantidade            *int
	ObservacaoAssistencia string
	Draft                 FailureDraft
}

// Controller owns document state transitions on the client. All validation
// runs before the gateway is called.
type Controller struct {
	gw       documentGateway
	sessions sessionSource
	logger   *zap.Logger

	mu     sync.Mutex
	editor *AssistanceEditor
}

// NewController builds a Controller.
func NewController(gw documentGateway, sessions sessionSource, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{gw: gw, sessions: sessions, logger: logger}
}

// CreateDocument submits a new checklist. A routed document is sent without
// failures and the server keeps it PENDENTE; otherwise at least one failure
// must resolve from the list or the draft and the document is COMPLETO.
func (c *Controller) CreateDocument(ctx context.Context, input CreateInput, routeToAssistance bool) (*models.Checklist, error) {
	session := c.sessions.Current()
	if session == nil {
		return nil, errLoginRequired
	}
	produto := strings.TrimSpace(input.Produto)
	if produto == "" {
		return nil, errProdutoRequired
	}
	if input.Draft.Quantidade <= 0 {
		return nil, errQuantidade
	}

	falhas := models.FailureList{}
	if !routeToAssistance {
		agg := input.Failures
		if agg == nil {
			agg = NewAggregator()
		}
		resolved, err := agg.ResolveForSubmit(input.Draft)
		if err != nil {
			return nil, err
		}
		falhas = resolved
	}

	req := dto.CreateChecklistRequest{
		Produto:            produto,
		Quantidade:         input.Draft.Quantidade,
		VaiParaAssistencia: routeToAssistance,
		Responsavel:        session.Username,
		Falhas:             falhas,
		ObservacaoProducao: models.OptionalString(input.Draft.ObservacaoGeral),
	}
	doc, err := c.gw.CreateChecklist(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Info("checklist created",
		zap.String("documento_id", doc.DocumentoID),
		zap.String("status", string(doc.Status)),
		zap.Int("falhas", len(doc.Falhas)),
	)
	return doc, nil
}

// OpenAssistance loads a document for completion and seeds an aggregator with
// its failures. Only one editor may be open at a time.
func (c *Controller) OpenAssistance(ctx context.Context, documentID string) (*AssistanceEditor, error) {
	session, err := c.requireAssistance()
	if err != nil {
		return nil, err
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, errDocumentRequired
	}

	c.mu.Lock()
	c.releaseStaleLocked(session)
	if c.editor != nil {
		c.mu.Unlock()
		return nil, appErrors.ErrEditorOpen
	}
	c.mu.Unlock()

	doc, err := c.gw.GetChecklist(ctx, documentID)
	if err != nil {
		return nil, err
	}

	agg := NewAggregator()
	agg.Seed(doc.Falhas)
	editor := &AssistanceEditor{doc: doc, Failures: agg, owner: c, token: session.Token}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseStaleLocked(session)
	if c.editor != nil {
		return nil, appErrors.ErrEditorOpen
	}
	c.editor = editor
	return editor, nil
}

// CompleteAssistance submits the editor's merged failure list. The list must
// not be empty, the same rule as creation. Legacy general remarks are carried
// into observacao_producao. The editor closes on success and stays open on
// failure so the user can fix and resubmit.
func (c *Controller) CompleteAssistance(ctx context.Context, editor *AssistanceEditor, edits AssistanceEdits) (*models.Checklist, error) {
	session, err := c.requireAssistance()
	if err != nil {
		return nil, err
	}
	if editor == nil || !c.isOpen(editor, session) {
		return nil, errEditorNotOpen
	}

	merged, err := editor.Failures.ResolveForSubmit(edits.Draft)
	if err != nil {
		return nil, err
	}
	if edits.Quantidade != nil && *edits.Quantidade <= 0 {
		return nil, errQuantidade
	}
	status := edits.Status
	if status == "" {
		status = models.ChecklistStatusCompleto
	}
	if !status.Valid() {
		return nil, errUnknownStatus
	}
	encoded, err := models.EncodeFailures(merged)
	if err != nil {
		return nil, err
	}

	responsavel := session.Username
	req := dto.UpdateChecklistRequest{
		Quantidade:             edits.Quantidade,
		Status:                 &status,
		ObservacaoAssistencia:  models.OptionalString(edits.ObservacaoAssistencia),
		ResponsavelAssistencia: &responsavel,
		FalhasJSON:             &encoded,
	}
	if editor.doc.NeedsRemarkCopyForward() {
		remark := editor.doc.ProductionRemark()
		req.ObservacaoProducao = &remark
	}

	doc, err := c.gw.UpdateChecklist(ctx, editor.doc.DocumentoID, req)
	if err != nil {
		return nil, err
	}
	editor.Close()
	c.logger.Info("assistance submitted",
		zap.String("documento_id", doc.DocumentoID),
		zap.String("status", string(doc.Status)),
	)
	return doc, nil
}

// ListDocuments fetches a page of documents. It refuses while an assistance
// editor is open so the list never shows a document being edited here.
func (c *Controller) ListDocuments(ctx context.Context, q dto.ListChecklistsQuery) (*models.ChecklistPage, error) {
	session := c.sessions.Current()
	if session == nil {
		c.mu.Lock()
		c.releaseStaleLocked(nil)
		c.mu.Unlock()
		return nil, errLoginRequired
	}
	c.mu.Lock()
	c.releaseStaleLocked(session)
	open := c.editor != nil
	c.mu.Unlock()
	if open {
		return nil, appErrors.ErrEditorOpen
	}
	return c.gw.ListChecklists(ctx, q)
}

// GetDocument fetches one document.
func (c *Controller) GetDocument(ctx context.Context, id string) (*models.Checklist, error) {
	if c.sessions.Current() == nil {
		return nil, errLoginRequired
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errDocumentRequired
	}
	return c.gw.GetChecklist(ctx, id)
}

// EditorOpen reports whether an assistance editor is open for the current
// session. An editor opened under an expired or replaced session is released.
func (c *Controller) EditorOpen() bool {
	session := c.sessions.Current()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseStaleLocked(session)
	return c.editor != nil
}

func (c *Controller) isOpen(e *AssistanceEditor, session *models.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseStaleLocked(session)
	return c.editor == e
}

// releaseStaleLocked drops an editor bound to a session other than the given
// one. Callers hold c.mu.
func (c *Controller) releaseStaleLocked(session *models.Session) {
	if c.editor == nil {
		return
	}
	if session == nil || session.Token != c.editor.token {
		c.logger.Debug("assistance editor released after session change",
			zap.String("documento_id", c.editor.doc.DocumentoID))
		c.editor = nil
	}
}

// requireAssistance returns the session snapshot the caller must use for the
// rest of the operation.
func (c *Controller) requireAssistance() (*models.Session, error) {
	session := c.sessions.Current()
	if session == nil {
		return nil, errLoginRequired
	}
	if !access.CanAccess(session, access.AssistanceRoles) {
		return nil, errAssistanceOnly
	}
	return session, nil
}

// AssistanceEditor is an open completion session for one document. It is
// bound to the session token it was opened under.
type AssistanceEditor struct {
	doc      *models.Checklist
	Failures *Aggregator
	owner    *Controller
	token    string
}

// Document returns the document as loaded.
func (e *AssistanceEditor) Document() models.Checklist {
	doc := *e.doc
	doc.Falhas = e.doc.Falhas.Clone()
	return doc
}

// Close releases the editor. Closing twice is harmless.
func (e *AssistanceEditor) Close() {
	if e == nil || e.owner == nil {
		return
	}
	e.owner.mu.Lock()
	if e.owner.editor == e {
		e.owner.editor = nil
	}
	e.owner.mu.Unlock()
}
