package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

// ExpiredMessage is handed to the expiry handler.
const ExpiredMessage = "session expired, please log in again"

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.TokenResponse, error)
}

// ExpiryHandler observes forced logouts.
type ExpiryHandler func(message string)

// SessionManager owns the authenticated identity. At most one session exists;
// every login replaces it. Safe for concurrent use.
type SessionManager struct {
	store  Store
	auth   Authenticator
	logger *zap.Logger

	mu       sync.RWMutex
	session  *models.Session
	onExpiry ExpiryHandler
}

// NewSessionManager builds an anonymous manager. Call RestoreSession once at
// startup to pick up a persisted session.
func NewSessionManager(store Store, auth Authenticator, logger *zap.Logger) *SessionManager {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{store: store, auth: auth, logger: logger}
}

// Login authenticates and persists the new session. Bad credentials yield
// ErrInvalidCredentials and leave the current state untouched.
func (m *SessionManager) Login(ctx context.Context, username, password string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, appErrors.Validation("username and password are required")
	}
	if m.auth == nil {
		return nil, errors.New("session manager has no authenticator")
	}

	res, err := m.auth.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidCredentials) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if res == nil || res.AccessToken == "" {
		return nil, appErrors.Clone(appErrors.ErrServer, "the server returned no access token")
	}
	if !res.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrServer, fmt.Sprintf("the server returned an unknown role %q", res.Role))
	}

	canonical := subjectOf(res.AccessToken)
	if canonical == "" {
		canonical = username
	}
	session := &models.Session{
		Token:    res.AccessToken,
		Username: canonical,
		Role:     res.Role,
		Name:     strings.TrimSpace(res.Name),
	}
	if err := m.persist(session); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	m.logger.Info("logged in", zap.String("username", session.Username), zap.String("role", string(session.Role)))
	return copySession(session), nil
}

// Logout clears storage and memory. Calling it while anonymous is a no-op.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	m.clearStore()
}

// RestoreSession rebuilds the session from storage. Token, username and role
// must all be present and the role must be known; anything else leaves the
// manager anonymous. It reports whether a session was restored.
func (m *SessionManager) RestoreSession() bool {
	token, _ := m.store.Get(KeyAccessToken)
	username, _ := m.store.Get(KeyUsername)
	role, _ := m.store.Get(KeyUserRole)
	name, _ := m.store.Get(KeyUserName)

	if token == "" || username == "" || role == "" || !models.UserRole(role).Valid() {
		m.mu.Lock()
		m.session = nil
		m.mu.Unlock()
		return false
	}

	m.mu.Lock()
	m.session = &models.Session{Token: token, Username: username, Role: models.UserRole(role), Name: name}
	m.mu.Unlock()
	return true
}

// OnSessionExpired registers the expiry handler, replacing any previous one.
// Passing nil removes it.
func (m *SessionManager) OnSessionExpired(handler ExpiryHandler) {
	m.mu.Lock()
	m.onExpiry = handler
	m.mu.Unlock()
}

// HandleUnauthorized forces the anonymous state and notifies the handler.
// It runs once per observed 401, so concurrent failures may notify more than
// once; clearing an already cleared session is a no-op.
func (m *SessionManager) HandleUnauthorized() {
	m.mu.Lock()
	had := m.session != nil
	m.session = nil
	handler := m.onExpiry
	m.mu.Unlock()

	m.clearStore()
	if had {
		m.logger.Warn("session expired")
	}
	if handler != nil {
		handler(ExpiredMessage)
	}
}

// Current returns a copy of the session, or nil when anonymous.
func (m *SessionManager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySession(m.session)
}

// Token returns the bearer token, empty when anonymous.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

func (m *SessionManager) persist(s *models.Session) error {
	pairs := [][2]string{
		{KeyAccessToken, s.Token},
		{KeyUsername, s.Username},
		{KeyUserRole, string(s.Role)},
	}
	for _, kv := range pairs {
		if err := m.store.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	if s.Name == "" {
		if err := m.store.Delete(KeyUserName); err != nil && !errors.Is(err, ErrKeyNotFound) {
			return fmt.Errorf("persist session: %w", err)
		}
		return nil
	}
	if err := m.store.Set(KeyUserName, s.Name); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (m *SessionManager) clearStore() {
	for _, key := range sessionKeys {
		if err := m.store.Delete(key); err != nil && !errors.Is(err, ErrKeyNotFound) {
			m.logger.Warn("failed to clear session key", zap.String("key", key), zap.Error(err))
		}
	}
}

// subjectOf reads the sub claim without verifying the signature; the server
// is the one that validates tokens.
func subjectOf(token string) string {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	return strings.TrimSpace(claims.Subject)
}

func copySession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
