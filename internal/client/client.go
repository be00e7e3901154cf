package client

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/pkg/config"
)

// Client wires the session, gateway and domain components around one store.
type Client struct {
	Session   *SessionManager
	Gateway   *Gateway
	Documents *Controller
	Volume    *VolumeRegister
	Users     *UserAdmin
	Insights  *Insights

	store *BadgerStore
}

// New opens the session store under cfg.SessionDir (in memory when empty),
// restores any persisted session and wires the components.
func New(cfg config.ClientConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := OpenBadgerStore(cfg.SessionDir)
	if err != nil {
		return nil, err
	}
	c := Assemble(cfg, store, logger)
	c.store = store
	return c, nil
}

// Assemble wires the components over an existing store without restoring
// anything beyond what the store holds.
func Assemble(cfg config.ClientConfig, store Store, logger *zap.Logger) *Client {
	gw := NewGateway(GatewayConfig{BaseURL: cfg.BaseURL(), Timeout: cfg.Timeout}, logger)
	session := NewSessionManager(store, gw, logger)
	gw.UseSession(session)
	session.RestoreSession()

	return &Client{
		Session:   session,
		Gateway:   gw,
		Documents: NewController(gw, session, logger),
		Volume:    NewVolumeRegister(gw, session),
		Users:     NewUserAdmin(gw, session, validator.New()),
		Insights:  NewInsights(gw, session),
	}
}

// Close releases the session store.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
