package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditMeta carries request details recorded with audit entries.
type AuditMeta struct {
	Actor     string
	IP        string
	UserAgent string
}

// AuditService writes the audit trail. Entries go through a background queue
// when one is attached and are written inline otherwise. Failures are logged
// and never surface to the caller.
type AuditService struct {
	repo   auditRepository
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAuditService constructs an AuditService writing inline.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// WithQueue makes writes asynchronous through q. The caller owns q's
// lifecycle.
func (s *AuditService) WithQueue(q *jobs.Queue[*models.AuditLog]) *AuditService {
	s.queue = q
	return s
}

// Write stores one entry synchronously. It is the queue handler.
func (s *AuditService) Write(ctx context.Context, entry *models.AuditLog) error {
	return s.repo.Create(ctx, entry)
}

// Record stores an audit entry for action on resource. newValues is encoded
// as JSON when not nil.
func (s *AuditService) Record(ctx context.Context, meta AuditMeta, action, resource, resourceID string, newValues interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if meta.Actor != "" {
		actor := meta.Actor
		entry.Actor = &actor
	}
	if resourceID != "" {
		id := resourceID
		entry.ResourceID = &id
	}
	if newValues != nil {
		payload, err := json.Marshal(newValues)
		if err != nil {
			s.logger.Warn("failed to encode audit payload", zap.String("action", action), zap.Error(err))
		} else {
			entry.NewValues = payload
		}
	}

	if s.queue != nil && s.queue.Running() {
		if err := s.queue.Enqueue(ctx, entry); err == nil {
			return
		}
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
