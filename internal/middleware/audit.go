package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-checklist/internal/service"
)

// AuditRecorder stores audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, meta service.AuditMeta, action, resource, resourceID string, newValues interface{})
}

// AuditMeta builds the audit details of the request: token subject, client
// address and user agent.
func AuditMeta(c *gin.Context) service.AuditMeta {
	meta := service.AuditMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims, ok := Claims(c); ok {
		meta.Actor = claims.Subject
	}
	return meta
}

// Audit records action on resource after every successful request. Used on
// reads such as exports.
func Audit(recorder AuditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}
		recorder.Record(c.Request.Context(), AuditMeta(c), action, resource, "", map[string]interface{}{
			"path":    c.FullPath(),
			"query":   c.Request.URL.RawQuery,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})
	}
}
