package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-checklist/internal/middleware"
	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

func auditMeta(c *gin.Context) service.AuditMeta {
	return middleware.AuditMeta(c)
}
