package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

// ErrorBody is the error contract understood by API clients.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// Meta headers carry response metadata without altering the body contract.
const (
	HeaderCache          = "X-Cache"
	HeaderProcessingTime = "X-Processing-Time-Ms"
)

// JSON sends a success response. Bodies are returned as-is; optional
// metadata is exposed as headers.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if len(meta) > 0 && meta[0] != nil {
		applyMeta(c, meta[0])
	}
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorBody{Detail: appErr.Message, Code: appErr.Code})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func applyMeta(c *gin.Context, meta map[string]interface{}) {
	if hit, ok := meta["cache_hit"].(bool); ok {
		if hit {
			c.Header(HeaderCache, "HIT")
		} else {
			c.Header(HeaderCache, "MISS")
		}
	}
	if ms, ok := meta["processing_time_ms"]; ok {
		c.Header(HeaderProcessingTime, fmt.Sprint(ms))
	}
}
