package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"woodline/internal/core/id"
	"woodline/internal/infrastructure/storage/postgres"
	"woodline/pkg/logger"
)

const maxAuditBodyBytes = 1 << 20

var auditActions = map[string]postgres.AuditAction{
	http.MethodPost:   postgres.AuditActionCreate,
	http.MethodPut:    postgres.AuditActionUpdate,
	http.MethodPatch:  postgres.AuditActionUpdate,
	http.MethodDelete: postgres.AuditActionDelete,
}

// Audit records successful mutating requests in the audit log. The
// request body is kept as the change payload; audit failures never fail
// the request.
func Audit(audit *postgres.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, mutating := auditActions[c.Request.Method]
		if !mutating {
			c.Next()
			return
		}

		limited := io.LimitReader(c.Request.Body, maxAuditBodyBytes)
		body, _ := io.ReadAll(limited)
		c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		route := c.FullPath()
		if route == "" {
			return
		}
		switch {
		case strings.HasSuffix(route, "/complete"):
			action = postgres.AuditActionComplete
		case strings.HasSuffix(route, "/cancel"):
			action = postgres.AuditActionCancel
		case strings.HasSuffix(route, "/apply"):
			action = postgres.AuditActionApply
		}

		entityID := id.Nil()
		if raw := c.Param("id"); raw != "" {
			if parsed, err := id.Parse(raw); err == nil {
				entityID = parsed
			}
		}

		changes := json.RawMessage(body)
		if !json.Valid(body) {
			changes = nil
		}

		entry := postgres.AuditEntry{
			EntityType: entityTypeFromRoute(route),
			EntityID:   entityID,
			Action:     action,
			Changes:    changes,
		}
		if err := audit.Log(c.Request.Context(), entry); err != nil {
			logger.Warn(c.Request.Context(), "audit log failed", "route", route, "error", err)
		}
	}
}

// entityTypeFromRoute derives the audited entity from the route path,
// e.g. /api/v1/catalog/products/:id -> catalog/products.
func entityTypeFromRoute(route string) string {
	route = strings.TrimPrefix(route, "/api/v1/")
	parts := strings.Split(route, "/")

	kept := parts[:0]
	for _, p := range parts {
		switch {
		case p == "", strings.HasPrefix(p, ":"), strings.HasPrefix(p, "*"):
		case p == "complete", p == "cancel", p == "apply", p == "start":
		default:
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
