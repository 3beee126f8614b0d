package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TenantHeader scopes every request to one customer organization.
const TenantHeader = "x-tenant-id"

// TenantAuth rejects requests whose tenant header does not match the tenant
// this monitor instance serves. An empty expected tenant disables the check
// (single-tenant deployments behind their own gateway).
func TenantAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}
		got := c.GetHeader(TenantHeader)
		if got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"code": "MISSING_TENANT", "message": "missing " + TenantHeader + " header"},
			})
			return
		}
		if got != expected {
			c.AbortWithStatusJSON(http.StatusForbidden, map[string]any{
				"error": map[string]any{"code": "TENANT_MISMATCH", "message": "tenant not served by this instance"},
			})
			return
		}
		c.Next()
	}
}
