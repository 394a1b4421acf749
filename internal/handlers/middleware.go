package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mizuchi/internal/config"
)

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set("userId", userId)
	c.Next()
}

// allowedHostsMiddleware rejects requests whose Host header does not match
// the configured allowlist. Debug mode skips the check.
func (h *Handler) allowedHostsMiddleware(c *gin.Context) {
	if h.cfg.Debug {
		c.Next()
		return
	}
	if !config.HostAllowed(c.Request.Host, h.cfg.AllowedHosts) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "disallowed host",
		})
		return
	}
	c.Next()
}
