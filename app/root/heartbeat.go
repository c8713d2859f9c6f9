// Package root holds endpoints that don't belong to a resource
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers load balancer and uptime probes. Responses must never be
// cached by a proxy.
func Heartbeat(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
}
