package handlers

import (
	"net/http"
	"time"

	"companionhub/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Monitor *utils.HealthMonitor
	Started time.Time
}

func NewHealthHandler(monitor *utils.HealthMonitor) *HealthHandler {
	return &HealthHandler{Monitor: monitor, Started: time.Now()}
}

// Welcome handles GET /.
func (h *HealthHandler) Welcome(c *gin.Context) {
	utils.RespondOK(c, http.StatusOK, "Welcome to the CompanionHub API", gin.H{"version": "1.0.0"})
}

// Health handles GET /health with the latest dependency snapshot.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Monitor.Status()
	if status.CheckedAt.IsZero() {
		status = h.Monitor.CheckNow(c.Request.Context())
	}
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"success": status.Healthy,
		"status":  status,
		"uptime":  time.Since(h.Started).Round(time.Second).String(),
	})
}
