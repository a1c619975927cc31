package handler

import (
	"net/http"
	"time"

	"sygil/config"
	"sygil/internal/service"

	"github.com/gin-gonic/gin"
)

// SweepHandler exposes the maintenance sweep to a cron caller. The trigger is
// protected by a shared token so it can run without a logged-in admin.
type SweepHandler struct {
	sweepSvc *service.SweepService
	cfg      *config.AdminConfig
}

func NewSweepHandler(sweepSvc *service.SweepService, cfg *config.AdminConfig) *SweepHandler {
	return &SweepHandler{sweepSvc: sweepSvc, cfg: cfg}
}

func (h *SweepHandler) Trigger(c *gin.Context) {
	token := c.GetHeader("X-Sweep-Token")
	if token == "" {
		token = c.Query("token")
	}
	if h.cfg.SweepToken == "" || token != h.cfg.SweepToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid sweep token"})
		return
	}
	result := h.sweepSvc.Run(time.Now())
	c.JSON(http.StatusOK, result)
}
