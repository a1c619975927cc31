package handler

import (
	"net/http"

	"sygil/internal/repository"
	"sygil/internal/service"

	"github.com/gin-gonic/gin"
)

// PointsHandler exposes the admin-facing ledger operations: bonus grants,
// by-type aggregation and balance reconciliation.
type PointsHandler struct {
	pointsSvc *service.PointsService
	pointRepo *repository.PointRepository
	adminRepo *repository.AdminRepository
}

func NewPointsHandler(pointsSvc *service.PointsService, pointRepo *repository.PointRepository, adminRepo *repository.AdminRepository) *PointsHandler {
	return &PointsHandler{pointsSvc: pointsSvc, pointRepo: pointRepo, adminRepo: adminRepo}
}

type GrantBonusRequest struct {
	User        string `json:"user" binding:"required"` // numeric id or username
	Points      int64  `json:"points" binding:"required"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

func (h *PointsHandler) GrantBonus(c *gin.Context) {
	var req GrantBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tx, err := h.pointsSvc.GrantBonus(req.User, req.Points, req.Description)
	if err != nil {
		switch err {
		case service.ErrInvalidPoints:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "grant failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *PointsHandler) Stats(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Reconcile reports the aggregate balance column next to the ledger-derived
// spendable sum for one user, so drift is visible to operators.
func (h *PointsHandler) Reconcile(c *gin.Context) {
	ref := c.Param("user")
	aggregate, ledger, err := h.pointsSvc.Reconcile(ref)
	if err != nil {
		if err == service.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconcile failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":              ref,
		"aggregate_balance": aggregate,
		"ledger_balance":    ledger,
		"consistent":        aggregate == ledger,
	})
}
