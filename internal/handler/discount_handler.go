package handler

import (
	"errors"
	"net/http"
	"time"

	"sygil/internal/middleware"
	"sygil/internal/service"

	"github.com/gin-gonic/gin"
)

type DiscountHandler struct {
	discountSvc *service.DiscountService
}

func NewDiscountHandler(discountSvc *service.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountSvc: discountSvc}
}

type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

func (h *DiscountHandler) Apply(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dc, err := h.discountSvc.Apply(userID, req.Code, time.Now())
	if err != nil {
		var onboarding *service.IncompleteOnboardingError
		switch {
		case errors.As(err, &onboarding):
			c.JSON(http.StatusForbidden, gin.H{
				"error":            "onboarding incomplete",
				"incomplete_steps": onboarding.Steps,
			})
		case errors.Is(err, service.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCodeInactive),
			errors.Is(err, service.ErrCodeExpired),
			errors.Is(err, service.ErrCodeLimitReached),
			errors.Is(err, service.ErrCodeAlreadyApplied):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCodeWrongAccount):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "apply failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":  dc.Code,
		"type":  dc.Type,
		"value": dc.Value,
	})
}
