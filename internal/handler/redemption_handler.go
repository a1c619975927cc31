package handler

import (
	"net/http"
	"strconv"

	"sygil/internal/domain"
	"sygil/internal/middleware"
	"sygil/internal/models"
	"sygil/internal/repository"
	"sygil/internal/service"

	"github.com/gin-gonic/gin"
)

type RedemptionHandler struct {
	svc            *service.RedemptionService
	redemptionRepo *repository.RedemptionRepository
}

func NewRedemptionHandler(svc *service.RedemptionService, redemptionRepo *repository.RedemptionRepository) *RedemptionHandler {
	return &RedemptionHandler{svc: svc, redemptionRepo: redemptionRepo}
}

type RedeemRequest struct {
	VaultItemID uint   `json:"vault_item_id" binding:"required"`
	FanInput    string `json:"fan_input" binding:"omitempty,max=1024"`
}

func (h *RedemptionHandler) Create(c *gin.Context) {
	fanID := middleware.GetUserID(c)
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rd, err := h.svc.Redeem(fanID, req.VaultItemID, req.FanInput)
	if err != nil {
		switch err {
		case service.ErrItemNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrFanInputRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrItemInactive, service.ErrSoldOut, service.ErrUserLimitReached, service.ErrInsufficientPoints:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redemption failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, redemptionView(rd))
}

func (h *RedemptionHandler) ListMine(c *gin.Context) {
	fanID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.redemptionRepo.ListByFanID(fanID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	out := make([]gin.H, len(list))
	for i := range list {
		out[i] = redemptionView(&list[i])
	}
	c.JSON(http.StatusOK, gin.H{"redemptions": out})
}

func (h *RedemptionHandler) ListForCreator(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := c.Query("status")
	list, err := h.redemptionRepo.ListByCreatorID(creatorID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redemptions": list})
}

type FulfilRequest struct {
	Response string `json:"response" binding:"omitempty,max=4096"`
}

func (h *RedemptionHandler) Fulfil(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req FulfilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rd, err := h.svc.Fulfil(creatorID, uint(id), req.Response)
	if err != nil {
		h.writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=512"`
}

func (h *RedemptionHandler) Reject(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rd, err := h.svc.Reject(creatorID, uint(id), req.Reason)
	if err != nil {
		h.writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

func (h *RedemptionHandler) writeLifecycleError(c *gin.Context, err error) {
	switch err {
	case service.ErrRedemptionNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrNotItemOwner:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case service.ErrResponseRequired, service.ErrReasonRequired:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrNotPending:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// redemptionView reveals the item payload only once the redemption is
// fulfilled.
func redemptionView(rd *models.Redemption) gin.H {
	out := gin.H{
		"id":               rd.ID,
		"vault_item_id":    rd.VaultItemID,
		"creator_id":       rd.CreatorID,
		"points_spent":     rd.PointsSpent,
		"status":           rd.Status,
		"fan_input":        rd.FanInput,
		"creator_response": rd.CreatorResponse,
		"rejection_reason": rd.RejectionReason,
		"redeemed_at":      rd.RedeemedAt,
		"fulfilled_at":     rd.FulfilledAt,
		"item_title":       rd.VaultItem.Title,
		"item_type":        rd.VaultItem.Type,
	}
	if rd.Status == domain.RedemptionFulfilled {
		switch rd.VaultItem.Type {
		case domain.VaultTypeFile:
			out["file_url"] = rd.VaultItem.FileURL
		case domain.VaultTypeText:
			out["secret_text"] = rd.VaultItem.SecretText
		}
	}
	return out
}
