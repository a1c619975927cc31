package handler

import (
	"net/http"
	"strconv"

	"sygil/internal/domain"
	"sygil/internal/middleware"
	"sygil/internal/models"
	"sygil/internal/repository"

	"github.com/gin-gonic/gin"
)

type VaultHandler struct {
	vaultRepo *repository.VaultRepository
	userRepo  *repository.UserRepository
}

func NewVaultHandler(vaultRepo *repository.VaultRepository, userRepo *repository.UserRepository) *VaultHandler {
	return &VaultHandler{vaultRepo: vaultRepo, userRepo: userRepo}
}

type CreateVaultItemRequest struct {
	Title            string `json:"title" binding:"required,max=128"`
	Description      string `json:"description" binding:"omitempty,max=1024"`
	Type             string `json:"type" binding:"required"`
	PointCost        int64  `json:"point_cost" binding:"min=0"`
	Limit            int    `json:"limit" binding:"min=0"`
	UserLimit        int    `json:"user_limit" binding:"min=0"`
	FileURL          string `json:"file_url" binding:"omitempty,max=512"`
	SecretText       string `json:"secret_text"`
	Instructions     string `json:"instructions" binding:"omitempty,max=1024"`
	RequiresFanInput bool   `json:"requires_fan_input"`
}

func (h *VaultHandler) Create(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	var req CreateVaultItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !domain.ValidVaultType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vault item type"})
		return
	}
	if req.Type == domain.VaultTypeFile && req.FileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file items need a file_url"})
		return
	}
	if req.Type == domain.VaultTypeText && req.SecretText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text items need a secret_text"})
		return
	}
	item := &models.VaultItem{
		CreatorID:        creatorID,
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		PointCost:        req.PointCost,
		Limit:            req.Limit,
		UserLimit:        req.UserLimit,
		FileURL:          req.FileURL,
		SecretText:       req.SecretText,
		Instructions:     req.Instructions,
		RequiresFanInput: req.RequiresFanInput,
		Active:           true,
	}
	// qna always needs the fan's question
	if item.Type == domain.VaultTypeQnA {
		item.RequiresFanInput = true
	}
	if err := h.vaultRepo.Create(item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	// First vault item ticks the onboarding checklist.
	if u, err := h.userRepo.GetByID(creatorID); err == nil && !u.VaultItemAdded {
		u.VaultItemAdded = true
		_ = h.userRepo.Update(u)
	}
	c.JSON(http.StatusCreated, item)
}

func (h *VaultHandler) List(c *gin.Context) {
	creatorID, err := strconv.ParseUint(c.Param("creator_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.vaultRepo.ListByCreatorID(uint(creatorID), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

type UpdateVaultItemRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=128"`
	Description *string `json:"description" binding:"omitempty,max=1024"`
	PointCost   *int64  `json:"point_cost" binding:"omitempty,min=0"`
	Limit       *int    `json:"limit" binding:"omitempty,min=0"`
	UserLimit   *int    `json:"user_limit" binding:"omitempty,min=0"`
	Active      *bool   `json:"active"`
}

// Update edits an item. The supply limit may only be raised or set to
// unlimited (0); lowering it would strand fans who already hold points.
func (h *VaultHandler) Update(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	item, err := h.vaultRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if item.CreatorID != creatorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your item"})
		return
	}
	var req UpdateVaultItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit != nil {
		newLimit := *req.Limit
		if newLimit != 0 && (item.Limit == 0 || newLimit < item.Limit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "supply limit can only be increased or set to unlimited"})
			return
		}
		item.Limit = newLimit
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.PointCost != nil {
		item.PointCost = *req.PointCost
	}
	if req.UserLimit != nil {
		item.UserLimit = *req.UserLimit
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if err := h.vaultRepo.Update(item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, item)
}
