package handler

import (
	"net/http"
	"strconv"

	"sygil/internal/middleware"
	"sygil/internal/repository"
	"sygil/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	followRepo *repository.FollowRepository
	userRepo   *repository.UserRepository
	notifSvc   *service.NotificationService
}

func NewFollowHandler(followRepo *repository.FollowRepository, userRepo *repository.UserRepository, notifSvc *service.NotificationService) *FollowHandler {
	return &FollowHandler{followRepo: followRepo, userRepo: userRepo, notifSvc: notifSvc}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	fanID := middleware.GetUserID(c)
	creatorID, err := strconv.ParseUint(c.Param("creator_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}
	if uint(creatorID) == fanID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}
	creator, err := h.userRepo.GetByID(uint(creatorID))
	if err != nil || !creator.IsCreator() {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
		return
	}
	already, err := h.followRepo.IsFollowing(fanID, creator.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "follow failed"})
		return
	}
	if already {
		c.JSON(http.StatusOK, gin.H{"following": true})
		return
	}
	if err := h.followRepo.Add(fanID, creator.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "follow failed"})
		return
	}
	if fan, err := h.userRepo.GetByID(fanID); err == nil {
		_ = h.notifSvc.NotifyNewFollower(creator.ID, userLabel(fan))
	}
	c.JSON(http.StatusCreated, gin.H{"following": true})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	fanID := middleware.GetUserID(c)
	creatorID, err := strconv.ParseUint(c.Param("creator_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}
	if err := h.followRepo.Remove(fanID, uint(creatorID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unfollow failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": false})
}

func (h *FollowHandler) ListFollowing(c *gin.Context) {
	fanID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	follows, err := h.followRepo.ListFollowing(fanID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": follows})
}

func (h *FollowHandler) ListFollowers(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	follows, err := h.followRepo.ListFollowers(creatorID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	count, _ := h.followRepo.CountFollowers(creatorID)
	c.JSON(http.StatusOK, gin.H{"followers": follows, "count": count})
}
