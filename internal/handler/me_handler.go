package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"sygil/internal/middleware"
	"sygil/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MeHandler struct {
	userRepo  *repository.UserRepository
	pointRepo *repository.PointRepository
}

func NewMeHandler(userRepo *repository.UserRepository, pointRepo *repository.PointRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo, pointRepo: pointRepo}
}

func (h *MeHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	balances, _ := h.pointRepo.ListBalances(userID)
	c.JSON(http.StatusOK, gin.H{"user": u, "creator_balances": balances})
}

// GetOnboarding returns the five checklist flags plus the names of the steps
// still missing, in the order the UI shows them.
func (h *MeHandler) GetOnboarding(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	steps := u.OnboardingSteps()
	c.JSON(http.StatusOK, gin.H{
		"verified":         u.Verified,
		"payment_info":     u.HasPayoutInfo(),
		"profile_complete": u.ProfileComplete,
		"event_started":    u.EventStarted,
		"vault_item_added": u.VaultItemAdded,
		"complete":         len(steps) == 0,
		"incomplete_steps": steps,
	})
}

type UpdateProfileRequest struct {
	Name     string `json:"name" binding:"omitempty,max=128"`
	Username string `json:"username" binding:"omitempty,min=3,max=64"`
	Perk     string `json:"perk" binding:"omitempty,max=512"`
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if req.Username != "" && req.Username != u.Handle() {
		if _, err := h.userRepo.GetByUsername(req.Username); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		u.Username = &req.Username
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Perk != "" {
		u.Perk = req.Perk
	}
	if u.Name != "" && u.Handle() != "" {
		u.ProfileComplete = true
	}
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type PayoutRequest struct {
	Phone string `json:"phone" binding:"omitempty,max=20"`
	UPI   string `json:"upi" binding:"omitempty,max=128"`
}

func (h *MeHandler) SetPayout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Phone == "" && req.UPI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone or upi required"})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.PayoutPhone = req.Phone
	u.PayoutUPI = req.UPI
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type StartEventRequest struct {
	DurationHours int `json:"duration_hours" binding:"required,min=1,max=720"`
}

// StartEvent opens the creator's leaderboard window. A running event must end
// before a new one starts.
func (h *MeHandler) StartEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req StartEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	now := time.Now()
	if u.EventRunning(now) {
		c.JSON(http.StatusConflict, gin.H{"error": "an event is already running"})
		return
	}
	end := now.Add(time.Duration(req.DurationHours) * time.Hour)
	u.EventStart = &now
	u.EventEnd = &end
	u.EventStarted = true
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_start": u.EventStart, "event_end": u.EventEnd})
}

func (h *MeHandler) StopEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	now := time.Now()
	if !u.EventRunning(now) {
		c.JSON(http.StatusConflict, gin.H{"error": "no event is running"})
		return
	}
	u.EventEnd = &now
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_end": u.EventEnd})
}

func (h *MeHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.pointRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
