package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sygil/internal/domain"
	"sygil/internal/middleware"
	"sygil/internal/models"
	"sygil/internal/repository"
	"sygil/internal/service"
	"sygil/internal/ws"
	"sygil/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
	pointsSvc   *service.PointsService
	notifSvc    *service.NotificationService
	providers   map[string]payment.Provider
	eventHub    *ws.EventHub
}

func NewPaymentHandler(
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	pointsSvc *service.PointsService,
	notifSvc *service.NotificationService,
	providers map[string]payment.Provider,
	eventHub *ws.EventHub,
) *PaymentHandler {
	return &PaymentHandler{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		pointsSvc:   pointsSvc,
		notifSvc:    notifSvc,
		providers:   providers,
		eventHub:    eventHub,
	}
}

type CreateOrderRequest struct {
	CreatorID      uint   `json:"creator_id" binding:"required"`
	Amount         int64  `json:"amount" binding:"required,min=1"`
	Currency       string `json:"currency" binding:"omitempty,len=3"`
	Message        string `json:"message" binding:"omitempty,max=512"`
	DonorName      string `json:"donor_name" binding:"omitempty,max=128"`
	Provider       string `json:"provider" binding:"required,oneof=paypal razorpay stub"`
	IdempotencyKey string `json:"idempotency_key" binding:"omitempty,max=64"`
}

// CreateOrder opens a donation order with the chosen provider. The payment is
// ranked when the creator's event window is open at creation time.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	fanID := middleware.GetUserID(c)
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	creator, err := h.userRepo.GetByID(req.CreatorID)
	if err != nil || !creator.IsCreator() {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
		return
	}
	provider := h.providers[req.Provider]
	if provider == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment provider"})
		return
	}
	if req.IdempotencyKey != "" {
		if p, err := h.paymentRepo.GetByIdempotencyKey(req.IdempotencyKey); err == nil {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	donorName := req.DonorName
	if donorName == "" {
		if fan, err := h.userRepo.GetByID(fanID); err == nil {
			if fan.Handle() != "" {
				donorName = fan.Handle()
			} else {
				donorName = fan.Name
			}
		}
	}
	if donorName == "" {
		donorName = "Anonymous"
	}

	orderID := uuid.New().String()
	resp, err := provider.CreateOrder(c.Request.Context(), payment.OrderRequest{
		OrderID:     orderID,
		Amount:      req.Amount,
		Currency:    currency,
		Description: "Donation to " + userLabel(creator),
	})
	if err != nil {
		log.Printf("[payment] create order failed: provider=%s err=%v", req.Provider, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider error"})
		return
	}
	idemKey := req.IdempotencyKey
	if idemKey == "" {
		idemKey = orderID
	}
	p := &models.Payment{
		FromID:         &fanID,
		CreatorID:      creator.ID,
		DonorName:      donorName,
		Amount:         req.Amount,
		Message:        req.Message,
		Ranked:         creator.EventRunning(time.Now()),
		Provider:       req.Provider,
		OrderID:        orderID,
		ProviderRef:    resp.ProviderRef,
		IdempotencyKey: idemKey,
		Status:         domain.PaymentPending,
	}
	if err := h.paymentRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": p, "approve_url": resp.ApproveURL})
}

// Capture confirms the order with the provider, marks the payment completed
// and awards FamPoints to the payer. Idempotent: a completed payment returns
// immediately without a second award.
func (h *PaymentHandler) Capture(c *gin.Context) {
	orderID := c.Param("order_id")
	p, err := h.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if p.Status == domain.PaymentCompleted {
		c.JSON(http.StatusOK, p)
		return
	}
	provider := h.providers[p.Provider]
	if provider == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "provider unavailable"})
		return
	}
	ok, err := provider.CaptureOrder(c.Request.Context(), p.ProviderRef)
	if err != nil {
		log.Printf("[payment] capture failed: order=%s err=%v", orderID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "capture failed"})
		return
	}
	if !ok {
		p.Status = domain.PaymentFailed
		_ = h.paymentRepo.Update(p)
		c.JSON(http.StatusConflict, gin.H{"error": "payment not completed"})
		return
	}
	now := time.Now()
	p.Status = domain.PaymentCompleted
	p.CompletedAt = &now
	if err := h.paymentRepo.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	var points int64
	if p.FromID != nil {
		points, err = h.pointsSvc.AwardForDonation(*p.FromID, p.CreatorID, p.Amount, p.OrderID)
		if err != nil {
			// The donation stands; the missing award shows up in reconciliation.
			log.Printf("[payment] point award failed: order=%s err=%v", orderID, err)
		}
	}
	_ = h.notifSvc.NotifyDonation(p.CreatorID, p.DonorName, p.Amount, points)
	h.eventHub.Broadcast(p.CreatorID, gin.H{
		"type":       "donation",
		"donor_name": p.DonorName,
		"amount":     p.Amount,
		"message":    p.Message,
		"ranked":     p.Ranked,
	})
	c.JSON(http.StatusOK, gin.H{"payment": p, "points_awarded": points})
}

// Leaderboard returns ranked donors for the creator's current (or last) event
// window, grouped by donor name and sorted by total descending.
func (h *PaymentHandler) Leaderboard(c *gin.Context) {
	creatorID, err := strconv.ParseUint(c.Param("creator_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creator id"})
		return
	}
	creator, err := h.userRepo.GetByID(uint(creatorID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
		return
	}
	if creator.EventStart == nil || creator.EventEnd == nil {
		c.JSON(http.StatusOK, gin.H{"leaderboard": []repository.LeaderboardEntry{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.paymentRepo.Leaderboard(creator.ID, *creator.EventStart, *creator.EventEnd, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"event_start": creator.EventStart,
		"event_end":   creator.EventEnd,
	})
}

func (h *PaymentHandler) ListForCreator(c *gin.Context) {
	creatorID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.paymentRepo.ListByCreatorID(creatorID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

func userLabel(u *models.User) string {
	if u.Handle() != "" {
		return u.Handle()
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
