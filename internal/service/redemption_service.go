package service

import (
	"errors"
	"fmt"
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"
	"sygil/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound       = errors.New("vault item not found")
	ErrItemInactive       = errors.New("vault item is not available")
	ErrSoldOut            = errors.New("vault item is sold out")
	ErrUserLimitReached   = errors.New("redemption limit reached for this item")
	ErrFanInputRequired   = errors.New("this item requires input from you")
	ErrRedemptionNotFound = errors.New("redemption not found")
	ErrNotPending         = errors.New("redemption is not pending")
	ErrNotItemOwner       = errors.New("only the item's creator can do this")
	ErrResponseRequired   = errors.New("a response is required for Q&A items")
	ErrReasonRequired     = errors.New("a rejection reason is required")
)

// RedemptionService drives the Pending -> Fulfilled | Rejected | Cancelled
// lifecycle. All point mutations go through PointsService so every path
// leaves a ledger row.
type RedemptionService struct {
	redemptionRepo *repository.RedemptionRepository
	vaultRepo      *repository.VaultRepository
	pointsSvc      *PointsService
	notifSvc       *NotificationService
	userRepo       *repository.UserRepository
}

func NewRedemptionService(
	redemptionRepo *repository.RedemptionRepository,
	vaultRepo *repository.VaultRepository,
	pointsSvc *PointsService,
	notifSvc *NotificationService,
	userRepo *repository.UserRepository,
) *RedemptionService {
	return &RedemptionService{
		redemptionRepo: redemptionRepo,
		vaultRepo:      vaultRepo,
		pointsSvc:      pointsSvc,
		notifSvc:       notifSvc,
		userRepo:       userRepo,
	}
}

// Redeem validates the claim and, only once every check passes, debits the
// fan's bucket, consumes supply and creates the redemption. Instant item
// types (file, text) are fulfilled on the spot.
func (s *RedemptionService) Redeem(fanID, itemID uint, fanInput string) (*models.Redemption, error) {
	item, err := s.vaultRepo.GetByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !item.Active {
		return nil, ErrItemInactive
	}
	if item.RequiresFanInput && fanInput == "" {
		return nil, ErrFanInputRequired
	}
	if item.SoldOut() {
		return nil, ErrSoldOut
	}
	if item.UserLimit > 0 {
		n, err := s.redemptionRepo.CountSuccessful(fanID, item.ID)
		if err != nil {
			return nil, err
		}
		if n >= int64(item.UserLimit) {
			return nil, ErrUserLimitReached
		}
	}

	// All checks passed: charge first, then claim supply. Spend fails without
	// mutation when the bucket is short, so a rejected fan loses nothing.
	ref := fmt.Sprintf("vault_item_%d", item.ID)
	if err := s.pointsSvc.Spend(fanID, item.CreatorID, item.PointCost,
		"Redeemed: "+item.Title, ref); err != nil {
		return nil, err
	}
	claimed, err := s.vaultRepo.ClaimUnlock(item.ID)
	if err == nil && !claimed {
		err = ErrSoldOut
	}
	if err != nil {
		// Supply vanished between the read and the claim: undo the charge.
		_ = s.pointsSvc.Refund(fanID, item.CreatorID, item.PointCost,
			"Refund: "+item.Title+" sold out", ref)
		return nil, err
	}

	now := time.Now()
	rd := &models.Redemption{
		VaultItemID: item.ID,
		FanID:       fanID,
		CreatorID:   item.CreatorID,
		PointsSpent: item.PointCost,
		Status:      domain.RedemptionPending,
		FanInput:    fanInput,
		RedeemedAt:  now,
	}
	if domain.InstantFulfil(item.Type) {
		rd.Status = domain.RedemptionFulfilled
		rd.FulfilledAt = &now
	}
	if err := s.redemptionRepo.Create(rd); err != nil {
		return nil, err
	}
	rd.VaultItem = *item

	if s.notifSvc != nil {
		fanName := s.displayName(fanID)
		_ = s.notifSvc.NotifyRedemptionRequest(item.CreatorID, rd.ID, fanName, item.Title)
	}
	return rd, nil
}

// Fulfil transitions a Pending redemption to Fulfilled. Creator-only; qna
// items require a response. Acting on a terminal redemption is a conflict.
func (s *RedemptionService) Fulfil(creatorID, redemptionID uint, response string) (*models.Redemption, error) {
	rd, err := s.getOwned(creatorID, redemptionID)
	if err != nil {
		return nil, err
	}
	if rd.Terminal() {
		return nil, ErrNotPending
	}
	if rd.VaultItem.Type == domain.VaultTypeQnA && response == "" {
		return nil, ErrResponseRequired
	}
	// Conditional transition: the auto-cancel sweep may resolve the same
	// redemption concurrently, and only one of us may win.
	now := time.Now()
	ok, err := s.redemptionRepo.MarkFulfilled(rd.ID, response, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	rd.Status = domain.RedemptionFulfilled
	rd.CreatorResponse = response
	rd.FulfilledAt = &now
	if s.notifSvc != nil {
		_ = s.notifSvc.NotifyRedemptionFulfilled(rd.FanID, rd.ID, rd.VaultItem.Title)
	}
	return rd, nil
}

// Reject transitions a Pending redemption to Rejected with a mandatory reason
// and refunds the exact points spent back to the same bucket.
func (s *RedemptionService) Reject(creatorID, redemptionID uint, reason string) (*models.Redemption, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	rd, err := s.getOwned(creatorID, redemptionID)
	if err != nil {
		return nil, err
	}
	if rd.Terminal() {
		return nil, ErrNotPending
	}
	// Conditional transition so a reject racing the sweep's cancel cannot
	// refund twice: whoever flips the row out of Pending owns the refund.
	ok, err := s.redemptionRepo.MarkRejected(rd.ID, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	rd.Status = domain.RedemptionRejected
	rd.RejectionReason = reason
	if err := s.pointsSvc.Refund(rd.FanID, rd.CreatorID, rd.PointsSpent,
		"Refund: redemption rejected", fmt.Sprintf("redemption_%d", rd.ID)); err != nil {
		return nil, err
	}
	if s.notifSvc != nil {
		_ = s.notifSvc.NotifyRedemptionRejected(rd.FanID, rd.ID, rd.VaultItem.Title, reason)
	}
	return rd, nil
}

func (s *RedemptionService) getOwned(creatorID, redemptionID uint) (*models.Redemption, error) {
	rd, err := s.redemptionRepo.GetByID(redemptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}
	if rd.CreatorID != creatorID {
		return nil, ErrNotItemOwner
	}
	return rd, nil
}

func (s *RedemptionService) displayName(userID uint) string {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "A fan"
	}
	if u.Handle() != "" {
		return u.Handle()
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
