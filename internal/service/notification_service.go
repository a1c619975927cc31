package service

import (
	"encoding/json"
	"fmt"
	"log"

	"sygil/internal/models"
	"sygil/internal/repository"
)

// NotificationService persists notification rows. Delivery is best-effort:
// callers ignore the error or log it, a failed notification never fails the
// operation that triggered it.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		log.Printf("[notify] user=%d type=%s: %v", userID, notifType, err)
	}
	return err
}

func (s *NotificationService) NotifyDonation(creatorID uint, donorName string, amount, points int64) error {
	return s.Notify(creatorID, "DONATION", "New donation",
		fmt.Sprintf("%s donated %d", donorName, amount),
		map[string]interface{}{"amount": amount, "points_awarded": points})
}

func (s *NotificationService) NotifyRedemptionRequest(creatorID, redemptionID uint, fanName, itemTitle string) error {
	return s.Notify(creatorID, "REDEMPTION_REQUEST", "New vault redemption",
		fanName+" redeemed "+itemTitle,
		map[string]interface{}{"redemption_id": redemptionID})
}

func (s *NotificationService) NotifyRedemptionFulfilled(fanID, redemptionID uint, itemTitle string) error {
	return s.Notify(fanID, "REDEMPTION_FULFILLED", "Redemption fulfilled",
		"Your redemption of "+itemTitle+" was fulfilled",
		map[string]interface{}{"redemption_id": redemptionID})
}

func (s *NotificationService) NotifyRedemptionRejected(fanID, redemptionID uint, itemTitle, reason string) error {
	return s.Notify(fanID, "REDEMPTION_REJECTED", "Redemption rejected",
		"Your redemption of "+itemTitle+" was rejected: "+reason,
		map[string]interface{}{"redemption_id": redemptionID})
}

func (s *NotificationService) NotifyBonusGranted(userID uint, points int64) error {
	return s.Notify(userID, "BONUS_GRANTED", "Bonus FamPoints",
		fmt.Sprintf("You received %d bonus points", points),
		map[string]interface{}{"points": points})
}

// NotifySweepSummary sends the single aggregated per-creator notification the
// auto-cancel sweep emits.
func (s *NotificationService) NotifySweepSummary(creatorID uint, cancelled int, pointsRefunded int64) error {
	return s.Notify(creatorID, "REDEMPTIONS_EXPIRED", "Pending redemptions expired",
		fmt.Sprintf("%d pending redemptions were auto-cancelled and %d points refunded to fans", cancelled, pointsRefunded),
		map[string]interface{}{"cancelled": cancelled, "points_refunded": pointsRefunded})
}

func (s *NotificationService) NotifyNewFollower(creatorID uint, fanName string) error {
	return s.Notify(creatorID, "NEW_FOLLOWER", "New follower", fanName+" started following you", nil)
}
