package repository

import (
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"

	"gorm.io/gorm"
)

type RedemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

func (r *RedemptionRepository) Create(rd *models.Redemption) error {
	return r.db.Create(rd).Error
}

func (r *RedemptionRepository) GetByID(id uint) (*models.Redemption, error) {
	var rd models.Redemption
	err := r.db.Preload("VaultItem").First(&rd, id).Error
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *RedemptionRepository) ListByFanID(fanID uint, limit, offset int) ([]models.Redemption, error) {
	var list []models.Redemption
	err := r.db.Where("fan_id = ?", fanID).Preload("VaultItem").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *RedemptionRepository) ListByCreatorID(creatorID uint, status string, limit, offset int) ([]models.Redemption, error) {
	q := r.db.Where("creator_id = ?", creatorID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Redemption
	err := q.Preload("VaultItem").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// CountSuccessful counts a fan's redemptions of an item that consumed supply
// (everything but Rejected/Cancelled, since those refunded).
func (r *RedemptionRepository) CountSuccessful(fanID, itemID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.Redemption{}).
		Where("fan_id = ? AND vault_item_id = ? AND status IN ?",
			fanID, itemID, []string{domain.RedemptionPending, domain.RedemptionFulfilled}).
		Count(&c).Error
	return c, err
}

// ListStalePending returns Pending redemptions created before the cutoff,
// oldest first, for the auto-cancel sweep.
func (r *RedemptionRepository) ListStalePending(cutoff time.Time) ([]models.Redemption, error) {
	var list []models.Redemption
	err := r.db.Where("status = ? AND created_at < ?", domain.RedemptionPending, cutoff).
		Order("created_at ASC").Find(&list).Error
	return list, err
}

// MarkFulfilled transitions a Pending redemption to Fulfilled. Zero rows
// affected means another actor resolved it first.
func (r *RedemptionRepository) MarkFulfilled(id uint, response string, now time.Time) (bool, error) {
	res := r.db.Model(&models.Redemption{}).
		Where("id = ? AND status = ?", id, domain.RedemptionPending).
		Updates(map[string]interface{}{
			"status":           domain.RedemptionFulfilled,
			"creator_response": response,
			"fulfilled_at":     now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkRejected transitions a Pending redemption to Rejected. Zero rows
// affected means another actor resolved it first; the caller must not refund.
func (r *RedemptionRepository) MarkRejected(id uint, reason string) (bool, error) {
	res := r.db.Model(&models.Redemption{}).
		Where("id = ? AND status = ?", id, domain.RedemptionPending).
		Updates(map[string]interface{}{
			"status":           domain.RedemptionRejected,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCancelled transitions a Pending redemption to Cancelled. Zero rows
// affected means another actor got there first; the caller must not refund.
func (r *RedemptionRepository) MarkCancelled(id uint, reason string, now time.Time) (bool, error) {
	res := r.db.Model(&models.Redemption{}).
		Where("id = ? AND status = ?", id, domain.RedemptionPending).
		Updates(map[string]interface{}{
			"status":           domain.RedemptionCancelled,
			"rejection_reason": reason,
			"expired_at":       now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
