package repository

import (
	"sygil/internal/models"

	"gorm.io/gorm"
)

type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(dc *models.DiscountCode) error {
	return r.db.Create(dc).Error
}

func (r *DiscountRepository) GetByCode(code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := r.db.Where("code = ?", code).First(&dc).Error
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

func (r *DiscountRepository) HasApplied(codeID, userID uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.DiscountRedemption{}).
		Where("discount_code_id = ? AND user_id = ?", codeID, userID).Count(&c).Error
	return c > 0, err
}

// ClaimUsage records one application of the code: the conditional UPDATE
// enforces the global usage limit, the unique index on discount_redemptions
// enforces once-per-user.
func (r *DiscountRepository) ClaimUsage(codeID, userID uint) (bool, error) {
	res := r.db.Model(&models.DiscountCode{}).
		Where("id = ? AND (usage_limit = 0 OR usage_count < usage_limit)", codeID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := r.db.Create(&models.DiscountRedemption{DiscountCodeID: codeID, UserID: userID}).Error; err != nil {
		// Roll the counter back so a duplicate application doesn't burn supply.
		_ = r.db.Model(&models.DiscountCode{}).Where("id = ?", codeID).
			UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
		return false, err
	}
	return true, nil
}
