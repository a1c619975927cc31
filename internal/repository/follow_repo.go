package repository

import (
	"sygil/internal/models"

	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Add(fanID, creatorID uint) error {
	return r.db.Create(&models.Follow{FanID: fanID, CreatorID: creatorID}).Error
}

func (r *FollowRepository) Remove(fanID, creatorID uint) error {
	return r.db.Where("fan_id = ? AND creator_id = ?", fanID, creatorID).Delete(&models.Follow{}).Error
}

func (r *FollowRepository) IsFollowing(fanID, creatorID uint) (bool, error) {
	var c int64
	err := r.db.Model(&models.Follow{}).
		Where("fan_id = ? AND creator_id = ?", fanID, creatorID).Count(&c).Error
	return c > 0, err
}

func (r *FollowRepository) ListFollowing(fanID uint, limit, offset int) ([]models.Follow, error) {
	var list []models.Follow
	err := r.db.Where("fan_id = ?", fanID).Preload("Creator").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *FollowRepository) ListFollowers(creatorID uint, limit, offset int) ([]models.Follow, error) {
	var list []models.Follow
	err := r.db.Where("creator_id = ?", creatorID).Preload("Fan").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *FollowRepository) CountFollowers(creatorID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.Follow{}).Where("creator_id = ?", creatorID).Count(&c).Error
	return c, err
}
