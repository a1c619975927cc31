package repository

import (
	"sygil/internal/models"

	"gorm.io/gorm"
)

type VaultRepository struct {
	db *gorm.DB
}

func NewVaultRepository(db *gorm.DB) *VaultRepository {
	return &VaultRepository{db: db}
}

func (r *VaultRepository) Create(v *models.VaultItem) error {
	return r.db.Create(v).Error
}

func (r *VaultRepository) GetByID(id uint) (*models.VaultItem, error) {
	var v models.VaultItem
	err := r.db.First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VaultRepository) ListByCreatorID(creatorID uint, limit, offset int) ([]models.VaultItem, error) {
	var list []models.VaultItem
	err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *VaultRepository) Update(v *models.VaultItem) error {
	return r.db.Save(v).Error
}

// ClaimUnlock consumes one unit of supply. The conditional UPDATE fails with
// zero rows affected when supply ran out between read and claim.
func (r *VaultRepository) ClaimUnlock(itemID uint) (bool, error) {
	res := r.db.Model(&models.VaultItem{}).
		Where("id = ? AND (`limit` = 0 OR unlock_count < `limit`)", itemID).
		UpdateColumn("unlock_count", gorm.Expr("unlock_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
