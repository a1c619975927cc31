package repository

import (
	"sygil/internal/domain"
	"sygil/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers         int64     `json:"total_users"`
	TotalCreators      int64     `json:"total_creators"`
	VerifiedUsers      int64     `json:"verified_users"`
	TotalRevenue       int64     `json:"total_revenue"`
	TotalDonations     int64     `json:"total_donations"`
	PendingRedemptions int64     `json:"pending_redemptions"`
	TotalVaultItems    int64     `json:"total_vault_items"`
	CodesApplied       int64     `json:"codes_applied"`
	PointsByType       []TypeSum `json:"points_by_type"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.User{}).
		Where("account_type IN ?", []string{domain.AccountTypeCreator, domain.AccountTypeVCreator}).
		Count(&s.TotalCreators)
	r.db.Model(&models.User{}).Where("verified = ?", true).Count(&s.VerifiedUsers)

	revenue, err := NewPaymentRepository(r.db).TotalCompleted()
	if err != nil {
		return nil, err
	}
	s.TotalRevenue = revenue

	r.db.Model(&models.Payment{}).Where("status = ?", domain.PaymentCompleted).Count(&s.TotalDonations)
	r.db.Model(&models.Redemption{}).Where("status = ?", domain.RedemptionPending).Count(&s.PendingRedemptions)
	r.db.Model(&models.VaultItem{}).Count(&s.TotalVaultItems)
	r.db.Model(&models.DiscountRedemption{}).Count(&s.CodesApplied)

	sums, err := NewPointRepository(r.db).SumByType()
	if err != nil {
		return nil, err
	}
	s.PointsByType = sums
	return &s, nil
}
