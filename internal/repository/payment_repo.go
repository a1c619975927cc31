package repository

import (
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("order_id = ?", orderID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIdempotencyKey(key string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("idempotency_key = ?", key).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

func (r *PaymentRepository) ListByCreatorID(creatorID uint, limit, offset int) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.Where("creator_id = ? AND status = ?", creatorID, domain.PaymentCompleted).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// LeaderboardEntry is one ranked donor on a creator's event leaderboard.
type LeaderboardEntry struct {
	DonorName string `json:"donor_name"`
	Total     int64  `json:"total"`
	Donations int64  `json:"donations"`
}

// Leaderboard groups completed ranked donations inside the window by donor
// name and sorts by summed amount descending.
func (r *PaymentRepository) Leaderboard(creatorID uint, from, to time.Time, limit int) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	err := r.db.Model(&models.Payment{}).
		Select("donor_name, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS donations").
		Where("creator_id = ? AND status = ? AND ranked = ? AND created_at >= ? AND created_at < ?",
			creatorID, domain.PaymentCompleted, true, from, to).
		Group("donor_name").
		Order("total DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// TotalCompleted sums completed donation revenue for the admin dashboard.
func (r *PaymentRepository) TotalCompleted() (int64, error) {
	var total int64
	err := r.db.Model(&models.Payment{}).
		Where("status = ?", domain.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
