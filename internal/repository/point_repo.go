package repository

import (
	"errors"
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"

	"gorm.io/gorm"
)

var ErrInsufficientPoints = errors.New("insufficient points with this creator")

// PointRepository owns the ledger and the per-creator balance buckets.
type PointRepository struct {
	db *gorm.DB
}

func NewPointRepository(db *gorm.DB) *PointRepository {
	return &PointRepository{db: db}
}

func (r *PointRepository) CreateTransaction(tx *models.PointTransaction) error {
	return r.db.Create(tx).Error
}

func (r *PointRepository) ListByUserID(userID uint, limit, offset int) ([]models.PointTransaction, error) {
	var list []models.PointTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *PointRepository) GetBalance(userID, creatorID uint) (*models.CreatorPointBalance, error) {
	var b models.CreatorPointBalance
	err := r.db.Where("user_id = ? AND creator_id = ?", userID, creatorID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PointRepository) ListBalances(userID uint) ([]models.CreatorPointBalance, error) {
	var list []models.CreatorPointBalance
	err := r.db.Where("user_id = ?", userID).Order("points DESC").Find(&list).Error
	return list, err
}

// CreditBucket adds points to the fan's bucket with a creator, creating the
// bucket on first credit.
func (r *PointRepository) CreditBucket(userID, creatorID uint, amount int64) error {
	b, err := r.GetBalance(userID, creatorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.CreatorPointBalance{
			UserID: userID, CreatorID: creatorID, Points: amount,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(b).UpdateColumn("points", gorm.Expr("points + ?", amount)).Error
}

// DebitBucket deducts points from the fan's bucket with a creator. The
// conditional UPDATE keeps the balance from going negative under concurrent
// spends; zero rows affected means the bucket was missing or short.
func (r *PointRepository) DebitBucket(userID, creatorID uint, amount int64) error {
	res := r.db.Model(&models.CreatorPointBalance{}).
		Where("user_id = ? AND creator_id = ? AND points >= ?", userID, creatorID, amount).
		UpdateColumn("points", gorm.Expr("points - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

// ListExpirable returns unexpired Earned/Bonus grants whose expiry has passed.
func (r *PointRepository) ListExpirable(now time.Time) ([]models.PointTransaction, error) {
	var list []models.PointTransaction
	err := r.db.Where("type IN ? AND expired = ? AND expires_at IS NOT NULL AND expires_at < ?",
		[]string{domain.TxTypeEarned, domain.TxTypeBonus}, false, now).Find(&list).Error
	return list, err
}

func (r *PointRepository) MarkExpired(txID uint) error {
	return r.db.Model(&models.PointTransaction{}).
		Where("id = ?", txID).UpdateColumn("expired", true).Error
}

// TypeSum is one row of the by-type ledger aggregation.
type TypeSum struct {
	Type  string `json:"type"`
	Total int64  `json:"total"`
	Count int64  `json:"count"`
}

// SumByType aggregates ledger magnitudes per transaction type for the admin
// dashboard. Amount is the single canonical magnitude column.
func (r *PointRepository) SumByType() ([]TypeSum, error) {
	var out []TypeSum
	err := r.db.Model(&models.PointTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("type").Order("type ASC").Scan(&out).Error
	return out, err
}

// SumSpendable aggregates a user's ledger-derived spendable balance: credit
// rows (Earned/Bonus/Refund) minus debit rows (Spent/Expired). Expiry is
// accounted for by the Expired debit rows the sweep writes, so grants past
// their window but not yet swept still count, matching the balance columns.
// Used by the admin reconciliation read; live checks use the balance columns.
func (r *PointRepository) SumSpendable(userID uint) (int64, error) {
	var credit, debit int64
	err := r.db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND type IN ?",
			userID, []string{domain.TxTypeEarned, domain.TxTypeBonus, domain.TxTypeRefund}).
		Select("COALESCE(SUM(amount), 0)").Scan(&credit).Error
	if err != nil {
		return 0, err
	}
	err = r.db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND type IN ?", userID, []string{domain.TxTypeSpent, domain.TxTypeExpired}).
		Select("COALESCE(SUM(amount), 0)").Scan(&debit).Error
	if err != nil {
		return 0, err
	}
	return credit - debit, nil
}
