package repository

import (
	"strconv"

	"sygil/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Resolve finds a user by numeric ID string or by username. Admin endpoints
// accept either form.
func (r *UserRepository) Resolve(ref string) (*models.User, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		if u, err := r.GetByID(uint(id)); err == nil {
			return u, nil
		}
	}
	return r.GetByUsername(ref)
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// IncrementPoints bumps the aggregate points column atomically. Delta may be
// negative; callers guard against underflow via the per-creator bucket checks.
func (r *UserRepository) IncrementPoints(userID uint, delta int64) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
}

func (r *UserRepository) ListCreators(limit, offset int) ([]models.User, error) {
	var list []models.User
	err := r.db.Where("account_type IN ?", []string{"Creator", "VCreator"}).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
