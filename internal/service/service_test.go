package service

import (
	"fmt"
	"testing"
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"
	"sygil/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testExpiry = 60 * 24 * time.Hour

type testEnv struct {
	db *gorm.DB

	userRepo       *repository.UserRepository
	pointRepo      *repository.PointRepository
	vaultRepo      *repository.VaultRepository
	redemptionRepo *repository.RedemptionRepository
	discountRepo   *repository.DiscountRepository

	notifSvc      *NotificationService
	pointsSvc     *PointsService
	redemptionSvc *RedemptionService
	sweepSvc      *SweepService
	discountSvc   *DiscountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// Per-test in-memory database to avoid cross-test interference.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CreatorPointBalance{},
		&models.PointTransaction{},
		&models.VaultItem{},
		&models.Redemption{},
		&models.Payment{},
		&models.DiscountCode{},
		&models.DiscountRedemption{},
		&models.Follow{},
		&models.Notification{},
	))

	env := &testEnv{
		db:             db,
		userRepo:       repository.NewUserRepository(db),
		pointRepo:      repository.NewPointRepository(db),
		vaultRepo:      repository.NewVaultRepository(db),
		redemptionRepo: repository.NewRedemptionRepository(db),
		discountRepo:   repository.NewDiscountRepository(db),
	}
	env.notifSvc = NewNotificationService(repository.NewNotificationRepository(db))
	env.pointsSvc = NewPointsService(env.pointRepo, env.userRepo, env.notifSvc, testExpiry)
	env.redemptionSvc = NewRedemptionService(env.redemptionRepo, env.vaultRepo, env.pointsSvc, env.notifSvc, env.userRepo)
	env.sweepSvc = NewSweepService(env.redemptionRepo, env.pointsSvc, env.notifSvc, testExpiry)
	env.discountSvc = NewDiscountService(env.discountRepo, env.userRepo)
	return env
}

func (e *testEnv) newUser(t *testing.T, username, accountType string) *models.User {
	t.Helper()
	u := &models.User{
		Email:       username + "@example.com",
		Username:    &username,
		Name:        username,
		AccountType: accountType,
	}
	require.NoError(t, e.userRepo.Create(u))
	return u
}

func (e *testEnv) newItem(t *testing.T, creatorID uint, itemType string, cost int64, limit, userLimit int) *models.VaultItem {
	t.Helper()
	item := &models.VaultItem{
		CreatorID: creatorID,
		Title:     "Test " + itemType,
		Type:      itemType,
		PointCost: cost,
		Limit:     limit,
		UserLimit: userLimit,
		Active:    true,
	}
	switch itemType {
	case domain.VaultTypeFile:
		item.FileURL = "https://cdn.example.com/payload.zip"
	case domain.VaultTypeText:
		item.SecretText = "the secret"
	case domain.VaultTypeQnA:
		item.RequiresFanInput = true
	}
	require.NoError(t, e.vaultRepo.Create(item))
	return item
}

// fund awards points to fan via a donation of points*10, exercising the earn
// rule on the way.
func (e *testEnv) fund(t *testing.T, fanID, creatorID uint, points int64) {
	t.Helper()
	awarded, err := e.pointsSvc.AwardForDonation(fanID, creatorID, points*10, fmt.Sprintf("order_%d_%d", fanID, points))
	require.NoError(t, err)
	require.Equal(t, points, awarded)
}

func (e *testEnv) bucket(t *testing.T, fanID, creatorID uint) int64 {
	t.Helper()
	b, err := e.pointRepo.GetBalance(fanID, creatorID)
	if err != nil {
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
		return 0
	}
	return b.Points
}

func (e *testEnv) aggregate(t *testing.T, userID uint) int64 {
	t.Helper()
	u, err := e.userRepo.GetByID(userID)
	require.NoError(t, err)
	return u.Points
}

func (e *testEnv) ledgerCount(t *testing.T, userID uint, txType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND type = ?", userID, txType).Count(&n).Error)
	return n
}

func (e *testEnv) notificationCount(t *testing.T, userID uint, notifType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, notifType).Count(&n).Error)
	return n
}
