package database

import (
	"sygil/config"
	"sygil/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	// Legacy rows stored '' for unchosen usernames; NULL them out so the
	// unique index does not collide on the empty string.
	_ = db.Exec("UPDATE users SET username = NULL WHERE username = ''")
	return db.AutoMigrate(
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
	)
}
