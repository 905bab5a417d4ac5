package database

import (
	"log"

	"vital/config"
	"vital/internal/domain"
	"vital/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		// Unique-key conflicts must surface as gorm.ErrDuplicatedKey: the
		// materializer's idempotency depends on telling them apart from
		// other storage failures.
		TranslateError: true,
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

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Order{},
		&models.Membership{},
		&models.LmnRecord{},
		&models.InvoiceRecord{},
		&models.AdminUser{},
	)
}

// SeedAdmin creates the initial support login when ADMIN_PASSWORD is set and
// the account does not exist yet.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	if cfg.SeedPassword == "" {
		return
	}
	var count int64
	db.Model(&models.AdminUser{}).Where("email = ?", cfg.SeedEmail).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[database] seed admin hash: %v", err)
		return
	}
	if err := db.Create(&models.AdminUser{
		Email:        cfg.SeedEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}).Error; err != nil {
		log.Printf("[database] seed admin: %v", err)
	}
}
