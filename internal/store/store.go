package store

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/logger"
	"github.com/psychmag/psychmag/internal/models"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// newGormLogger reports slow queries and real errors. Missing rows are the
// normal answer for visitors outside the allowlist and are not logged.
func newGormLogger(out io.Writer) gormlogger.Interface {
	return gormlogger.New(log.New(out, "\r\n", log.LstdFlags), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func New(driver, dsn string, cfg *config.Config) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(os.Stderr),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if NormalizeDriver(driver) == DriverSQLite {
		// A single connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Magazine{},
		&models.BlogPost{},
		&models.GallerySlide{},
		&models.AboutContent{},
		&models.ContactMessage{},
		&models.SignInLink{},
		&models.RevokedToken{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db}

	// Seed default data
	if err := store.seedData(cfg); err != nil {
		logger.Warningf("failed to seed data: %v", err)
	}

	return store, nil
}

func (s *Store) seedData(cfg *config.Config) error {
	var aboutCount int64
	if err := s.db.Model(&models.AboutContent{}).Count(&aboutCount).Error; err != nil {
		return err
	}
	if aboutCount == 0 {
		if err := s.db.Create(&models.AboutContent{ID: models.AboutContentID}).Error; err != nil {
			return err
		}
	}

	if cfg == nil {
		return nil
	}
	email := models.NormalizeEmail(cfg.BootstrapSuperAdmin)
	if email == "" {
		return nil
	}

	var adminCount int64
	if err := s.db.Model(&models.Admin{}).Count(&adminCount).Error; err != nil {
		return err
	}
	if adminCount > 0 {
		return nil
	}

	admin := &models.Admin{Email: email, IsSuperAdmin: true}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}
	logger.Infof("Seeded super admin: %s", email)
	return nil
}

// Health pings the underlying database connection
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB returns the underlying gorm handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the database connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound translates gorm's sentinel into the store's own.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// requireAffected returns ErrRecordNotFound for writes that matched nothing.
func requireAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
