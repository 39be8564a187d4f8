package database

import (
	"errors"
	"fmt"
	"time"

	"go-pdv/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 5

var retryDelay = 2 * time.Second

// Connect opens the database for the given driver and syncs the schema.
// Drivers: mysql (default), postgres, sqlite.
func Connect(driver, dsn string, verbose bool) (*gorm.DB, error) {
	// 1. Pick the dialect
	if dsn == "" {
		return nil, errors.New("DB_DSN is not set, please configure your database")
	}
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	// 2. Connect with GORM (wait for the DB to be ready)
	var db *gorm.DB
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:         logger.Default.LogMode(level),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Warn().Err(err).Msgf("failed to connect to database, retrying in %s (%d/%d)", retryDelay, i+1, connectAttempts)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", connectAttempts, err)
	}
	log.Info().Str("driver", driver).Msg("connected to database")

	// 3. Auto-Migrate
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Msg("database schema synced")
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Product{},
		&models.StockMovement{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.SalePayment{},
		&models.Cashier{},
		&models.CashierMovement{},
		&models.FiscalConfig{},
	)
}
