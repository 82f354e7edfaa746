// database.go - Handles database connection and setup

package database // Declares the package name

import ( // Import required packages
	"context" // For the health ping
	"fmt"     // For wrapping errors
	"log"     // For startup logging

	"go-jobmarket-backend/config" // Project config
	"go-jobmarket-backend/models" // Users, jobs, applications

	"gorm.io/driver/postgres" // Postgres driver for GORM
	"gorm.io/driver/sqlite"   // SQLite driver for GORM
	"gorm.io/gorm"            // GORM ORM
	"gorm.io/gorm/logger"     // GORM query logger
)

// Connect opens the database selected by cfg and runs migrations.
// The returned handle is owned by the caller and released with Close.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite", "":
		dialector = sqlite.Open(sqliteDSN(cfg.DBPath))
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, err
	}
	log.Printf("[database] connected (%s)", dialector.Name())
	return db, nil
}

// Open wraps gorm.Open with the project settings and migrates the schema.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,                                // duplicate keys surface as gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(logger.Warn), // only slow queries and errors
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Auto-migrate the models (create tables and indexes if needed)
	if err := db.AutoMigrate(&models.User{}, &models.Job{}, &models.Application{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Ping checks that the underlying connection pool can reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqliteDSN turns on foreign keys for every pooled connection.
func sqliteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}
