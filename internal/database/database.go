// Package database opens the SQLite handle shared by the server and the CLI commands.
package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/axellelanca/visitorpulse/internal/models"
)

// Open connects to the SQLite database name.
//
// Transactions are BEGIN IMMEDIATE: a transaction that reads before it writes
// would otherwise hit SQLITE_BUSY on lock upgrade without honouring the busy
// timeout. With the write lock taken up front, concurrent writers queue for at
// most busyTimeoutMs.
func Open(name string, busyTimeoutMs int) (*gorm.DB, error) {
	params := []string{"_txlock=immediate"}
	if busyTimeoutMs > 0 {
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMs))
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	dsn := name + sep + strings.Join(params, "&")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", name, err)
	}
	return db, nil
}

// Migrate creates or updates the visitors and sessions tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Visitor{}, &models.Session{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	return sqlDB.Close()
}
