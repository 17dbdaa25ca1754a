package repository

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/pccr10001/ofonomock/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the journal database and migrates its tables. driver is
// "mysql" or anything else for pure Go SQLite.
func Open(driver, dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch driver {
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), cfg)
	default:
		if dsn == "" {
			dsn = "ofonomock.db"
		}
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database (%s): %w", driver, err)
	}

	if dsn == ":memory:" {
		// Every pooled connection would get its own empty in-memory database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&model.MethodCall{}, &model.SignalRecord{}, &model.Webhook{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
