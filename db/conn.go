// Package db opens the row store and keeps its schema up to date
package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/pkg/util"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a sqlite or postgres database and migrates every table
func New(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		if err := checkMounted(dsn); err != nil {
			return nil, err
		}

		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	// A second connection to an in-memory sqlite database is a different,
	// empty database
	if driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	zap.L().Debug("Database ready", zap.String("driver", driver))

	return db, nil
}

// Inside a container the sqlite file must come from a volume, otherwise it
// is lost with the container
func checkMounted(dsn string) error {
	if !util.IsRunningInDocker() || strings.Contains(dsn, ":memory:") {
		return nil
	}

	file, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("SQLite database file %s not mounted, please use docker volumes to mount it", file)
	}

	return nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Account{},
		&model.EmailToken{},
		&model.Session{},
		&model.User{},
		&model.File{},
	)
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}
