package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
	Silent bool
}

// Open connects to the configured database without migrating it.
// Unique violations are translated to gorm.ErrDuplicatedKey on every driver.
func Open(config DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "", "mysql":
		dialector = mysql.Open(config.DSN)
	case "postgres":
		dialector = postgres.Open(config.DSN)
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(config.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	gormConfig := &gorm.Config{TranslateError: true}
	if config.Silent {
		gormConfig.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	}
	return gorm.Open(dialector, gormConfig)
}

// sqliteBusyTimeout outlasts a reminder transaction: one send with its
// timeout and retries happens while the write lock is held.
const sqliteBusyTimeout = 60 * time.Second

// SQLiteDSN makes every SQLite transaction take the write lock at BEGIN,
// since SQLite ignores SELECT ... FOR UPDATE. Parameters already in dsn win.
func SQLiteDSN(dsn string) string {
	var extra []string
	if !strings.Contains(dsn, "_txlock=") {
		extra = append(extra, "_txlock=immediate")
	}
	if !strings.Contains(dsn, "_busy_timeout=") && !strings.Contains(dsn, "_timeout=") {
		extra = append(extra, fmt.Sprintf("_busy_timeout=%d", sqliteBusyTimeout.Milliseconds()))
	}
	if len(extra) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(extra, "&")
}

// AutoMigrate creates or updates every table the server owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Mother{},
		&Pregnancy{},
		&Child{},
		&Vaccination{},
		&ScheduledDose{},
		&ReminderLog{},
	)
}

// InitDB initializes database connection
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
