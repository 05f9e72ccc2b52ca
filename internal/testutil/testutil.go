package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
)

var dbSeq atomic.Int64

// Logger returns a logger that only surfaces warnings.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

// DB opens a fresh, migrated in-memory SQLite database private to the test.
// A single connection serializes transactions the way row locks would.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := models.Open(models.DatabaseConfig{Driver: "sqlite", DSN: dsn, Silent: true})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

// FilePath returns a fresh database file location private to the test.
func FilePath(tb testing.TB) string {
	tb.Helper()
	return filepath.Join(tb.TempDir(), "sasamom.db")
}

// FileDB opens a migrated file-backed SQLite database at path through
// models.InitDB with the driver's default connection pool, the way the
// server and CLI run it. Opening the same path twice gives two independent
// handles, like two processes.
func FileDB(tb testing.TB, path string) *gorm.DB {
	tb.Helper()
	dsn := path + "?_foreign_keys=on"
	db, err := models.InitDB(models.DatabaseConfig{Driver: "sqlite", DSN: dsn, Silent: true})
	if err != nil {
		tb.Fatalf("open file db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Date builds a UTC calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateMother inserts a mother with the given consent.
func CreateMother(tb testing.TB, db *gorm.DB, consent bool) *models.Mother {
	tb.Helper()
	m := &models.Mother{
		Name:     "Amina",
		Phone:    "0712345678",
		Language: "en",
		Consent:  consent,
		Hospital: "Kenyatta National Hospital",
	}
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("create mother: %v", err)
	}
	return m
}

// CreateChild inserts a child; dob may be nil.
func CreateChild(tb testing.TB, db *gorm.DB, mother *models.Mother, name string, dob *time.Time) *models.Child {
	tb.Helper()
	c := &models.Child{MotherID: mother.ID, Name: name, Gender: models.GenderFemale}
	if dob != nil {
		d := models.NewDate(*dob)
		c.DateOfBirth = &d
	}
	if err := db.Omit("Mother").Create(c).Error; err != nil {
		tb.Fatalf("create child: %v", err)
	}
	return c
}

// CreateVaccination inserts a catalog entry.
func CreateVaccination(tb testing.TB, db *gorm.DB, name string, ageDays, order int) *models.Vaccination {
	tb.Helper()
	v := &models.Vaccination{Name: name, RecommendedAgeDays: ageDays, DoseOrder: order}
	if err := db.Create(v).Error; err != nil {
		tb.Fatalf("create vaccination: %v", err)
	}
	return v
}

// CreateDose inserts an incomplete dose due on the given date.
func CreateDose(tb testing.TB, db *gorm.DB, child *models.Child, vac *models.Vaccination, due time.Time) *models.ScheduledDose {
	tb.Helper()
	d := &models.ScheduledDose{
		ChildID:       child.ID,
		VaccinationID: vac.ID,
		ScheduledDate: models.NewDate(due),
	}
	if err := db.Omit("Child", "Vaccination").Create(d).Error; err != nil {
		tb.Fatalf("create dose: %v", err)
	}
	return d
}

// ReloadDose reads a dose back from the database.
func ReloadDose(tb testing.TB, db *gorm.DB, id string) *models.ScheduledDose {
	tb.Helper()
	var d models.ScheduledDose
	if err := db.First(&d, "id = ?", id).Error; err != nil {
		tb.Fatalf("reload dose: %v", err)
	}
	return &d
}
