package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sasamom-server/internal/logger"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrVaccinationInUse  = errors.New("vaccination is referenced by scheduled doses")
	ErrAlreadyCompleted  = errors.New("dose already completed")
	ErrInvalidCompletion = errors.New("completion date required")
)

// Repos bundles every repository over one connection.
type Repos struct {
	DB           *gorm.DB
	Mothers      MotherRepo
	Children     ChildRepo
	Vaccinations VaccinationRepo
	Doses        DoseRepo
	ReminderLogs ReminderLogRepo
}

func New(db *gorm.DB, log *logger.Logger) *Repos {
	return &Repos{
		DB:           db,
		Mothers:      NewMotherRepo(db, log),
		Children:     NewChildRepo(db, log),
		Vaccinations: NewVaccinationRepo(db, log),
		Doses:        NewDoseRepo(db, log),
		ReminderLogs: NewReminderLogRepo(db, log),
	}
}

// pick returns tx when the caller is inside a transaction, db otherwise.
func pick(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = db
	}
	return tx.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
