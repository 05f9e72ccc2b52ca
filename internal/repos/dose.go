package repos

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
	"sasamom-server/internal/utils"
)

type DoseRepo interface {
	// Create inserts a new dose. A second active dose for the same
	// (child, vaccination) fails with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, tx *gorm.DB, dose *models.ScheduledDose) error
	ListByChild(ctx context.Context, tx *gorm.DB, childID string) ([]*models.ScheduledDose, error)
	// ListDueIDs returns incomplete doses scheduled in [from, to], oldest first.
	ListDueIDs(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]string, error)
	// LockByID reads one dose with its child, mother and vaccination under an
	// exclusive row lock. tx must be a transaction.
	LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.ScheduledDose, error)
	// MarkReminderSent flips one stage flag from false to true on an
	// incomplete dose. It reports whether the row changed.
	MarkReminderSent(ctx context.Context, tx *gorm.DB, id string, stage models.ReminderStage) (bool, error)
	// MarkCompleted records the clinical completion of a dose.
	MarkCompleted(ctx context.Context, tx *gorm.DB, id string, at time.Time) (*models.ScheduledDose, error)
	ListUpcomingForMother(ctx context.Context, tx *gorm.DB, motherID string, from time.Time) ([]*models.ScheduledDose, error)
	ListForReport(ctx context.Context, tx *gorm.DB) ([]*models.ScheduledDose, error)
}

type doseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDoseRepo(db *gorm.DB, baseLog *logger.Logger) DoseRepo {
	return &doseRepo{db: db, log: baseLog.With("repo", "DoseRepo")}
}

func (r *doseRepo) Create(ctx context.Context, tx *gorm.DB, dose *models.ScheduledDose) error {
	return pick(ctx, r.db, tx).Omit(clause.Associations).Create(dose).Error
}

func (r *doseRepo) ListByChild(ctx context.Context, tx *gorm.DB, childID string) ([]*models.ScheduledDose, error) {
	var out []*models.ScheduledDose
	err := pick(ctx, r.db, tx).
		Preload("Vaccination").
		Where("child_id = ?", childID).
		Order("scheduled_date asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *doseRepo) ListDueIDs(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]string, error) {
	var ids []string
	err := pick(ctx, r.db, tx).
		Model(&models.ScheduledDose{}).
		Where("completed = ?", false).
		Where("scheduled_date >= ? AND scheduled_date < ?", utils.DateOf(from), utils.AddDays(to, 1)).
		Order("scheduled_date asc").
		Order("created_at asc").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *doseRepo) LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.ScheduledDose, error) {
	if tx == nil {
		return nil, fmt.Errorf("LockByID requires a transaction")
	}
	var dose models.ScheduledDose
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Child.Mother").
		Preload("Vaccination").
		First(&dose, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &dose, nil
}

func (r *doseRepo) MarkReminderSent(ctx context.Context, tx *gorm.DB, id string, stage models.ReminderStage) (bool, error) {
	var column string
	switch stage {
	case models.StageDayBefore:
		column = "reminder_day_before_sent"
	case models.StageOnDay:
		column = "reminder_on_day_sent"
	default:
		return false, fmt.Errorf("unknown reminder stage %q", stage)
	}
	res := pick(ctx, r.db, tx).
		Model(&models.ScheduledDose{}).
		Where("id = ? AND completed = ? AND "+column+" = ?", id, false, false).
		Update(column, true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *doseRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, id string, at time.Time) (*models.ScheduledDose, error) {
	if at.IsZero() {
		return nil, ErrInvalidCompletion
	}
	var updated *models.ScheduledDose
	err := pick(ctx, r.db, tx).Transaction(func(txx *gorm.DB) error {
		var dose models.ScheduledDose
		if err := txx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&dose, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if dose.Completed {
			return ErrAlreadyCompleted
		}
		// completed, completed_at and the released active key move together.
		err := txx.Model(&models.ScheduledDose{}).
			Where("id = ? AND completed = ?", id, false).
			Updates(map[string]interface{}{
				"completed":    true,
				"completed_at": at,
				"active_key":   nil,
			}).Error
		if err != nil {
			return err
		}
		dose.Completed = true
		dose.CompletedAt = &at
		dose.ActiveKey = nil
		updated = &dose
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Info("Dose completed", "dose_id", id, "completed_at", at)
	return updated, nil
}

func (r *doseRepo) ListUpcomingForMother(ctx context.Context, tx *gorm.DB, motherID string, from time.Time) ([]*models.ScheduledDose, error) {
	var out []*models.ScheduledDose
	err := pick(ctx, r.db, tx).
		Joins("JOIN children ON children.id = scheduled_doses.child_id").
		Preload("Child").
		Preload("Vaccination").
		Where("children.mother_id = ?", motherID).
		Where("scheduled_doses.completed = ?", false).
		Where("scheduled_doses.scheduled_date >= ?", utils.DateOf(from)).
		Order("scheduled_doses.scheduled_date asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *doseRepo) ListForReport(ctx context.Context, tx *gorm.DB) ([]*models.ScheduledDose, error) {
	var out []*models.ScheduledDose
	err := pick(ctx, r.db, tx).
		Preload("Child.Mother").
		Preload("Vaccination").
		Order("scheduled_date asc").
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
