package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
)

type ReminderLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.ReminderLog) error
	ListByDose(ctx context.Context, tx *gorm.DB, doseID string) ([]*models.ReminderLog, error)
}

type reminderLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReminderLogRepo(db *gorm.DB, baseLog *logger.Logger) ReminderLogRepo {
	return &reminderLogRepo{db: db, log: baseLog.With("repo", "ReminderLogRepo")}
}

func (r *reminderLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *models.ReminderLog) error {
	return pick(ctx, r.db, tx).Omit(clause.Associations).Create(entry).Error
}

func (r *reminderLogRepo) ListByDose(ctx context.Context, tx *gorm.DB, doseID string) ([]*models.ReminderLog, error) {
	var out []*models.ReminderLog
	if err := pick(ctx, r.db, tx).Where("dose_id = ?", doseID).Order("attempted_at asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
