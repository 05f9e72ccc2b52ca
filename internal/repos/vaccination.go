package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
)

type VaccinationRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.Vaccination, error)
	Create(ctx context.Context, tx *gorm.DB, v *models.Vaccination) error
	// FirstOrCreateByName inserts v unless a vaccination with the same name
	// exists. It reports whether a row was created.
	FirstOrCreateByName(ctx context.Context, tx *gorm.DB, v *models.Vaccination) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type vaccinationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVaccinationRepo(db *gorm.DB, baseLog *logger.Logger) VaccinationRepo {
	return &vaccinationRepo{db: db, log: baseLog.With("repo", "VaccinationRepo")}
}

func (r *vaccinationRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Vaccination, error) {
	var out []*models.Vaccination
	if err := pick(ctx, r.db, tx).Order("dose_order asc").Order("recommended_age_days asc").Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vaccinationRepo) Create(ctx context.Context, tx *gorm.DB, v *models.Vaccination) error {
	return pick(ctx, r.db, tx).Create(v).Error
}

func (r *vaccinationRepo) FirstOrCreateByName(ctx context.Context, tx *gorm.DB, v *models.Vaccination) (bool, error) {
	var existing models.Vaccination
	err := pick(ctx, r.db, tx).Where("name = ?", v.Name).First(&existing).Error
	if err == nil {
		*v = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := pick(ctx, r.db, tx).Create(v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete refuses to remove a catalog entry that any dose still references.
// The RESTRICT foreign key backs this up at the database.
func (r *vaccinationRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := pick(ctx, r.db, tx)
	var refs int64
	if err := db.Model(&models.ScheduledDose{}).Where("vaccination_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrVaccinationInUse
	}
	res := db.Where("id = ?", id).Delete(&models.Vaccination{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return ErrVaccinationInUse
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
