package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
)

type MotherRepo interface {
	Create(ctx context.Context, tx *gorm.DB, mother *models.Mother) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Mother, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Mother, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	HasChildren(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	CreatePregnancy(ctx context.Context, tx *gorm.DB, p *models.Pregnancy) error
	LatestPregnancy(ctx context.Context, tx *gorm.DB, motherID string) (*models.Pregnancy, error)
}

type motherRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMotherRepo(db *gorm.DB, baseLog *logger.Logger) MotherRepo {
	return &motherRepo{db: db, log: baseLog.With("repo", "MotherRepo")}
}

func (r *motherRepo) Create(ctx context.Context, tx *gorm.DB, mother *models.Mother) error {
	return pick(ctx, r.db, tx).Create(mother).Error
}

func (r *motherRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Mother, error) {
	var m models.Mother
	if err := pick(ctx, r.db, tx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *motherRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Mother, error) {
	var out []*models.Mother
	if err := pick(ctx, r.db, tx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the mother; children, pregnancies and doses go with her
// through ON DELETE CASCADE.
func (r *motherRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	res := pick(ctx, r.db, tx).Where("id = ?", id).Delete(&models.Mother{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.Info("Mother deleted", "mother_id", id)
	return nil
}

func (r *motherRepo) HasChildren(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var n int64
	if err := pick(ctx, r.db, tx).Model(&models.Child{}).Where("mother_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *motherRepo) CreatePregnancy(ctx context.Context, tx *gorm.DB, p *models.Pregnancy) error {
	return pick(ctx, r.db, tx).Omit(clause.Associations).Create(p).Error
}

func (r *motherRepo) LatestPregnancy(ctx context.Context, tx *gorm.DB, motherID string) (*models.Pregnancy, error) {
	var p models.Pregnancy
	err := pick(ctx, r.db, tx).
		Where("mother_id = ?", motherID).
		Order("created_at desc").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
