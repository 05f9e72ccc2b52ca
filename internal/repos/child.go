package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sasamom-server/internal/logger"
	"sasamom-server/internal/models"
)

type ChildRepo interface {
	Create(ctx context.Context, tx *gorm.DB, child *models.Child) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Child, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*models.Child, error)
	ListByMother(ctx context.Context, tx *gorm.DB, motherID string) ([]*models.Child, error)
}

type childRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildRepo(db *gorm.DB, baseLog *logger.Logger) ChildRepo {
	return &childRepo{db: db, log: baseLog.With("repo", "ChildRepo")}
}

func (r *childRepo) Create(ctx context.Context, tx *gorm.DB, child *models.Child) error {
	return pick(ctx, r.db, tx).Omit(clause.Associations).Create(child).Error
}

func (r *childRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Child, error) {
	var c models.Child
	if err := pick(ctx, r.db, tx).Preload("Mother").First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *childRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*models.Child, error) {
	var out []*models.Child
	if err := pick(ctx, r.db, tx).Order("created_at asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *childRepo) ListByMother(ctx context.Context, tx *gorm.DB, motherID string) ([]*models.Child, error) {
	var out []*models.Child
	if err := pick(ctx, r.db, tx).Where("mother_id = ?", motherID).Order("created_at asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
