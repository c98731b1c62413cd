package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

type AdditionalFileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, files []*types.AdditionalFile) ([]*types.AdditionalFile, error)
	GetByParent(ctx context.Context, tx *gorm.DB, parentType string, parentID uuid.UUID) ([]*types.AdditionalFile, error)
}

type additionalFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdditionalFileRepo(db *gorm.DB, baseLog *logger.Logger) AdditionalFileRepo {
	return &additionalFileRepo{db: db, log: baseLog.With("repo", "AdditionalFileRepo")}
}

func (r *additionalFileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *additionalFileRepo) Create(ctx context.Context, tx *gorm.DB, files []*types.AdditionalFile) ([]*types.AdditionalFile, error) {
	if len(files) == 0 {
		return []*types.AdditionalFile{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *additionalFileRepo) GetByParent(ctx context.Context, tx *gorm.DB, parentType string, parentID uuid.UUID) ([]*types.AdditionalFile, error) {
	var out []*types.AdditionalFile
	if err := r.conn(tx).WithContext(ctx).
		Preload("File").
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
