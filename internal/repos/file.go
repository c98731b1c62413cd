package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

type FileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, files []*types.File) ([]*types.File, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.File, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
}

type fileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFileRepo(db *gorm.DB, baseLog *logger.Logger) FileRepo {
	return &fileRepo{db: db, log: baseLog.With("repo", "FileRepo")}
}

func (r *fileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *fileRepo) Create(ctx context.Context, tx *gorm.DB, files []*types.File) ([]*types.File, error) {
	if len(files) == 0 {
		return []*types.File{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.File, error) {
	var file types.File
	if err := r.conn(tx).WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.conn(tx).WithContext(ctx).
		Model(&types.File{}).
		Where("id = ?", id).
		Updates(fields).Error
}
