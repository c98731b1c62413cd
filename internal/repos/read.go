package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

type ReadRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reads []*types.Read) ([]*types.Read, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Read, error)
	GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.Read, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
}

type readRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadRepo(db *gorm.DB, baseLog *logger.Logger) ReadRepo {
	return &readRepo{db: db, log: baseLog.With("repo", "ReadRepo")}
}

func (r *readRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *readRepo) Create(ctx context.Context, tx *gorm.DB, reads []*types.Read) ([]*types.Read, error) {
	if len(reads) == 0 {
		return []*types.Read{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&reads).Error; err != nil {
		return nil, err
	}
	return reads, nil
}

func (r *readRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Read, error) {
	var read types.Read
	if err := r.conn(tx).WithContext(ctx).
		Preload("File").
		First(&read, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &read, nil
}

func (r *readRepo) GetByRunID(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.Read, error) {
	var reads []*types.Read
	if err := r.conn(tx).WithContext(ctx).
		Preload("File").
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&reads).Error; err != nil {
		return nil, err
	}
	return reads, nil
}

func (r *readRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.conn(tx).WithContext(ctx).
		Model(&types.Read{}).
		Where("id = ?", id).
		Updates(fields).Error
}
