package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

// The hierarchy repos are deliberately small. Groups, projects and samples
// are plain CRUD owned by the route layer; this core only needs them to
// exist, carry safe names, and be traversable for path derivation.

type GroupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, groups []*types.Group) ([]*types.Group, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error)
	SafeNameTaken(ctx context.Context, tx *gorm.DB, safeName string) (bool, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error)
	SafeNameTaken(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, safeName string) (bool, error)
}

type SampleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Sample, error)
	SafeNameTaken(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, safeName string) (bool, error)
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{db: db, log: baseLog.With("repo", "GroupRepo")}
}

func (r *groupRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *groupRepo) Create(ctx context.Context, tx *gorm.DB, groups []*types.Group) ([]*types.Group, error) {
	if len(groups) == 0 {
		return []*types.Group{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error) {
	var g types.Group
	if err := r.conn(tx).WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) SafeNameTaken(ctx context.Context, tx *gorm.DB, safeName string) (bool, error) {
	var n int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Group{}).
		Where("safe_name = ?", safeName).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, projects []*types.Project) ([]*types.Project, error) {
	if len(projects) == 0 {
		return []*types.Project{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error) {
	var p types.Project
	if err := r.conn(tx).WithContext(ctx).Preload("Group").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) SafeNameTaken(ctx context.Context, tx *gorm.DB, groupID uuid.UUID, safeName string) (bool, error) {
	var n int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Project{}).
		Where("group_id = ? AND safe_name = ?", groupID, safeName).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

type sampleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSampleRepo(db *gorm.DB, baseLog *logger.Logger) SampleRepo {
	return &sampleRepo{db: db, log: baseLog.With("repo", "SampleRepo")}
}

func (r *sampleRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sampleRepo) Create(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error) {
	if len(samples) == 0 {
		return []*types.Sample{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *sampleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Sample, error) {
	var s types.Sample
	if err := r.conn(tx).WithContext(ctx).Preload("Project.Group").Preload("Project").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sampleRepo) SafeNameTaken(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, safeName string) (bool, error) {
	var n int64
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Sample{}).
		Where("project_id = ? AND safe_name = ?", projectID, safeName).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
