package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

type RunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, runs []*types.Run) ([]*types.Run, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Run, error)
	GetByIDWithHierarchy(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Run, error)
	GetBySampleID(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID) ([]*types.Run, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, to types.RunStatus, extra map[string]any) error
	TransitionMD5Status(ctx context.Context, tx *gorm.DB, id uuid.UUID, to types.MD5VerificationStatus, extra map[string]any) error
	FindNeedingVerification(ctx context.Context, tx *gorm.DB, limit, maxAttempts int) ([]*types.Run, error)
	FindStaleProcessing(ctx context.Context, tx *gorm.DB, olderThan time.Time) ([]*types.Run, error)
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return &runRepo{db: db, log: baseLog.With("repo", "RunRepo")}
}

func (r *runRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *runRepo) Create(ctx context.Context, tx *gorm.DB, runs []*types.Run) ([]*types.Run, error) {
	if len(runs) == 0 {
		return []*types.Run{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *runRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Run, error) {
	var run types.Run
	if err := r.conn(tx).WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) GetByIDWithHierarchy(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Run, error) {
	var run types.Run
	if err := r.conn(tx).WithContext(ctx).
		Preload("Sample.Project.Group").
		Preload("Sample.Project").
		Preload("Sample").
		First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) GetBySampleID(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID) ([]*types.Run, error) {
	var runs []*types.Run
	if err := r.conn(tx).WithContext(ctx).
		Where("sample_id = ?", sampleID).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *runRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.conn(tx).WithContext(ctx).
		Model(&types.Run{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// TransitionStatus validates the move against the run's current status
// before writing it, so an illegal transition (complete → processing and the
// like) is rejected here instead of silently persisted.
func (r *runRepo) TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, to types.RunStatus, extra map[string]any) error {
	run, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("load run %s: %w", id, err)
	}
	if err := types.ValidateRunStatusTransition(run.Status, to); err != nil {
		r.log.Error("Rejected run status transition", "run_id", id, "from", run.Status, "to", to)
		return err
	}
	fields := map[string]any{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	return r.UpdateFields(ctx, tx, id, fields)
}

func (r *runRepo) TransitionMD5Status(ctx context.Context, tx *gorm.DB, id uuid.UUID, to types.MD5VerificationStatus, extra map[string]any) error {
	run, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("load run %s: %w", id, err)
	}
	if err := types.ValidateMD5StatusTransition(run.MD5VerificationStatus, to); err != nil {
		r.log.Error("Rejected md5 status transition", "run_id", id, "from", run.MD5VerificationStatus, "to", to)
		return err
	}
	fields := map[string]any{"md5_verification_status": to}
	for k, v := range extra {
		fields[k] = v
	}
	return r.UpdateFields(ctx, tx, id, fields)
}

// FindNeedingVerification selects runs whose files are safely relocated but
// not yet checked, oldest first. Runs already marked failed are never
// re-selected; resubmission through the pipeline is the only way back in.
func (r *runRepo) FindNeedingVerification(ctx context.Context, tx *gorm.DB, limit, maxAttempts int) ([]*types.Run, error) {
	var runs []*types.Run
	if err := r.conn(tx).WithContext(ctx).
		Where("md5_verification_status = ?", types.MD5VerificationPending).
		Where("status = ?", types.RunStatusComplete).
		Where("md5_verification_attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *runRepo) FindStaleProcessing(ctx context.Context, tx *gorm.DB, olderThan time.Time) ([]*types.Run, error) {
	var runs []*types.Run
	if err := r.conn(tx).WithContext(ctx).
		Where("status = ?", types.RunStatusProcessing).
		Where("created_at < ?", olderThan).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
