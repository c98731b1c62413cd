package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

type RunService interface {
	Create(ctx context.Context, sampleID uuid.UUID, name string) (*types.Run, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Run, error)
	GetWithReads(ctx context.Context, id uuid.UUID) (*types.Run, []*types.Read, error)
	ListBySample(ctx context.Context, sampleID uuid.UUID) ([]*types.Run, error)
}

type runService struct {
	db         *gorm.DB
	log        *logger.Logger
	sampleRepo repos.SampleRepo
	runRepo    repos.RunRepo
	readRepo   repos.ReadRepo
}

func NewRunService(db *gorm.DB, baseLog *logger.Logger, sampleRepo repos.SampleRepo, runRepo repos.RunRepo, readRepo repos.ReadRepo) RunService {
	return &runService{
		db:         db,
		log:        baseLog.With("service", "RunService"),
		sampleRepo: sampleRepo,
		runRepo:    runRepo,
		readRepo:   readRepo,
	}
}

func (s *runService) Create(ctx context.Context, sampleID uuid.UUID, name string) (*types.Run, error) {
	if name == "" {
		return nil, fmt.Errorf("run name is required")
	}
	if _, err := s.sampleRepo.GetByID(ctx, nil, sampleID); err != nil {
		return nil, fmt.Errorf("load sample %s: %w", sampleID, err)
	}
	run := &types.Run{
		ID:                    uuid.New(),
		SampleID:              sampleID,
		Name:                  name,
		SafeName:              types.SafeName(name),
		Status:                types.RunStatusUninitiated,
		MD5VerificationStatus: types.MD5VerificationPending,
	}
	if _, err := s.runRepo.Create(ctx, nil, []*types.Run{run}); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func (s *runService) Get(ctx context.Context, id uuid.UUID) (*types.Run, error) {
	return s.runRepo.GetByIDWithHierarchy(ctx, nil, id)
}

func (s *runService) GetWithReads(ctx context.Context, id uuid.UUID) (*types.Run, []*types.Read, error) {
	run, err := s.runRepo.GetByIDWithHierarchy(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	reads, err := s.readRepo.GetByRunID(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	return run, reads, nil
}

func (s *runService) ListBySample(ctx context.Context, sampleID uuid.UUID) ([]*types.Run, error) {
	return s.runRepo.GetBySampleID(ctx, nil, sampleID)
}
