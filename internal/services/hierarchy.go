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

// The hierarchy services are route-layer plumbing: create entities with
// collision-free safe names and hand them back. Permission checks live with
// the route layer.

type GroupService interface {
	Create(ctx context.Context, name string) (*types.Group, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Group, error)
}

type ProjectService interface {
	Create(ctx context.Context, groupID uuid.UUID, name string) (*types.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Project, error)
}

type SampleService interface {
	Create(ctx context.Context, projectID uuid.UUID, name, scientist string) (*types.Sample, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Sample, error)
}

type groupService struct {
	db        *gorm.DB
	log       *logger.Logger
	groupRepo repos.GroupRepo
}

func NewGroupService(db *gorm.DB, baseLog *logger.Logger, groupRepo repos.GroupRepo) GroupService {
	return &groupService{db: db, log: baseLog.With("service", "GroupService"), groupRepo: groupRepo}
}

func (s *groupService) Create(ctx context.Context, name string) (*types.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}
	safeName := types.DedupeSafeName(types.SafeName(name), func(candidate string) bool {
		taken, err := s.groupRepo.SafeNameTaken(ctx, nil, candidate)
		return err == nil && taken
	})
	group := &types.Group{ID: uuid.New(), Name: name, SafeName: safeName}
	if _, err := s.groupRepo.Create(ctx, nil, []*types.Group{group}); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

func (s *groupService) Get(ctx context.Context, id uuid.UUID) (*types.Group, error) {
	return s.groupRepo.GetByID(ctx, nil, id)
}

type projectService struct {
	db          *gorm.DB
	log         *logger.Logger
	groupRepo   repos.GroupRepo
	projectRepo repos.ProjectRepo
}

func NewProjectService(db *gorm.DB, baseLog *logger.Logger, groupRepo repos.GroupRepo, projectRepo repos.ProjectRepo) ProjectService {
	return &projectService{
		db:          db,
		log:         baseLog.With("service", "ProjectService"),
		groupRepo:   groupRepo,
		projectRepo: projectRepo,
	}
}

func (s *projectService) Create(ctx context.Context, groupID uuid.UUID, name string) (*types.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if _, err := s.groupRepo.GetByID(ctx, nil, groupID); err != nil {
		return nil, fmt.Errorf("load group %s: %w", groupID, err)
	}
	safeName := types.DedupeSafeName(types.SafeName(name), func(candidate string) bool {
		taken, err := s.projectRepo.SafeNameTaken(ctx, nil, groupID, candidate)
		return err == nil && taken
	})
	project := &types.Project{ID: uuid.New(), GroupID: groupID, Name: name, SafeName: safeName}
	if _, err := s.projectRepo.Create(ctx, nil, []*types.Project{project}); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*types.Project, error) {
	return s.projectRepo.GetByID(ctx, nil, id)
}

type sampleService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	sampleRepo  repos.SampleRepo
}

func NewSampleService(db *gorm.DB, baseLog *logger.Logger, projectRepo repos.ProjectRepo, sampleRepo repos.SampleRepo) SampleService {
	return &sampleService{
		db:          db,
		log:         baseLog.With("service", "SampleService"),
		projectRepo: projectRepo,
		sampleRepo:  sampleRepo,
	}
}

func (s *sampleService) Create(ctx context.Context, projectID uuid.UUID, name, scientist string) (*types.Sample, error) {
	if name == "" {
		return nil, fmt.Errorf("sample name is required")
	}
	if _, err := s.projectRepo.GetByID(ctx, nil, projectID); err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	safeName := types.DedupeSafeName(types.SafeName(name), func(candidate string) bool {
		taken, err := s.sampleRepo.SafeNameTaken(ctx, nil, projectID, candidate)
		return err == nil && taken
	})
	sample := &types.Sample{ID: uuid.New(), ProjectID: projectID, Name: name, SafeName: safeName, Scientist: scientist}
	if _, err := s.sampleRepo.Create(ctx, nil, []*types.Sample{sample}); err != nil {
		return nil, fmt.Errorf("create sample: %w", err)
	}
	return sample, nil
}

func (s *sampleService) Get(ctx context.Context, id uuid.UUID) (*types.Sample, error) {
	return s.sampleRepo.GetByID(ctx, nil, id)
}
