package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/testutil"
)

func TestGroupCreate_DedupesSafeNames(t *testing.T) {
	db := testutil.OpenDB(t)
	log := logger.NewNop()
	svc := NewGroupService(db, log, repos.NewGroupRepo(db, log))
	ctx := context.Background()

	first, err := svc.Create(ctx, "Plant Pathology")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.SafeName != "plant_pathology" {
		t.Fatalf("safe name: want=plant_pathology got=%q", first.SafeName)
	}

	// Same human name again: different safe name, both records live.
	second, err := svc.Create(ctx, "Plant  Pathology!")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.SafeName != "plant_pathology_2" {
		t.Fatalf("safe name: want=plant_pathology_2 got=%q", second.SafeName)
	}
}

func TestProjectCreate_RequiresExistingGroup(t *testing.T) {
	db := testutil.OpenDB(t)
	log := logger.NewNop()
	groupRepo := repos.NewGroupRepo(db, log)
	svc := NewProjectService(db, log, groupRepo, repos.NewProjectRepo(db, log))

	if _, err := svc.Create(context.Background(), uuid.New(), "Orphan Project"); err == nil {
		t.Fatalf("expected error for missing group")
	}
}

func TestSampleCreate_SafeNamesScopedToProject(t *testing.T) {
	db := testutil.OpenDB(t)
	log := logger.NewNop()
	ctx := context.Background()
	groupRepo := repos.NewGroupRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	groupSvc := NewGroupService(db, log, groupRepo)
	projectSvc := NewProjectService(db, log, groupRepo, projectRepo)
	sampleSvc := NewSampleService(db, log, projectRepo, repos.NewSampleRepo(db, log))

	group, err := groupSvc.Create(ctx, "Lab")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	projA, err := projectSvc.Create(ctx, group.ID, "Project A")
	if err != nil {
		t.Fatalf("create project A: %v", err)
	}
	projB, err := projectSvc.Create(ctx, group.ID, "Project B")
	if err != nil {
		t.Fatalf("create project B: %v", err)
	}

	inA, err := sampleSvc.Create(ctx, projA.ID, "Leaf Sample", "jdoe")
	if err != nil {
		t.Fatalf("create sample in A: %v", err)
	}
	// The same name under a different project needs no suffix.
	inB, err := sampleSvc.Create(ctx, projB.ID, "Leaf Sample", "jdoe")
	if err != nil {
		t.Fatalf("create sample in B: %v", err)
	}
	if inA.SafeName != "leaf_sample" || inB.SafeName != "leaf_sample" {
		t.Fatalf("expected identical safe names across projects, got %q and %q", inA.SafeName, inB.SafeName)
	}

	// But a sibling in the same project gets suffixed.
	again, err := sampleSvc.Create(ctx, projA.ID, "Leaf Sample", "jdoe")
	if err != nil {
		t.Fatalf("create duplicate in A: %v", err)
	}
	if again.SafeName != "leaf_sample_2" {
		t.Fatalf("safe name: want=leaf_sample_2 got=%q", again.SafeName)
	}
}
