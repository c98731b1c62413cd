package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/testutil"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

func newRun(status types.RunStatus, md5Status types.MD5VerificationStatus) *types.Run {
	return &types.Run{
		ID:                    uuid.New(),
		SampleID:              uuid.New(),
		Name:                  "Run 1",
		SafeName:              "run_1",
		Status:                status,
		MD5VerificationStatus: md5Status,
	}
}

func TestRunRepo_TransitionStatus_RejectsIllegalMove(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewRunRepo(db, logger.NewNop())
	ctx := context.Background()

	run := newRun(types.RunStatusComplete, types.MD5VerificationPending)
	if _, err := repo.Create(ctx, nil, []*types.Run{run}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	err := repo.TransitionStatus(ctx, nil, run.ID, types.RunStatusProcessing, nil)
	if err == nil {
		t.Fatalf("expected complete -> processing to be rejected")
	}

	got, err := repo.GetByID(ctx, nil, run.ID)
	if err != nil {
		t.Fatalf("reload run: %v", err)
	}
	if got.Status != types.RunStatusComplete {
		t.Fatalf("status changed despite rejection: %s", got.Status)
	}
}

func TestRunRepo_TransitionStatus_WritesExtraFields(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewRunRepo(db, logger.NewNop())
	ctx := context.Background()

	run := newRun(types.RunStatusProcessing, types.MD5VerificationPending)
	if _, err := repo.Create(ctx, nil, []*types.Run{run}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	err := repo.TransitionStatus(ctx, nil, run.ID, types.RunStatusError, map[string]any{
		"status_error":            "disk full",
		"md5_verification_status": types.MD5VerificationFailed,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, run.ID)
	if err != nil {
		t.Fatalf("reload run: %v", err)
	}
	if got.Status != types.RunStatusError {
		t.Fatalf("status: want=error got=%s", got.Status)
	}
	if got.StatusError != "disk full" {
		t.Fatalf("status_error: want=%q got=%q", "disk full", got.StatusError)
	}
	if got.MD5VerificationStatus != types.MD5VerificationFailed {
		t.Fatalf("md5 status: want=failed got=%s", got.MD5VerificationStatus)
	}
}

func TestRunRepo_FindNeedingVerification_FiltersAndOrders(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewRunRepo(db, logger.NewNop())
	ctx := context.Background()

	older := newRun(types.RunStatusComplete, types.MD5VerificationPending)
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	newer := newRun(types.RunStatusComplete, types.MD5VerificationPending)
	newer.CreatedAt = time.Now().Add(-1 * time.Hour)
	exhausted := newRun(types.RunStatusComplete, types.MD5VerificationPending)
	exhausted.MD5VerificationAttempts = 3
	failed := newRun(types.RunStatusComplete, types.MD5VerificationFailed)
	stillProcessing := newRun(types.RunStatusProcessing, types.MD5VerificationPending)

	all := []*types.Run{older, newer, exhausted, failed, stillProcessing}
	if _, err := repo.Create(ctx, nil, all); err != nil {
		t.Fatalf("create runs: %v", err)
	}

	got, err := repo.FindNeedingVerification(ctx, nil, 10, 3)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 eligible runs, got %d", len(got))
	}
	if got[0].ID != older.ID || got[1].ID != newer.ID {
		t.Fatalf("expected oldest-first order, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestRunRepo_FindNeedingVerification_HonorsLimit(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewRunRepo(db, logger.NewNop())
	ctx := context.Background()

	var runs []*types.Run
	for i := 0; i < 5; i++ {
		runs = append(runs, newRun(types.RunStatusComplete, types.MD5VerificationPending))
	}
	if _, err := repo.Create(ctx, nil, runs); err != nil {
		t.Fatalf("create runs: %v", err)
	}

	got, err := repo.FindNeedingVerification(ctx, nil, 2, 3)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(got))
	}
}

func TestRunRepo_FindStaleProcessing(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewRunRepo(db, logger.NewNop())
	ctx := context.Background()

	stale := newRun(types.RunStatusProcessing, types.MD5VerificationPending)
	stale.CreatedAt = time.Now().Add(-25 * time.Hour)
	fresh := newRun(types.RunStatusProcessing, types.MD5VerificationPending)
	fresh.CreatedAt = time.Now().Add(-1 * time.Hour)
	done := newRun(types.RunStatusComplete, types.MD5VerificationPending)
	done.CreatedAt = time.Now().Add(-48 * time.Hour)

	if _, err := repo.Create(ctx, nil, []*types.Run{stale, fresh, done}); err != nil {
		t.Fatalf("create runs: %v", err)
	}

	got, err := repo.FindStaleProcessing(ctx, nil, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != stale.ID {
		t.Fatalf("expected only the stale processing run, got %d", len(got))
	}
}

func TestRunRepo_GetByIDWithHierarchy_LoadsChain(t *testing.T) {
	db := testutil.OpenDB(t)
	log := logger.NewNop()
	ctx := context.Background()

	group := &types.Group{ID: uuid.New(), Name: "Lab", SafeName: "lab"}
	project := &types.Project{ID: uuid.New(), GroupID: group.ID, Name: "Proj", SafeName: "proj"}
	sample := &types.Sample{ID: uuid.New(), ProjectID: project.ID, Name: "Samp", SafeName: "samp"}
	if _, err := NewGroupRepo(db, log).Create(ctx, nil, []*types.Group{group}); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := NewProjectRepo(db, log).Create(ctx, nil, []*types.Project{project}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := NewSampleRepo(db, log).Create(ctx, nil, []*types.Sample{sample}); err != nil {
		t.Fatalf("create sample: %v", err)
	}

	repo := NewRunRepo(db, log)
	run := newRun(types.RunStatusUninitiated, types.MD5VerificationPending)
	run.SampleID = sample.ID
	if _, err := repo.Create(ctx, nil, []*types.Run{run}); err != nil {
		t.Fatalf("create run: %v", err)
	}

	got, err := repo.GetByIDWithHierarchy(ctx, nil, run.ID)
	if err != nil {
		t.Fatalf("get with hierarchy: %v", err)
	}
	path, err := got.RelativePath()
	if err != nil {
		t.Fatalf("RelativePath: %v", err)
	}
	if path != "lab/proj/samp/run_1" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestRunRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewRunRepo(db, logger.NewNop())

	_, err := repo.GetByID(context.Background(), nil, uuid.New())
	if err == nil {
		t.Fatalf("expected error for missing run")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
