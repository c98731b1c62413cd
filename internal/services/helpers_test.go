package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/config"
	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/storage"
	"github.com/TeamMacLean/komondor-api-sub000/internal/testutil"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

type testEnv struct {
	db           *gorm.DB
	cfg          *config.Config
	runRepo      repos.RunRepo
	readRepo     repos.ReadRepo
	fileRepo     repos.FileRepo
	addRepo      repos.AdditionalFileRepo
	datastore    *storage.Datastore
	ingestion    IngestionService
	verification VerificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	log := logger.NewNop()
	cfg := &config.Config{
		DatastoreRoot:           filepath.Join(t.TempDir(), "datastore"),
		UploadStagingDir:        filepath.Join(t.TempDir(), "staging"),
		HPCTransferRoot:         filepath.Join(t.TempDir(), "hpc"),
		MaxVerificationAttempts: 3,
		VerificationBatchLimit:  10,
		IngestionBatchSize:      5,
		StaleRunMaxAgeHours:     24,
	}
	runRepo := repos.NewRunRepo(db, log)
	readRepo := repos.NewReadRepo(db, log)
	fileRepo := repos.NewFileRepo(db, log)
	addRepo := repos.NewAdditionalFileRepo(db, log)
	datastore := storage.NewDatastore(log, cfg, fileRepo)
	return &testEnv{
		db:           db,
		cfg:          cfg,
		runRepo:      runRepo,
		readRepo:     readRepo,
		fileRepo:     fileRepo,
		addRepo:      addRepo,
		datastore:    datastore,
		ingestion:    NewIngestionService(db, log, cfg, runRepo, readRepo, addRepo, datastore),
		verification: NewVerificationService(db, log, cfg, runRepo, readRepo),
	}
}

// createRun builds a full group/project/sample/run chain so hierarchy
// preloads and path derivation work. The run path is lab/proj/samp/run_1.
func (e *testEnv) createRun(t *testing.T, status types.RunStatus, md5Status types.MD5VerificationStatus) *types.Run {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()

	group := &types.Group{ID: uuid.New(), Name: "Lab", SafeName: "lab"}
	project := &types.Project{ID: uuid.New(), GroupID: group.ID, Name: "Proj", SafeName: "proj"}
	sample := &types.Sample{ID: uuid.New(), ProjectID: project.ID, Name: "Samp", SafeName: "samp"}
	if _, err := repos.NewGroupRepo(e.db, log).Create(ctx, nil, []*types.Group{group}); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := repos.NewProjectRepo(e.db, log).Create(ctx, nil, []*types.Project{project}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := repos.NewSampleRepo(e.db, log).Create(ctx, nil, []*types.Sample{sample}); err != nil {
		t.Fatalf("create sample: %v", err)
	}

	run := &types.Run{
		ID:                    uuid.New(),
		SampleID:              sample.ID,
		Name:                  "Run 1",
		SafeName:              "run_1",
		Status:                status,
		MD5VerificationStatus: md5Status,
	}
	if _, err := e.runRepo.Create(ctx, nil, []*types.Run{run}); err != nil {
		t.Fatalf("create run: %v", err)
	}
	return run
}

const testRunPath = "lab/proj/samp/run_1"

func md5Hex(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// stageHPCFile drops content where the cluster-side mover would have left it.
func (e *testEnv) stageHPCFile(t *testing.T, name, content string) {
	t.Helper()
	dir := filepath.Join(e.cfg.HPCTransferRoot, testRunPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir hpc dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("stage hpc file: %v", err)
	}
}

// stageDirectFile drops content under the opaque staging name the upload
// server would have assigned.
func (e *testEnv) stageDirectFile(t *testing.T, uploadName, content string) {
	t.Helper()
	if err := os.MkdirAll(e.cfg.UploadStagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.cfg.UploadStagingDir, uploadName), []byte(content), 0o644); err != nil {
		t.Fatalf("stage direct file: %v", err)
	}
}

func (e *testEnv) reloadRun(t *testing.T, id uuid.UUID) *types.Run {
	t.Helper()
	run, err := e.runRepo.GetByID(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("reload run: %v", err)
	}
	return run
}

func (e *testEnv) readsOf(t *testing.T, runID uuid.UUID) []*types.Read {
	t.Helper()
	reads, err := e.readRepo.GetByRunID(context.Background(), nil, runID)
	if err != nil {
		t.Fatalf("load reads: %v", err)
	}
	return reads
}
