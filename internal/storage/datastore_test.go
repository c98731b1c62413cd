package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TeamMacLean/komondor-api-sub000/internal/config"
	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/testutil"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

func newTestDatastore(t *testing.T) (*Datastore, repos.FileRepo, *config.Config) {
	t.Helper()
	db := testutil.OpenDB(t)
	log := logger.NewNop()
	fileRepo := repos.NewFileRepo(db, log)
	cfg := &config.Config{
		DatastoreRoot:    filepath.Join(t.TempDir(), "datastore"),
		UploadStagingDir: filepath.Join(t.TempDir(), "staging"),
		HPCTransferRoot:  filepath.Join(t.TempDir(), "hpc"),
	}
	return NewDatastore(log, cfg, fileRepo), fileRepo, cfg
}

func TestCreateFileDocument_DirectResolvesStagingPath(t *testing.T) {
	ds, fileRepo, cfg := newTestDatastore(t)
	ctx := context.Background()

	desc := types.FileDescriptor{
		Name:         "read1.fastq.gz",
		OriginalName: "read1.fastq.gz",
		UploadName:   "upload-abc123",
	}
	file, err := ds.CreateFileDocument(ctx, nil, desc, "read", types.UploadMethodDirect)
	if err != nil {
		t.Fatalf("CreateFileDocument: %v", err)
	}
	want := filepath.Join(cfg.UploadStagingDir, "upload-abc123")
	if file.Path != want || file.TempPath != want {
		t.Fatalf("path: want=%q got path=%q temp=%q", want, file.Path, file.TempPath)
	}

	stored, err := fileRepo.GetByID(ctx, nil, file.ID)
	if err != nil {
		t.Fatalf("reload file: %v", err)
	}
	if stored.Path != want {
		t.Fatalf("persisted path: want=%q got=%q", want, stored.Path)
	}
}

func TestCreateFileDocument_HPCResolvesTransferPath(t *testing.T) {
	ds, _, cfg := newTestDatastore(t)

	desc := types.FileDescriptor{
		Name:         "read2.fastq.gz",
		OriginalName: "read2.fastq.gz",
		RelativePath: "lab/proj/samp/run_1",
	}
	file, err := ds.CreateFileDocument(context.Background(), nil, desc, "read", types.UploadMethodHPCMv)
	if err != nil {
		t.Fatalf("CreateFileDocument: %v", err)
	}
	want := filepath.Join(cfg.HPCTransferRoot, "lab/proj/samp/run_1", "read2.fastq.gz")
	if file.Path != want {
		t.Fatalf("path: want=%q got=%q", want, file.Path)
	}
}

func TestCreateFileDocument_MissingFields(t *testing.T) {
	ds, _, _ := newTestDatastore(t)
	ctx := context.Background()

	cases := []struct {
		desc   types.FileDescriptor
		method types.UploadMethod
		field  string
	}{
		{types.FileDescriptor{OriginalName: "a"}, types.UploadMethodDirect, "name"},
		{types.FileDescriptor{Name: "a"}, types.UploadMethodDirect, "originalName"},
		{types.FileDescriptor{Name: "a", OriginalName: "a"}, types.UploadMethodDirect, "uploadName"},
		{types.FileDescriptor{Name: "a", OriginalName: "a"}, types.UploadMethod("ftp"), "uploadMethod"},
	}
	for _, tc := range cases {
		_, err := ds.CreateFileDocument(ctx, nil, tc.desc, "read", tc.method)
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("expected MissingFieldError for %s, got %v", tc.field, err)
		}
		if missing.Field != tc.field {
			t.Errorf("field: want=%q got=%q", tc.field, missing.Field)
		}
	}
}

func TestMoveToFolderAndSave_RelocatesAndRepoints(t *testing.T) {
	ds, fileRepo, cfg := newTestDatastore(t)
	ctx := context.Background()

	if err := os.MkdirAll(cfg.UploadStagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}
	source := filepath.Join(cfg.UploadStagingDir, "upload-xyz")
	if err := os.WriteFile(source, []byte("ACGT"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	file, err := ds.CreateFileDocument(ctx, nil, types.FileDescriptor{
		Name:         "r1.fastq.gz",
		OriginalName: "r1.fastq.gz",
		UploadName:   "upload-xyz",
	}, "read", types.UploadMethodDirect)
	if err != nil {
		t.Fatalf("CreateFileDocument: %v", err)
	}

	destDir := ds.RawDir("lab/proj/samp/run_1")
	if err := ds.EnsureDir(destDir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if err := ds.MoveToFolderAndSave(ctx, nil, file, destDir); err != nil {
		t.Fatalf("MoveToFolderAndSave: %v", err)
	}

	wantPath := filepath.Join(destDir, "r1.fastq.gz")
	if file.Path != wantPath {
		t.Fatalf("in-memory path: want=%q got=%q", wantPath, file.Path)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("bytes not at destination: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("source still present after move")
	}

	stored, err := fileRepo.GetByID(ctx, nil, file.ID)
	if err != nil {
		t.Fatalf("reload file: %v", err)
	}
	if stored.Path != wantPath {
		t.Fatalf("record path: want=%q got=%q", wantPath, stored.Path)
	}
}

func TestMoveToFolderAndSave_MissingSource(t *testing.T) {
	ds, _, cfg := newTestDatastore(t)

	file := &types.File{
		OriginalName: "gone.fastq.gz",
		Path:         filepath.Join(cfg.UploadStagingDir, "gone"),
	}
	destDir := t.TempDir()
	err := ds.MoveToFolderAndSave(context.Background(), nil, file, destDir)
	var relErr *RelocationError
	if !errors.As(err, &relErr) {
		t.Fatalf("expected RelocationError, got %v", err)
	}
}

func TestMoveToFolderAndSave_DestinationNotADirectory(t *testing.T) {
	ds, _, _ := newTestDatastore(t)

	source := filepath.Join(t.TempDir(), "src")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	notADir := filepath.Join(t.TempDir(), "plainfile")
	if err := os.WriteFile(notADir, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	file := &types.File{OriginalName: "a", Path: source}
	err := ds.MoveToFolderAndSave(context.Background(), nil, file, notADir)
	var relErr *RelocationError
	if !errors.As(err, &relErr) {
		t.Fatalf("expected RelocationError, got %v", err)
	}
	if _, statErr := os.Stat(source); statErr != nil {
		t.Fatalf("source should be untouched: %v", statErr)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	ds, _, _ := newTestDatastore(t)
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := ds.EnsureDir(dir); err != nil {
		t.Fatalf("first EnsureDir: %v", err)
	}
	if err := ds.EnsureDir(dir); err != nil {
		t.Fatalf("second EnsureDir: %v", err)
	}
}
