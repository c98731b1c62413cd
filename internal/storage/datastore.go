package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/config"
	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

// Datastore owns the content-addressed directory layout under the datastore
// root and the File records that mirror it. Creating a record and moving the
// bytes are two separate steps: ingestion persists the document first (with
// the pre-move source path), then relocates.
type Datastore struct {
	log      *logger.Logger
	cfg      *config.Config
	fileRepo repos.FileRepo
}

func NewDatastore(baseLog *logger.Logger, cfg *config.Config, fileRepo repos.FileRepo) *Datastore {
	return &Datastore{
		log:      baseLog.With("service", "Datastore"),
		cfg:      cfg,
		fileRepo: fileRepo,
	}
}

// RunDir is the absolute directory for a run's files given its hierarchical
// relative path.
func (d *Datastore) RunDir(runPath string) string {
	return filepath.Join(d.cfg.DatastoreRoot, runPath)
}

func (d *Datastore) RawDir(runPath string) string {
	return filepath.Join(d.cfg.DatastoreRoot, runPath, "raw")
}

func (d *Datastore) AdditionalDir(parentPath string) string {
	return filepath.Join(d.cfg.DatastoreRoot, parentPath, "additional")
}

// EnsureDir creates the directory recursively. Already existing is fine;
// anything else (permissions, file in the way) propagates untouched.
func (d *Datastore) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("ensure directory %s: %w", path, err)
	}
	return nil
}

// CreateFileDocument resolves the descriptor's source location from the
// upload method and persists a File record pointing at it. No filesystem
// mutation happens here.
func (d *Datastore) CreateFileDocument(ctx context.Context, tx *gorm.DB, desc types.FileDescriptor, fileType string, uploadMethod types.UploadMethod) (*types.File, error) {
	if desc.Name == "" {
		return nil, &MissingFieldError{Field: "name"}
	}
	if desc.OriginalName == "" {
		return nil, &MissingFieldError{Field: "originalName"}
	}

	var sourcePath string
	switch uploadMethod {
	case types.UploadMethodDirect:
		if desc.UploadName == "" {
			return nil, &MissingFieldError{Field: "uploadName"}
		}
		sourcePath = filepath.Join(d.cfg.UploadStagingDir, desc.UploadName)
	case types.UploadMethodHPCMv:
		sourcePath = filepath.Join(d.cfg.HPCTransferRoot, desc.RelativePath, desc.OriginalName)
	default:
		return nil, &MissingFieldError{Field: "uploadMethod"}
	}
	if sourcePath == "" {
		return nil, &MissingFieldError{Field: "path"}
	}

	file := &types.File{
		ID:           uuid.New(),
		Name:         desc.Name,
		OriginalName: desc.OriginalName,
		Path:         sourcePath,
		TempPath:     sourcePath,
		UploadMethod: uploadMethod,
		FileType:     fileType,
	}
	if _, err := d.fileRepo.Create(ctx, tx, []*types.File{file}); err != nil {
		return nil, fmt.Errorf("persist file document %s: %w", desc.Name, err)
	}
	return file, nil
}

// MoveToFolderAndSave renames the file's bytes into destDir and repoints the
// record. The caller must have created destDir already. If the record update
// fails after the rename, the bytes are moved back so the record never ends
// up pointing at a path that no longer exists; a retry will find the file at
// its recorded location either way.
func (d *Datastore) MoveToFolderAndSave(ctx context.Context, tx *gorm.DB, file *types.File, destDir string) error {
	if _, err := os.Stat(file.Path); err != nil {
		return &RelocationError{Source: file.Path, Dest: destDir, Err: fmt.Errorf("source missing: %w", err)}
	}
	info, err := os.Stat(destDir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory")
		}
		return &RelocationError{Source: file.Path, Dest: destDir, Err: fmt.Errorf("destination directory: %w", err)}
	}

	destPath := filepath.Join(destDir, file.OriginalName)
	if err := os.Rename(file.Path, destPath); err != nil {
		return &RelocationError{Source: file.Path, Dest: destPath, Err: err}
	}

	if err := d.fileRepo.UpdateFields(ctx, tx, file.ID, map[string]any{"path": destPath}); err != nil {
		// Undo the rename so the record stays truthful.
		if undoErr := os.Rename(destPath, file.Path); undoErr != nil {
			d.log.Error("Failed to undo relocation after record update failure; bytes and record now disagree",
				"file_id", file.ID, "moved_to", destPath, "record_path", file.Path, "undo_error", undoErr)
		}
		return fmt.Errorf("persist relocated path for file %s: %w", file.ID, err)
	}

	file.Path = destPath
	return nil
}
