package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/config"
	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/storage"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

// UploadInfo says how the batch's bytes arrived. Pairing resolution differs
// per method, so it travels with the batch rather than per file.
type UploadInfo struct {
	Method types.UploadMethod
}

type IngestionService interface {
	ProcessReadFiles(ctx context.Context, readFiles []types.FileDescriptor, runID uuid.UUID, runPath string, uploadInfo UploadInfo) error
	ProcessAdditionalFiles(ctx context.Context, files []types.FileDescriptor, parentType string, parentID uuid.UUID, parentPath string) error
}

type ingestionService struct {
	db        *gorm.DB
	log       *logger.Logger
	cfg       *config.Config
	runRepo   repos.RunRepo
	readRepo  repos.ReadRepo
	addRepo   repos.AdditionalFileRepo
	datastore *storage.Datastore
}

func NewIngestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg *config.Config,
	runRepo repos.RunRepo,
	readRepo repos.ReadRepo,
	addRepo repos.AdditionalFileRepo,
	datastore *storage.Datastore,
) IngestionService {
	return &ingestionService{
		db:        db,
		log:       baseLog.With("service", "IngestionService"),
		cfg:       cfg,
		runRepo:   runRepo,
		readRepo:  readRepo,
		addRepo:   addRepo,
		datastore: datastore,
	}
}

// ingestedRead pairs a descriptor with the Read it produced, in descriptor
// order, so the pairing phase can resolve sibling names without ever
// querying outside this call.
type ingestedRead struct {
	desc types.FileDescriptor
	read *types.Read
}

// ProcessReadFiles runs the whole post-upload pipeline for one run:
// mark processing, ensure the raw/ directory, relocate every file in
// bounded-concurrency batches, link paired reads, mark complete.
// Verification of the recorded checksums is deliberately deferred to the
// background engine; "complete" only means the bytes are in place.
func (i *ingestionService) ProcessReadFiles(ctx context.Context, readFiles []types.FileDescriptor, runID uuid.UUID, runPath string, uploadInfo UploadInfo) error {
	if runID == uuid.Nil {
		return fmt.Errorf("run id is required")
	}
	log := i.log.With("run_id", runID)

	if err := i.runRepo.TransitionStatus(ctx, nil, runID, types.RunStatusProcessing, map[string]any{
		"md5_verification_status": types.MD5VerificationPending,
		"status_error":            "",
	}); err != nil {
		return fmt.Errorf("mark run processing: %w", err)
	}

	if err := i.processReadFiles(ctx, log, readFiles, runID, runPath, uploadInfo); err != nil {
		// Best-effort error marking; the original error always wins.
		if markErr := i.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
			"status":                  types.RunStatusError,
			"status_error":            err.Error(),
			"md5_verification_status": types.MD5VerificationFailed,
		}); markErr != nil {
			log.Error("Failed to mark run as errored", "error", markErr, "original_error", err)
		}
		return err
	}

	if err := i.runRepo.TransitionStatus(ctx, nil, runID, types.RunStatusComplete, nil); err != nil {
		return fmt.Errorf("mark run complete: %w", err)
	}
	log.Info("Read file ingestion complete", "files", len(readFiles))
	return nil
}

func (i *ingestionService) processReadFiles(ctx context.Context, log *logger.Logger, readFiles []types.FileDescriptor, runID uuid.UUID, runPath string, uploadInfo UploadInfo) error {
	if runPath == "" {
		run, err := i.runRepo.GetByIDWithHierarchy(ctx, nil, runID)
		if err != nil {
			return fmt.Errorf("load run hierarchy: %w", err)
		}
		runPath, err = run.RelativePath()
		if err != nil {
			return err
		}
	}

	rawDir := i.datastore.RawDir(runPath)
	if err := i.datastore.EnsureDir(rawDir); err != nil {
		return err
	}

	batchSize := i.cfg.IngestionBatchSize
	created := make([]*ingestedRead, len(readFiles))

	// Batches run sequentially; files within a batch run concurrently. Any
	// failure aborts the pipeline rather than continuing with a partial run.
	for start := 0; start < len(readFiles); start += batchSize {
		end := start + batchSize
		if end > len(readFiles) {
			end = len(readFiles)
		}
		g, gctx := errgroup.WithContext(ctx)
		for idx := start; idx < end; idx++ {
			idx := idx
			desc := readFiles[idx]
			g.Go(func() error {
				entry, err := i.ingestOne(gctx, desc, runID, rawDir, uploadInfo)
				if err != nil {
					log.Error("File ingestion failed", "file", desc.Name, "phase", "relocate", "error", err)
					return err
				}
				created[idx] = entry
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	switch uploadInfo.Method {
	case types.UploadMethodHPCMv:
		if err := i.linkSiblingsByName(ctx, log, created); err != nil {
			return err
		}
	case types.UploadMethodDirect:
		if err := i.linkSiblingsByGroup(ctx, log, created); err != nil {
			return err
		}
	}
	return nil
}

func (i *ingestionService) ingestOne(ctx context.Context, desc types.FileDescriptor, runID uuid.UUID, rawDir string, uploadInfo UploadInfo) (*ingestedRead, error) {
	file, err := i.datastore.CreateFileDocument(ctx, nil, desc, "read", uploadInfo.Method)
	if err != nil {
		return nil, err
	}

	read := &types.Read{
		ID:     uuid.New(),
		RunID:  runID,
		FileID: file.ID,
		MD5:    strings.ToLower(strings.TrimSpace(desc.MD5)),
		Paired: desc.Paired,
	}
	if _, err := i.readRepo.Create(ctx, nil, []*types.Read{read}); err != nil {
		return nil, fmt.Errorf("persist read for %s: %w", desc.Name, err)
	}

	if err := i.datastore.MoveToFolderAndSave(ctx, nil, file, rawDir); err != nil {
		return nil, err
	}
	return &ingestedRead{desc: desc, read: read}, nil
}

// linkSiblingsByName resolves HPC pairing through a name→read map built from
// this call's reads only. Looking any wider would let two runs ingested in
// parallel corrupt each other's sibling links.
func (i *ingestionService) linkSiblingsByName(ctx context.Context, log *logger.Logger, created []*ingestedRead) error {
	byName := make(map[string]*types.Read, len(created))
	for _, entry := range created {
		byName[entry.desc.OriginalName] = entry.read
	}

	for _, entry := range created {
		if entry.desc.SiblingName == "" {
			continue
		}
		sibling, ok := byName[entry.desc.SiblingName]
		if !ok {
			return &PairingError{ReadName: entry.desc.OriginalName, SiblingName: entry.desc.SiblingName}
		}
		if err := i.linkPair(ctx, entry.read, sibling); err != nil {
			return err
		}
	}
	return nil
}

// linkSiblingsByGroup resolves direct-upload pairing by the client's row
// grouping key. A group that doesn't contain exactly two reads is a benign
// client-side grouping mistake: logged and skipped, never fatal.
func (i *ingestionService) linkSiblingsByGroup(ctx context.Context, log *logger.Logger, created []*ingestedRead) error {
	groups := make(map[string][]*types.Read)
	for _, entry := range created {
		if entry.desc.PairGroup == "" {
			continue
		}
		groups[entry.desc.PairGroup] = append(groups[entry.desc.PairGroup], entry.read)
	}

	for key, members := range groups {
		if len(members) != 2 {
			log.Warn("Pair group does not contain exactly 2 reads, skipping", "pair_group", key, "count", len(members))
			continue
		}
		if err := i.linkPair(ctx, members[0], members[1]); err != nil {
			return err
		}
	}
	return nil
}

func (i *ingestionService) linkPair(ctx context.Context, a, b *types.Read) error {
	if err := i.readRepo.UpdateFields(ctx, nil, a.ID, map[string]any{"sibling_id": b.ID, "paired": true}); err != nil {
		return fmt.Errorf("link read %s to sibling %s: %w", a.ID, b.ID, err)
	}
	if err := i.readRepo.UpdateFields(ctx, nil, b.ID, map[string]any{"sibling_id": a.ID, "paired": true}); err != nil {
		return fmt.Errorf("link read %s to sibling %s: %w", b.ID, a.ID, err)
	}
	a.SiblingID = &b.ID
	b.SiblingID = &a.ID
	a.Paired = true
	b.Paired = true
	return nil
}

// ProcessAdditionalFiles attaches non-read files to a run or project. These
// carry no checksum workflow and no run state machine: ensure the directory,
// then create and relocate every file concurrently.
func (i *ingestionService) ProcessAdditionalFiles(ctx context.Context, files []types.FileDescriptor, parentType string, parentID uuid.UUID, parentPath string) error {
	if parentID == uuid.Nil {
		return fmt.Errorf("parent id is required")
	}
	destDir := i.datastore.AdditionalDir(parentPath)
	if err := i.datastore.EnsureDir(destDir); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, desc := range files {
		desc := desc
		g.Go(func() error {
			file, err := i.datastore.CreateFileDocument(gctx, nil, desc, "additional", types.UploadMethodDirect)
			if err != nil {
				return err
			}
			record := &types.AdditionalFile{
				ID:         uuid.New(),
				ParentType: parentType,
				ParentID:   parentID,
				FileID:     file.ID,
			}
			if _, err := i.addRepo.Create(gctx, nil, []*types.AdditionalFile{record}); err != nil {
				return fmt.Errorf("persist additional file %s: %w", desc.Name, err)
			}
			return i.datastore.MoveToFolderAndSave(gctx, nil, file, destDir)
		})
	}
	if err := g.Wait(); err != nil {
		i.log.Error("Additional file ingestion failed", "parent_type", parentType, "parent_id", parentID, "error", err)
		return err
	}
	return nil
}
