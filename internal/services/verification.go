package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/TeamMacLean/komondor-api-sub000/internal/checksum"
	"github.com/TeamMacLean/komondor-api-sub000/internal/config"
	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/repos"
	"github.com/TeamMacLean/komondor-api-sub000/internal/types"
)

// VerifyRunResult is what the scheduler sees. Verification never throws at
// it: every outcome, including infrastructure failure, arrives as a result.
type VerifyRunResult struct {
	RunID         uuid.UUID `json:"run_id"`
	RunName       string    `json:"run_name,omitempty"`
	Success       bool      `json:"success"`
	Skipped       bool      `json:"skipped,omitempty"`
	FilesVerified int       `json:"files_verified"`
	Mismatches    int       `json:"mismatches"`
	Errors        int       `json:"errors"`
	ShouldRetry   bool      `json:"should_retry,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

// VerifyReadResult is the per-file outcome. A mismatch is a finding, an
// error is an inability to check; they are counted separately because only
// the latter fails the run.
type VerifyReadResult struct {
	ReadID   uuid.UUID
	Verified bool
	Mismatch bool
	Skipped  bool
	Error    string
}

// CleanupResult reports one staleness sweep.
type CleanupResult struct {
	Success bool   `json:"success"`
	Found   int    `json:"found"`
	Cleaned int    `json:"cleaned"`
	Errors  int    `json:"errors"`
	Error   string `json:"error,omitempty"`
}

// VerifyRunOptions controls a single verification call. SkipIfDisabled
// honors the global kill switch; callers that need a real check regardless
// of the switch leave it false.
type VerifyRunOptions struct {
	SkipIfDisabled bool
}

type VerificationService interface {
	VerifyRunMD5(ctx context.Context, runID uuid.UUID, opts VerifyRunOptions) VerifyRunResult
	VerifyReadMD5(ctx context.Context, read *types.Read, runPath string) VerifyReadResult
	FindRunsNeedingVerification(ctx context.Context, limit int) ([]*types.Run, error)
	CleanupStalePendingRuns(ctx context.Context, maxAgeHours int) CleanupResult
}

type verificationService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      *config.Config
	runRepo  repos.RunRepo
	readRepo repos.ReadRepo
}

func NewVerificationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg *config.Config,
	runRepo repos.RunRepo,
	readRepo repos.ReadRepo,
) VerificationService {
	return &verificationService{
		db:       db,
		log:      baseLog.With("service", "VerificationService"),
		cfg:      cfg,
		runRepo:  runRepo,
		readRepo: readRepo,
	}
}

// VerifyRunMD5 recomputes checksums for every relocated read of a run and
// compares them against the values recorded at upload time. Attempt
// bookkeeping is written before any verification work so the counter means
// attempts started, not attempts completed.
func (v *verificationService) VerifyRunMD5(ctx context.Context, runID uuid.UUID, opts VerifyRunOptions) VerifyRunResult {
	started := time.Now()
	log := v.log.With("run_id", runID)
	result := VerifyRunResult{RunID: runID}

	if opts.SkipIfDisabled && v.cfg.SkipMD5Verification {
		// Deliberate bypass, not a verification outcome: mark complete
		// without touching a single read. Idempotent: a run that is already
		// complete stays complete and still reports a skipped success.
		current, err := v.runRepo.GetByID(ctx, nil, runID)
		if err != nil {
			log.Error("Run not found for verification skip", "error", err)
			result.Error = err.Error()
			return result
		}
		if current.MD5VerificationStatus != types.MD5VerificationComplete {
			if err := v.runRepo.TransitionMD5Status(ctx, nil, runID, types.MD5VerificationComplete, map[string]any{
				"md5_verification_completed_at": time.Now(),
			}); err != nil {
				log.Error("Failed to mark run verification skipped", "error", err)
				result.Error = err.Error()
				return result
			}
		}
		result.Success = true
		result.Skipped = true
		result.DurationMS = time.Since(started).Milliseconds()
		return result
	}

	run, err := v.runRepo.GetByIDWithHierarchy(ctx, nil, runID)
	if err != nil {
		log.Error("Run not found for verification", "error", err)
		result.Error = fmt.Sprintf("load run: %v", err)
		return result
	}
	result.RunName = run.Name

	attempts := run.MD5VerificationAttempts + 1
	if err := v.runRepo.TransitionMD5Status(ctx, nil, runID, types.MD5VerificationInProgress, map[string]any{
		"md5_verification_attempts":     attempts,
		"md5_verification_last_attempt": time.Now(),
	}); err != nil {
		return v.failRun(ctx, log, result, attempts, fmt.Errorf("mark run in progress: %w", err))
	}

	reads, err := v.readRepo.GetByRunID(ctx, nil, runID)
	if err != nil {
		return v.failRun(ctx, log, result, attempts, fmt.Errorf("load reads: %w", err))
	}

	if len(reads) == 0 {
		if err := v.finishRun(ctx, runID, types.MD5VerificationComplete, result); err != nil {
			return v.failRun(ctx, log, result, attempts, err)
		}
		result.Success = true
		result.DurationMS = time.Since(started).Milliseconds()
		return result
	}

	runPath, err := run.RelativePath()
	if err != nil {
		return v.failRun(ctx, log, result, attempts, err)
	}

	// Per-read verification is concurrent and error-isolated: one unreadable
	// file never stops its siblings from being checked.
	outcomes := make([]VerifyReadResult, len(reads))
	g, gctx := errgroup.WithContext(ctx)
	for idx, read := range reads {
		idx := idx
		read := read
		g.Go(func() error {
			outcomes[idx] = v.VerifyReadMD5(gctx, read, runPath)
			return nil
		})
	}
	_ = g.Wait()

	for _, outcome := range outcomes {
		switch {
		case outcome.Error != "":
			result.Errors++
		case outcome.Skipped:
			// Nothing to compare against; neither verified nor mismatched.
		case outcome.Mismatch:
			result.FilesVerified++
			result.Mismatches++
		default:
			result.FilesVerified++
		}
	}

	// A mismatch is data to report; only inability to check fails the run.
	// Failed is what the run is marked; shouldRetry in the result is advice
	// to the caller only, the selector never picks a failed run back up.
	final := types.MD5VerificationComplete
	if result.Errors > 0 {
		result.ShouldRetry = attempts < v.cfg.MaxVerificationAttempts
		final = types.MD5VerificationFailed
	}
	if err := v.finishRun(ctx, runID, final, result); err != nil {
		return v.failRun(ctx, log, result, attempts, err)
	}

	result.Success = result.Errors == 0
	result.DurationMS = time.Since(started).Milliseconds()
	log.Info("Run verification finished",
		"status", final,
		"files_verified", result.FilesVerified,
		"mismatches", result.Mismatches,
		"errors", result.Errors,
		"duration_ms", result.DurationMS)
	return result
}

func (v *verificationService) finishRun(ctx context.Context, runID uuid.UUID, final types.MD5VerificationStatus, result VerifyRunResult) error {
	summary, err := json.Marshal(result)
	if err != nil {
		summary = []byte(`{}`)
	}
	fields := map[string]any{
		"verification_summary": datatypes.JSON(summary),
	}
	if final == types.MD5VerificationComplete {
		fields["md5_verification_completed_at"] = time.Now()
	}
	if err := v.runRepo.TransitionMD5Status(ctx, nil, runID, final, fields); err != nil {
		return fmt.Errorf("finalize run verification status: %w", err)
	}
	return nil
}

// failRun converts an escaping failure into a structured result. The run is
// only written when the attempt ceiling is exhausted: then it is forced to
// failed so it can never be picked up again. Below the ceiling the caller
// gets shouldRetry and decides; the run's status is left where the failure
// found it. The forced write bypasses transition validation because the run
// may be stuck in any state when the failure escapes.
func (v *verificationService) failRun(ctx context.Context, log *logger.Logger, result VerifyRunResult, attempts int, cause error) VerifyRunResult {
	result.Success = false
	result.Error = cause.Error()
	result.ShouldRetry = attempts < v.cfg.MaxVerificationAttempts
	log.Error("Run verification failed", "error", cause, "attempts", attempts, "should_retry", result.ShouldRetry)

	if !result.ShouldRetry {
		if err := v.runRepo.UpdateFields(ctx, nil, result.RunID, map[string]any{
			"md5_verification_status": types.MD5VerificationFailed,
		}); err != nil {
			log.Error("Failed to record run verification failure state", "error", err)
		}
	}
	return result
}

// VerifyReadMD5 checks one read's relocated bytes against its recorded
// checksum. Comparison is case-insensitive; both sides are lowercased. All
// three verification fields are written in a single update.
func (v *verificationService) VerifyReadMD5(ctx context.Context, read *types.Read, runPath string) VerifyReadResult {
	result := VerifyReadResult{ReadID: read.ID}

	if strings.TrimSpace(read.MD5) == "" {
		// No recorded checksum means nothing to compare against.
		result.Skipped = true
		return result
	}
	if read.File == nil {
		result.Error = fmt.Sprintf("read %s has no file record loaded", read.ID)
		return result
	}

	destPath := filepath.Join(v.cfg.DatastoreRoot, runPath, "raw", read.File.OriginalName)
	sum, err := checksum.FileMD5(destPath)
	if err != nil {
		v.log.Error("Checksum computation failed", "read_id", read.ID, "path", destPath, "error", err)
		result.Error = err.Error()
		return result
	}

	mismatch := sum != strings.ToLower(read.MD5)
	if err := v.readRepo.UpdateFields(ctx, nil, read.ID, map[string]any{
		"destination_md5": sum,
		"md5_mismatch":    mismatch,
		"md5_checked_at":  time.Now(),
	}); err != nil {
		v.log.Error("Failed to persist read verification", "read_id", read.ID, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Verified = !mismatch
	result.Mismatch = mismatch
	if mismatch {
		v.log.Warn("Read checksum mismatch", "read_id", read.ID, "expected", strings.ToLower(read.MD5), "actual", sum)
	}
	return result
}

func (v *verificationService) FindRunsNeedingVerification(ctx context.Context, limit int) ([]*types.Run, error) {
	return v.runRepo.FindNeedingVerification(ctx, nil, limit, v.cfg.MaxVerificationAttempts)
}

// CleanupStalePendingRuns force-errors runs stuck in processing past the age
// threshold. This is the recovery path for ingestions that died without
// reaching their own error handling.
func (v *verificationService) CleanupStalePendingRuns(ctx context.Context, maxAgeHours int) CleanupResult {
	result := CleanupResult{}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)

	stale, err := v.runRepo.FindStaleProcessing(ctx, nil, cutoff)
	if err != nil {
		v.log.Error("Stale run query failed", "error", err)
		result.Error = err.Error()
		return result
	}
	result.Found = len(stale)

	for _, run := range stale {
		err := v.runRepo.TransitionStatus(ctx, nil, run.ID, types.RunStatusError, map[string]any{
			"status_error":            fmt.Sprintf("ingestion stuck in processing for more than %d hours", maxAgeHours),
			"md5_verification_status": types.MD5VerificationFailed,
		})
		if err != nil {
			v.log.Error("Failed to clean up stale run", "run_id", run.ID, "error", err)
			result.Errors++
			continue
		}
		v.log.Warn("Force-errored stale run", "run_id", run.ID, "created_at", run.CreatedAt)
		result.Cleaned++
	}

	result.Success = result.Errors == 0
	return result
}
