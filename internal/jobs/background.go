package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/TeamMacLean/komondor-api-sub000/internal/config"
	"github.com/TeamMacLean/komondor-api-sub000/internal/logger"
	"github.com/TeamMacLean/komondor-api-sub000/internal/mail"
	"github.com/TeamMacLean/komondor-api-sub000/internal/services"
)

// Background owns the periodic triggers for checksum verification and the
// stale-run sweep. Each trigger has its own guard flag: if a tick fires
// while the previous one is still working, the tick is skipped outright and
// the work waits for the next one. The guards live on the struct, not at
// package level, so independent schedulers never share state.
type Background struct {
	log           *logger.Logger
	cfg           *config.Config
	verification  services.VerificationService
	mailClient    mail.Client
	notifyAddress string

	verifyRunning  atomic.Bool
	cleanupRunning atomic.Bool
}

func NewBackground(
	baseLog *logger.Logger,
	cfg *config.Config,
	verification services.VerificationService,
	mailClient mail.Client,
	notifyAddress string,
) *Background {
	return &Background{
		log:           baseLog.With("component", "BackgroundJobs"),
		cfg:           cfg,
		verification:  verification,
		mailClient:    mailClient,
		notifyAddress: notifyAddress,
	}
}

// Initialize registers the periodic triggers and the one-shot startup batch.
// Calling it twice starts duplicate timer loops; callers hold exactly one.
func (b *Background) Initialize(ctx context.Context) {
	go b.verifyLoop(ctx)
	go b.cleanupLoop(ctx)
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(b.cfg.StartupDelay):
			b.RunVerificationBatch(ctx)
		}
	}()
	b.log.Info("Background jobs initialized",
		"verify_interval", b.cfg.VerifyInterval,
		"cleanup_at", b.cfg.CleanupAt,
		"startup_delay", b.cfg.StartupDelay)
}

func (b *Background) verifyLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.VerifyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.RunVerificationBatch(ctx)
		}
	}
}

func (b *Background) cleanupLoop(ctx context.Context) {
	for {
		wait := untilNext(b.cfg.CleanupAt, time.Now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			b.RunCleanup(ctx)
		}
	}
}

// untilNext computes how long until the next occurrence of an HH:MM wall
// clock time.
func untilNext(clock string, now time.Time) time.Duration {
	parsed, err := config.ParseClock(clock)
	if err != nil {
		// Config validated this at load; a bad value here still must not
		// kill the loop.
		return 24 * time.Hour
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// RunVerificationBatch verifies up to the configured limit of runs, one at a
// time. Returns the per-run results and whether the batch actually ran
// (false means another batch held the guard).
func (b *Background) RunVerificationBatch(ctx context.Context) ([]services.VerifyRunResult, bool) {
	if !b.verifyRunning.CompareAndSwap(false, true) {
		b.log.Debug("Verification batch already running, skipping tick")
		return nil, false
	}
	defer b.verifyRunning.Store(false)

	runs, err := b.verification.FindRunsNeedingVerification(ctx, b.cfg.VerificationBatchLimit)
	if err != nil {
		b.log.Error("Failed to select runs for verification", "error", err)
		return nil, true
	}
	if len(runs) == 0 {
		return nil, true
	}
	b.log.Info("Starting verification batch", "runs", len(runs))

	// Strictly sequential across runs: one checksum stream at a time at the
	// run level, and a failing run never blocks the ones after it.
	results := make([]services.VerifyRunResult, 0, len(runs))
	for _, run := range runs {
		result := b.verification.VerifyRunMD5(ctx, run.ID, services.VerifyRunOptions{SkipIfDisabled: true})
		results = append(results, result)
		if result.Success && !result.Skipped {
			b.notify(ctx, result)
		}
	}
	return results, true
}

// RunCleanup sweeps runs stuck in processing. Guarded independently of the
// verification batch.
func (b *Background) RunCleanup(ctx context.Context) (services.CleanupResult, bool) {
	if !b.cleanupRunning.CompareAndSwap(false, true) {
		b.log.Debug("Cleanup already running, skipping")
		return services.CleanupResult{}, false
	}
	defer b.cleanupRunning.Store(false)

	result := b.verification.CleanupStalePendingRuns(ctx, b.cfg.StaleRunMaxAgeHours)
	if result.Found > 0 || result.Error != "" {
		b.log.Info("Stale run cleanup finished", "found", result.Found, "cleaned", result.Cleaned, "errors", result.Errors)
	}
	return result, true
}

// notify emails the verification report. Failures are logged and swallowed:
// a lost email never changes a verification outcome.
func (b *Background) notify(ctx context.Context, result services.VerifyRunResult) {
	if b.mailClient == nil || b.notifyAddress == "" {
		return
	}
	if _, err := b.mailClient.Send(ctx, mail.VerificationReport(b.notifyAddress, result)); err != nil {
		b.log.Error("Failed to send verification report", "run_id", result.RunID, "error", err)
	}
}
