package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lessonlink/internal/config"
	"lessonlink/internal/dataset"
	"lessonlink/internal/logging"
	"lessonlink/internal/match"
	"lessonlink/internal/normalize"
	"lessonlink/internal/scoring"
	"lessonlink/internal/worker"
)

// Daemon coordinates dataset refreshes and match batches and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *dataset.Store
	fetcher *dataset.Fetcher
	orch    *worker.Orchestrator

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	Dataset      worker.Health
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *dataset.Store, fetcher *dataset.Fetcher, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || fetcher == nil {
		return nil, errors.New("daemon requires config, store, and fetcher")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	norm := normalize.New(cfg.Matching.IrrelevantWords)
	engine := scoring.NewDefaultEngine(logger)
	policy := match.PolicyFromConfig(cfg.Matching)

	lockPath := filepath.Join(cfg.Paths.DataDir, "lessonlinkd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		fetcher:  fetcher,
		orch:     worker.NewOrchestrator(norm, engine, policy, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and warms the matcher from the last
// persisted snapshot when one exists.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lessonlink daemon instance is already running")
	}

	snapshot, err := d.store.LatestSnapshot(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("load last snapshot: %w", err)
	}
	if snapshot != nil {
		if err := d.orch.Refresh(ctx, snapshot); err != nil {
			_ = d.lock.Unlock()
			return fmt.Errorf("restore snapshot: %w", err)
		}
		d.logger.Info("matcher warmed from stored snapshot",
			logging.String(logging.FieldSnapshotID, snapshot.ID),
			logging.Int("meetings", len(snapshot.Meetings)))
	}

	d.running.Store(true)
	d.logger.Info("lessonlink daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.orch.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("lessonlink daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports daemon runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		Dataset:      d.orch.Health(),
	}
}

// Refresh fetches a fresh snapshot, persists it, and activates it.
func (d *Daemon) Refresh(ctx context.Context) (*dataset.Snapshot, error) {
	snapshot, err := d.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.store.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	if err := d.orch.Refresh(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Match runs one batch of schedules and persists the outcome for audit.
// The returned batch ID identifies the stored results.
func (d *Daemon) Match(ctx context.Context, schedules []match.Schedule) (string, []match.MatchResult, error) {
	if len(schedules) == 0 {
		return "", nil, errors.New("empty batch")
	}

	batchID := uuid.NewString()
	results, err := d.orch.MatchBatch(ctx, batchID, schedules)
	if err != nil {
		return "", nil, err
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", nil, fmt.Errorf("encode results: %w", err)
	}
	if err := d.store.RecordBatch(ctx, batchID, len(schedules), resultsJSON); err != nil {
		d.logger.Warn("batch not persisted",
			logging.String(logging.FieldBatchID, batchID),
			logging.Error(err))
	}
	return batchID, results, nil
}

// Results returns the stored results of the latest batch.
func (d *Daemon) Results() []match.MatchResult {
	return d.orch.Results()
}

// Result looks up one stored result by schedule identity.
func (d *Daemon) Result(scheduleID string) (match.MatchResult, bool) {
	return d.orch.Result(scheduleID)
}

// Override pins a schedule to an operator-chosen meeting and records the
// decision in the audit trail.
func (d *Daemon) Override(ctx context.Context, scheduleID, meetingID string) (match.MatchResult, error) {
	result, err := d.orch.Override(scheduleID, meetingID)
	if err != nil {
		return match.MatchResult{}, err
	}
	if err := d.store.RecordOverride(ctx, scheduleID, meetingID, result.FoundInstructor); err != nil {
		d.logger.Warn("override not persisted",
			logging.String(logging.FieldScheduleID, scheduleID),
			logging.Error(err))
	}
	return result, nil
}

// OverrideHistory lists the persisted overrides for one schedule.
func (d *Daemon) OverrideHistory(ctx context.Context, scheduleID string) ([]dataset.OverrideRecord, error) {
	return d.store.Overrides(ctx, scheduleID)
}
