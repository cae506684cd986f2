package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lessonlink/internal/dataset"
	"lessonlink/internal/logging"
	"lessonlink/internal/match"
	"lessonlink/internal/normalize"
	"lessonlink/internal/scoring"
)

// ErrBatchInFlight rejects work that would overlap a running match batch.
var ErrBatchInFlight = errors.New("worker: match batch in flight")

// ErrRefreshInProgress rejects work while the dataset is being swapped.
var ErrRefreshInProgress = errors.New("worker: refresh in progress")

// Health summarizes the orchestrator's current operational state.
type Health struct {
	Initialized bool      `json:"initialized"`
	SnapshotID  string    `json:"snapshot_id,omitempty"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
	Meetings    int       `json:"meetings"`
	Users       int       `json:"users"`
	Matching    bool      `json:"matching"`
	Refreshing  bool      `json:"refreshing"`
	LastBatchAt time.Time `json:"last_batch_at,omitempty"`
	LastBatchID string    `json:"last_batch_id,omitempty"`
	Results     int       `json:"results"`
}

// Orchestrator owns the worker unit and the results of the latest batch.
//
// At most one match batch and one refresh may run at a time, and never
// concurrently with each other. Overrides are synchronous and need no unit
// round trip since they only touch stored results.
type Orchestrator struct {
	norm   *normalize.Normalizer
	engine *scoring.Engine
	policy match.Policy
	logger *slog.Logger

	gate     chan struct{} // guards unit swap and busy flags
	unit     *Unit
	snapshot *dataset.Snapshot
	results  *match.ResultSet

	matching    bool
	refreshing  bool
	lastBatchAt time.Time
	lastBatchID string
}

// NewOrchestrator prepares an orchestrator with no dataset loaded. The first
// Refresh both loads the snapshot and starts the unit.
func NewOrchestrator(norm *normalize.Normalizer, engine *scoring.Engine, policy match.Policy, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		norm:    norm,
		engine:  engine,
		policy:  policy,
		logger:  logging.WithComponent(logger, "orchestrator"),
		gate:    make(chan struct{}, 1),
		results: match.NewResultSet(),
	}
	o.gate <- struct{}{}
	return o
}

func (o *Orchestrator) lock()   { <-o.gate }
func (o *Orchestrator) unlock() { o.gate <- struct{}{} }

// Refresh replaces the active snapshot. The previous unit is torn down and a
// fresh one initialized; if initialization of the new snapshot fails, one
// recovery attempt restores the previous snapshot before reporting failure.
func (o *Orchestrator) Refresh(ctx context.Context, snapshot *dataset.Snapshot) error {
	if snapshot == nil {
		return errors.New("worker: nil snapshot")
	}

	o.lock()
	if o.matching {
		o.unlock()
		return ErrBatchInFlight
	}
	if o.refreshing {
		o.unlock()
		return ErrRefreshInProgress
	}
	o.refreshing = true
	previous := o.snapshot
	o.unlock()

	defer func() {
		o.lock()
		o.refreshing = false
		o.unlock()
	}()

	unit := NewUnit(o.norm, o.engine, o.policy, o.logger)
	if err := unit.Init(ctx, snapshot); err != nil {
		unit.Close()
		if previous == nil {
			return fmt.Errorf("initialize snapshot %s: %w", snapshot.ID, err)
		}
		// Recovery: bring the last good snapshot back so matching keeps
		// working against stale data rather than nothing.
		recovered := NewUnit(o.norm, o.engine, o.policy, o.logger)
		if rerr := recovered.Init(ctx, previous); rerr != nil {
			recovered.Close()
			return fmt.Errorf("initialize snapshot %s: %w", snapshot.ID, err)
		}
		o.swapUnit(recovered, previous)
		o.logger.Warn("snapshot rejected, previous restored",
			logging.String(logging.FieldSnapshotID, snapshot.ID),
			logging.Error(err))
		return fmt.Errorf("initialize snapshot %s: %w", snapshot.ID, err)
	}

	o.swapUnit(unit, snapshot)
	o.logger.Info("snapshot active",
		logging.String(logging.FieldSnapshotID, snapshot.ID),
		logging.Int("meetings", len(snapshot.Meetings)),
		logging.Int("users", len(snapshot.Users)))
	return nil
}

func (o *Orchestrator) swapUnit(unit *Unit, snapshot *dataset.Snapshot) {
	o.lock()
	old := o.unit
	o.unit = unit
	o.snapshot = snapshot
	o.unlock()
	if old != nil {
		old.Close()
	}
}

// MatchBatch runs one batch through the unit and stores its results,
// replacing the previous batch. Exactly one batch runs at a time.
func (o *Orchestrator) MatchBatch(ctx context.Context, batchID string, schedules []match.Schedule) ([]match.MatchResult, error) {
	o.lock()
	if o.refreshing {
		o.unlock()
		return nil, ErrRefreshInProgress
	}
	if o.matching {
		o.unlock()
		return nil, ErrBatchInFlight
	}
	if o.unit == nil && o.snapshot == nil {
		o.unlock()
		return nil, ErrNotInitialized
	}
	o.matching = true
	unit := o.unit
	snapshot := o.snapshot
	o.unlock()

	if unit == nil {
		// One re-initialization attempt from the last known snapshot before
		// giving up on the batch.
		unit = NewUnit(o.norm, o.engine, o.policy, o.logger)
		if err := unit.Init(ctx, snapshot); err != nil {
			unit.Close()
			o.lock()
			o.matching = false
			o.unlock()
			return nil, fmt.Errorf("reinitialize matcher: %w", err)
		}
		o.lock()
		o.unit = unit
		o.unlock()
		o.logger.Info("matcher reinitialized before batch",
			logging.String(logging.FieldSnapshotID, snapshot.ID))
	}

	defer func() {
		o.lock()
		o.matching = false
		o.unlock()
	}()

	results, err := unit.Match(ctx, schedules)
	if err != nil {
		return nil, err
	}

	o.results.Replace(results)
	o.lock()
	o.lastBatchAt = time.Now().UTC()
	o.lastBatchID = batchID
	o.unlock()

	o.logger.Info("batch stored",
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("results", len(results)))
	return results, nil
}

// Results returns the stored results of the latest batch in batch order.
func (o *Orchestrator) Results() []match.MatchResult {
	return o.results.List()
}

// Result looks up one stored result by schedule identity.
func (o *Orchestrator) Result(scheduleID string) (match.MatchResult, bool) {
	return o.results.Get(scheduleID)
}

// Override pins a schedule's result to a meeting chosen by the operator.
// The meeting must exist in the active snapshot.
func (o *Orchestrator) Override(scheduleID, meetingID string) (match.MatchResult, error) {
	o.lock()
	snapshot := o.snapshot
	o.unlock()
	if snapshot == nil {
		return match.MatchResult{}, ErrNotInitialized
	}

	var meeting *dataset.MeetingCandidate
	for i := range snapshot.Meetings {
		if snapshot.Meetings[i].MeetingID == meetingID {
			meeting = &snapshot.Meetings[i]
			break
		}
	}
	if meeting == nil {
		return match.MatchResult{}, fmt.Errorf("meeting %q not in active snapshot", meetingID)
	}

	instructor := ""
	if user, ok := snapshot.UserIndex()[meeting.HostID]; ok {
		instructor = user.InstructorName()
	}

	result, err := o.results.ApplyOverride(scheduleID, *meeting, instructor)
	if err != nil {
		return match.MatchResult{}, err
	}
	o.logger.Info("override applied",
		logging.String(logging.FieldScheduleID, scheduleID),
		logging.String("meeting_id", meetingID))
	return result, nil
}

// Health reports the orchestrator's operational state.
func (o *Orchestrator) Health() Health {
	o.lock()
	defer o.unlock()

	h := Health{
		Initialized: o.unit != nil,
		Matching:    o.matching,
		Refreshing:  o.refreshing,
		LastBatchAt: o.lastBatchAt,
		LastBatchID: o.lastBatchID,
		Results:     o.results.Len(),
	}
	if o.snapshot != nil {
		h.SnapshotID = o.snapshot.ID
		h.FetchedAt = o.snapshot.FetchedAt
		h.Meetings = len(o.snapshot.Meetings)
		h.Users = len(o.snapshot.Users)
	}
	return h
}

// Close tears down the unit. The orchestrator is not usable afterwards.
func (o *Orchestrator) Close() {
	o.lock()
	unit := o.unit
	o.unit = nil
	o.snapshot = nil
	o.unlock()
	if unit != nil {
		unit.Close()
	}
}
