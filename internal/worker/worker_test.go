package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"lessonlink/internal/dataset"
	"lessonlink/internal/match"
	"lessonlink/internal/normalize"
	"lessonlink/internal/scoring"
)

func testNormalizer() *normalize.Normalizer {
	return normalize.New([]string{"online", "per", "virtual", "zoom", "class", "clase", "meeting"})
}

func testSnapshot() *dataset.Snapshot {
	return &dataset.Snapshot{
		ID:        "snap-1",
		FetchedAt: time.Now().UTC(),
		Meetings: []dataset.MeetingCandidate{
			{MeetingID: "m1", Topic: "TRIO TECHCORP L4", HostID: "u1"},
			{MeetingID: "m2", Topic: "IND CARLOS RUIZ L2", HostID: "u2"},
		},
		Users: []dataset.UserCandidate{
			{ID: "u1", FirstName: "Lucia", LastName: "Mendez"},
		},
	}
}

func TestUnitMatchBeforeInit(t *testing.T) {
	unit := NewUnit(testNormalizer(), nil, match.DefaultPolicy(), nil)
	defer unit.Close()

	_, err := unit.Match(context.Background(), []match.Schedule{{ID: "s1", Program: "x"}})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}
}

func TestUnitInitThenMatch(t *testing.T) {
	unit := NewUnit(testNormalizer(), nil, match.DefaultPolicy(), nil)
	defer unit.Close()

	ctx := context.Background()
	if err := unit.Init(ctx, testSnapshot()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	results, err := unit.Match(ctx, []match.Schedule{
		{ID: "s1", Program: "Trio TechCorp L4"},
		{ID: "s2", Program: "Quad Nowhere L9"},
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Status != match.StatusAssigned || results[0].MeetingID != "m1" {
		t.Errorf("result 0 = %s/%s, want assigned/m1", results[0].Status, results[0].MeetingID)
	}
	if results[1].Status != match.StatusNotFound {
		t.Errorf("result 1 = %s, want not_found", results[1].Status)
	}
}

func TestUnitClose(t *testing.T) {
	unit := NewUnit(testNormalizer(), nil, match.DefaultPolicy(), nil)
	unit.Close()

	if err := unit.Init(context.Background(), testSnapshot()); !errors.Is(err, ErrUnitClosed) {
		t.Fatalf("err = %v, want ErrUnitClosed", err)
	}
	// Close is idempotent.
	unit.Close()
}

func TestOrchestratorRequiresRefresh(t *testing.T) {
	o := NewOrchestrator(testNormalizer(), nil, match.DefaultPolicy(), nil)
	defer o.Close()

	_, err := o.MatchBatch(context.Background(), "b1", []match.Schedule{{ID: "s1", Program: "x"}})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}
}

func TestOrchestratorMatchAndResults(t *testing.T) {
	o := NewOrchestrator(testNormalizer(), nil, match.DefaultPolicy(), nil)
	defer o.Close()

	ctx := context.Background()
	if err := o.Refresh(ctx, testSnapshot()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	schedules := []match.Schedule{
		{ID: "s1", Program: "Trio TechCorp L4"},
		{ID: "s2", Program: "Ind Carlos Ruiz L2"},
	}
	results, err := o.MatchBatch(ctx, "b1", schedules)
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}
	if len(results) != len(schedules) {
		t.Fatalf("results = %d, want %d", len(results), len(schedules))
	}

	stored := o.Results()
	if len(stored) != len(schedules) {
		t.Fatalf("stored = %d, want %d", len(stored), len(schedules))
	}
	if stored[0].Schedule.ID != "s1" || stored[1].Schedule.ID != "s2" {
		t.Errorf("stored order = [%s %s], want [s1 s2]", stored[0].Schedule.ID, stored[1].Schedule.ID)
	}

	health := o.Health()
	if !health.Initialized || health.SnapshotID != "snap-1" || health.Results != 2 {
		t.Errorf("health = %+v", health)
	}
	if health.LastBatchID != "b1" {
		t.Errorf("last batch = %s, want b1", health.LastBatchID)
	}
}

func TestOrchestratorSingleBatchInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	slow := scoring.RuleFunc{
		RuleName: "slow",
		Fn: func(scoring.Context) (*scoring.Penalty, error) {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			return nil, nil
		},
	}
	engine := scoring.NewEngine(nil, slow)

	o := NewOrchestrator(testNormalizer(), engine, match.DefaultPolicy(), nil)
	defer o.Close()

	ctx := context.Background()
	if err := o.Refresh(ctx, testSnapshot()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	first := make(chan error, 1)
	go func() {
		_, err := o.MatchBatch(ctx, "b1", []match.Schedule{{ID: "s1", Program: "Trio TechCorp L4"}})
		first <- err
	}()
	<-started

	if _, err := o.MatchBatch(ctx, "b2", []match.Schedule{{ID: "s2", Program: "x"}}); !errors.Is(err, ErrBatchInFlight) {
		t.Errorf("second batch err = %v, want ErrBatchInFlight", err)
	}
	if err := o.Refresh(ctx, testSnapshot()); !errors.Is(err, ErrBatchInFlight) {
		t.Errorf("refresh err = %v, want ErrBatchInFlight", err)
	}

	close(release)
	if err := <-first; err != nil {
		t.Fatalf("first batch: %v", err)
	}
}

func TestOrchestratorOverride(t *testing.T) {
	o := NewOrchestrator(testNormalizer(), nil, match.DefaultPolicy(), nil)
	defer o.Close()

	ctx := context.Background()
	if err := o.Refresh(ctx, testSnapshot()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := o.MatchBatch(ctx, "b1", []match.Schedule{{ID: "s1", Program: "Quad Nowhere L9"}}); err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	result, err := o.Override("s1", "m1")
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if result.Status != match.StatusManual || result.MeetingID != "m1" {
		t.Errorf("result = %s/%s, want manual/m1", result.Status, result.MeetingID)
	}
	if result.FoundInstructor != "Lucia Mendez" {
		t.Errorf("instructor = %q, want Lucia Mendez", result.FoundInstructor)
	}
	if result.OriginalState == nil || result.OriginalState.Status != match.StatusNotFound {
		t.Errorf("original state = %+v, want prior not_found", result.OriginalState)
	}

	if _, err := o.Override("s1", "missing"); err == nil {
		t.Error("expected error for meeting outside snapshot")
	}
}

func TestOrchestratorRefreshSwapsSnapshot(t *testing.T) {
	o := NewOrchestrator(testNormalizer(), nil, match.DefaultPolicy(), nil)
	defer o.Close()

	ctx := context.Background()
	if err := o.Refresh(ctx, testSnapshot()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	next := &dataset.Snapshot{
		ID: "snap-2",
		Meetings: []dataset.MeetingCandidate{
			{MeetingID: "m9", Topic: "DUO FINBANK L7", HostID: "u9"},
		},
	}
	if err := o.Refresh(ctx, next); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	results, err := o.MatchBatch(ctx, "b1", []match.Schedule{{ID: "s1", Program: "Duo FinBank L7"}})
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}
	if results[0].Status != match.StatusAssigned || results[0].MeetingID != "m9" {
		t.Errorf("result = %s/%s, want assigned/m9 from the new snapshot", results[0].Status, results[0].MeetingID)
	}
	if got := o.Health().SnapshotID; got != "snap-2" {
		t.Errorf("snapshot = %s, want snap-2", got)
	}
}
