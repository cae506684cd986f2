package main

import (
	"strings"
	"testing"
	"time"

	"lessonlink/internal/ipc"
	"lessonlink/internal/match"
	"lessonlink/internal/worker"
)

func TestRenderStatusWithoutSnapshot(t *testing.T) {
	status := &ipc.StatusResponse{
		Running:      true,
		PID:          42,
		DatabasePath: "/tmp/lessonlink.db",
	}
	lines := renderStatus(status, false)
	joined := strings.Join(lines, "\n")

	if !strings.Contains(joined, "Daemon") || !strings.Contains(joined, "running") {
		t.Errorf("missing daemon line:\n%s", joined)
	}
	if !strings.Contains(joined, "no snapshot loaded") {
		t.Errorf("missing refresh hint:\n%s", joined)
	}
	if strings.Contains(joined, ansiGreen) {
		t.Errorf("color codes without colorize:\n%s", joined)
	}
}

func TestRenderStatusWithSnapshot(t *testing.T) {
	status := &ipc.StatusResponse{
		Running: true,
		Dataset: worker.Health{
			Initialized: true,
			SnapshotID:  "snap-1",
			FetchedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			Meetings:    12,
			Users:       4,
			LastBatchID: "b1",
			Results:     3,
			LastBatchAt: time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC),
		},
	}
	joined := strings.Join(renderStatus(status, false), "\n")

	for _, want := range []string{"snap-1", "12", "b1", "3 results"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q:\n%s", want, joined)
		}
	}
}

func TestRenderResultsTable(t *testing.T) {
	results := []match.MatchResult{
		{
			Schedule:        match.Schedule{ID: "s1", Program: "Trio TechCorp L4"},
			Status:          match.StatusAssigned,
			Score:           95,
			MeetingID:       "m1",
			FoundInstructor: "Lucia Mendez",
			Reason:          "matched with high confidence",
		},
		{
			Schedule: match.Schedule{ID: "s2", Program: "Quad Nowhere L9"},
			Status:   match.StatusNotFound,
			Reason:   "no candidate above retrieval floor",
		},
	}
	rendered := renderResults(results)

	for _, want := range []string{"s1", "assigned", "95", "Lucia Mendez", "s2", "not_found"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("missing %q in table:\n%s", want, rendered)
		}
	}
}

func TestReadSchedules(t *testing.T) {
	input := `[{"id":"s1","program":"Trio TechCorp L4"},{"id":"s2","program":"Duo FinBank L7","date":"2026-08-30"}]`
	schedules, err := readSchedules("-", strings.NewReader(input))
	if err != nil {
		t.Fatalf("readSchedules: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("schedules = %d, want 2", len(schedules))
	}
	if schedules[1].Date != "2026-08-30" {
		t.Errorf("date = %q, not carried through", schedules[1].Date)
	}

	if _, err := readSchedules("-", strings.NewReader(`[]`)); err == nil {
		t.Error("empty batch must fail")
	}
	if _, err := readSchedules("-", strings.NewReader(`[{"program":"x"}]`)); err == nil {
		t.Error("schedule without id must fail")
	}
}
