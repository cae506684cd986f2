package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lessonlink/internal/daemon"
	"lessonlink/internal/dataset"
	"lessonlink/internal/ipc"
	"lessonlink/internal/logging"
	"lessonlink/internal/match"
	"lessonlink/internal/testsupport"
)

type stubSource struct {
	meetings []dataset.MeetingCandidate
	users    []dataset.UserCandidate
}

func (s *stubSource) ListMeetings(ctx context.Context, page, pageSize int) ([]dataset.MeetingCandidate, error) {
	if page > 1 {
		return nil, nil
	}
	return s.meetings, nil
}

func (s *stubSource) ListUsers(ctx context.Context, page, pageSize int) ([]dataset.UserCandidate, error) {
	if page > 1 {
		return nil, nil
	}
	return s.users, nil
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	source := &stubSource{
		meetings: []dataset.MeetingCandidate{
			{MeetingID: "m1", Topic: "TRIO TECHCORP L4", HostID: "u1"},
			{MeetingID: "m2", Topic: "DUO FINBANK L7", HostID: "u2"},
		},
		users: []dataset.UserCandidate{
			{ID: "u1", FirstName: "Lucia", LastName: "Mendez"},
		},
	}
	fetcher := dataset.NewFetcher(source, 100, logger)

	d, err := daemon.New(cfg, store, fetcher, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socket := filepath.Join(cfg.Paths.LogDir, "lessonlink.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.Dataset.Initialized {
		t.Fatal("dataset should not be initialized before refresh")
	}

	refresh, err := client.Refresh()
	if err != nil {
		t.Fatalf("Refresh RPC failed: %v", err)
	}
	if refresh.Meetings != 2 || refresh.Users != 1 {
		t.Fatalf("refresh = %+v, want 2 meetings, 1 user", refresh)
	}

	matchResp, err := client.Match(ipc.MatchRequest{
		Schedules: []match.Schedule{
			{ID: "s1", Program: "Trio TechCorp L4"},
			{ID: "s2", Program: "Quad Nowhere L9"},
		},
	})
	if err != nil {
		t.Fatalf("Match RPC failed: %v", err)
	}
	if matchResp.BatchID == "" || len(matchResp.Results) != 2 {
		t.Fatalf("match = %+v, want batch id and 2 results", matchResp)
	}
	if matchResp.Results[0].Status != match.StatusAssigned {
		t.Errorf("result 0 = %s, want assigned", matchResp.Results[0].Status)
	}

	results, err := client.Results(ipc.ResultsRequest{})
	if err != nil {
		t.Fatalf("Results RPC failed: %v", err)
	}
	if len(results.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(results.Results))
	}

	single, err := client.Results(ipc.ResultsRequest{ScheduleID: "s2"})
	if err != nil {
		t.Fatalf("Results by id RPC failed: %v", err)
	}
	if len(single.Results) != 1 || single.Results[0].Schedule.ID != "s2" {
		t.Fatalf("single result = %+v, want s2", single.Results)
	}
	if _, err := client.Results(ipc.ResultsRequest{ScheduleID: "missing"}); err == nil {
		t.Error("expected error for unknown schedule")
	}

	override, err := client.Override(ipc.OverrideRequest{ScheduleID: "s2", MeetingID: "m2"})
	if err != nil {
		t.Fatalf("Override RPC failed: %v", err)
	}
	if override.Result.Status != match.StatusManual || override.Result.MeetingID != "m2" {
		t.Errorf("override result = %+v", override.Result)
	}
	if len(override.History) != 1 {
		t.Errorf("history = %d entries, want 1", len(override.History))
	}

	health, err := client.DatasetHealth()
	if err != nil {
		t.Fatalf("DatasetHealth RPC failed: %v", err)
	}
	if !health.Health.Initialized || health.Health.Meetings != 2 {
		t.Errorf("health = %+v", health.Health)
	}

	stop, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stop.Stopped {
		t.Fatal("expected Stopped=true")
	}
}
