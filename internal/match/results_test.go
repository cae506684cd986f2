package match

import (
	"testing"

	"lessonlink/internal/dataset"
)

func seededResultSet(t *testing.T) *ResultSet {
	t.Helper()
	rs := NewResultSet()
	rs.Replace([]MatchResult{
		{
			Schedule:  Schedule{ID: "s1", Program: "Trio TechCorp L4"},
			Status:    StatusAssigned,
			MeetingID: "m1",
			Score:     95,
		},
		{
			Schedule: Schedule{ID: "s2", Program: "Quad Logistica Sur L9"},
			Status:   StatusNotFound,
		},
	})
	return rs
}

func TestResultSetListOrder(t *testing.T) {
	rs := seededResultSet(t)

	list := rs.List()
	if len(list) != 2 {
		t.Fatalf("list = %d entries, want 2", len(list))
	}
	if list[0].Schedule.ID != "s1" || list[1].Schedule.ID != "s2" {
		t.Errorf("order = [%s %s], want [s1 s2]", list[0].Schedule.ID, list[1].Schedule.ID)
	}
}

func TestResultSetReplaceDiscardsPrevious(t *testing.T) {
	rs := seededResultSet(t)
	rs.Replace([]MatchResult{{Schedule: Schedule{ID: "s9"}, Status: StatusNotFound}})

	if rs.Len() != 1 {
		t.Fatalf("len = %d, want 1", rs.Len())
	}
	if _, ok := rs.Get("s1"); ok {
		t.Error("stale result s1 survived Replace")
	}
}

func TestApplyOverride(t *testing.T) {
	rs := seededResultSet(t)
	meeting := dataset.MeetingCandidate{MeetingID: "m7", Topic: "TRIO TECHCORP L4 (ONLINE)", HostID: "u7"}

	got, err := rs.ApplyOverride("s2", meeting, "Ana Torres")
	if err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}
	if got.Status != StatusManual || !got.ManualMode {
		t.Errorf("status = %s manual=%t, want manual/true", got.Status, got.ManualMode)
	}
	if got.MeetingID != "m7" {
		t.Errorf("meeting = %s, want m7", got.MeetingID)
	}
	if got.FoundInstructor != "Ana Torres" {
		t.Errorf("instructor = %q, want Ana Torres", got.FoundInstructor)
	}
	if got.OriginalState == nil || got.OriginalState.Status != StatusNotFound {
		t.Fatalf("original state = %+v, want prior not_found verdict", got.OriginalState)
	}

	stored, ok := rs.Get("s2")
	if !ok || stored.Status != StatusManual {
		t.Errorf("stored result = %+v, want manual verdict", stored)
	}
}

func TestApplyOverrideKeepsFirstAutomaticState(t *testing.T) {
	rs := seededResultSet(t)

	first := dataset.MeetingCandidate{MeetingID: "m7"}
	if _, err := rs.ApplyOverride("s1", first, "Ana Torres"); err != nil {
		t.Fatalf("first override: %v", err)
	}
	second := dataset.MeetingCandidate{MeetingID: "m8"}
	got, err := rs.ApplyOverride("s1", second, "Luis Prado")
	if err != nil {
		t.Fatalf("second override: %v", err)
	}

	if got.MeetingID != "m8" {
		t.Errorf("meeting = %s, want m8", got.MeetingID)
	}
	original := got.OriginalState
	if original == nil {
		t.Fatal("original state lost after repeated overrides")
	}
	if original.Status != StatusAssigned || original.MeetingID != "m1" {
		t.Errorf("original = %s/%s, want the automatic assigned/m1 verdict", original.Status, original.MeetingID)
	}
	if original.OriginalState != nil {
		t.Error("original state must not chain")
	}
}

func TestApplyOverrideUnknownSchedule(t *testing.T) {
	rs := seededResultSet(t)
	if _, err := rs.ApplyOverride("nope", dataset.MeetingCandidate{MeetingID: "m1"}, ""); err == nil {
		t.Fatal("expected error for unknown schedule")
	}
}
