package match

import (
	"testing"

	"lessonlink/internal/dataset"
)

func testSnapshot() *dataset.Snapshot {
	return &dataset.Snapshot{
		ID: "snap-1",
		Meetings: []dataset.MeetingCandidate{
			{MeetingID: "m1", Topic: "TRIO TECHCORP L4", HostID: "u1"},
			{MeetingID: "m2", Topic: "IND CARLOS RUIZ L2", HostID: "u2"},
			{MeetingID: "m3", Topic: "DUO FINBANK L7", HostID: "u3"},
		},
		Users: []dataset.UserCandidate{
			{ID: "u1", FirstName: "Lucia", LastName: "Mendez", Email: "lucia@example.com"},
			{ID: "u2", DisplayName: "Carlos Ruiz"},
		},
	}
}

func TestMatchAllBatchShape(t *testing.T) {
	matcher := NewMatcher(testSnapshot(), testNormalizer(), nil, DefaultPolicy(), nil)

	schedules := []Schedule{
		{ID: "s1", Program: "Trio TechCorp L4"},
		{ID: "s2", Program: "QUAD LOGISTICA SUR L9"},
		{ID: "s3", Program: "Ind Carlos Ruiz L2"},
	}
	results := matcher.MatchAll(schedules)

	if len(results) != len(schedules) {
		t.Fatalf("results = %d, want %d", len(results), len(schedules))
	}
	for i, result := range results {
		if result.Schedule.ID != schedules[i].ID {
			t.Errorf("result %d is for schedule %s, want %s", i, result.Schedule.ID, schedules[i].ID)
		}
	}
}

func TestMatchAllAssignedResolvesInstructor(t *testing.T) {
	matcher := NewMatcher(testSnapshot(), testNormalizer(), nil, DefaultPolicy(), nil)

	results := matcher.MatchAll([]Schedule{{ID: "s1", Program: "Trio TechCorp L4"}})
	result := results[0]

	if result.Status != StatusAssigned {
		t.Fatalf("status = %s, want %s (reason: %s)", result.Status, StatusAssigned, result.Reason)
	}
	if result.MeetingID != "m1" {
		t.Errorf("meeting = %s, want m1", result.MeetingID)
	}
	if result.FoundInstructor != "Lucia Mendez" {
		t.Errorf("instructor = %q, want %q", result.FoundInstructor, "Lucia Mendez")
	}
	if result.MatchedCandidate == nil || result.MatchedCandidate.MeetingID != "m1" {
		t.Errorf("matched candidate = %+v, want m1", result.MatchedCandidate)
	}
	if result.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want %s", result.Confidence, ConfidenceHigh)
	}
}

func TestMatchAllNotFoundOutsideIndex(t *testing.T) {
	matcher := NewMatcher(testSnapshot(), testNormalizer(), nil, DefaultPolicy(), nil)

	results := matcher.MatchAll([]Schedule{{ID: "s1", Program: "QUAD LOGISTICA SUR L9"}})
	result := results[0]

	if result.Status != StatusNotFound {
		t.Fatalf("status = %s, want %s", result.Status, StatusNotFound)
	}
	if result.MeetingID != "" || result.MatchedCandidate != nil {
		t.Errorf("not_found result carries a meeting: %+v", result)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("candidates = %d, want 0", len(result.Candidates))
	}
}

func TestMatchAllAmbiguousSurfacesTies(t *testing.T) {
	snapshot := &dataset.Snapshot{
		ID: "snap-2",
		Meetings: []dataset.MeetingCandidate{
			{MeetingID: "m1", Topic: "IND MARIA GARCIA L4", HostID: "u1"},
			{MeetingID: "m2", Topic: "IND MARIA GARCIA L4", HostID: "u2"},
		},
	}
	matcher := NewMatcher(snapshot, testNormalizer(), nil, DefaultPolicy(), nil)

	results := matcher.MatchAll([]Schedule{{ID: "s1", Program: "Ind Maria Garcia L4"}})
	result := results[0]

	if result.Status != StatusAmbiguous {
		t.Fatalf("status = %s, want %s", result.Status, StatusAmbiguous)
	}
	if len(result.AmbiguousCandidates) != 2 {
		t.Errorf("ambiguous candidates = %d, want 2", len(result.AmbiguousCandidates))
	}
	if result.MeetingID != "" {
		t.Errorf("ambiguous result carries meeting %s, must stay unassigned", result.MeetingID)
	}
}

func TestMatcherNilSnapshot(t *testing.T) {
	matcher := NewMatcher(nil, nil, nil, Policy{}, nil)

	results := matcher.MatchAll([]Schedule{{ID: "s1", Program: "anything"}})
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Status != StatusNotFound {
		t.Errorf("status = %s, want %s", results[0].Status, StatusNotFound)
	}
}
