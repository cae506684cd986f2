package match

import (
	"fmt"
	"sync"

	"lessonlink/internal/dataset"
)

// ResultSet holds the results of the most recent batch, keyed by schedule
// identity, and applies manual overrides on top of them.
//
// Overrides never mutate a stored result in place. The new value carries the
// prior verdict under OriginalState; once a result has been overridden, the
// original automatic verdict is preserved across further overrides.
type ResultSet struct {
	mu      sync.Mutex
	order   []string
	results map[string]MatchResult
}

// NewResultSet returns an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{results: map[string]MatchResult{}}
}

// Replace swaps in the results of a freshly matched batch, discarding any
// previous batch along with its overrides.
func (rs *ResultSet) Replace(results []MatchResult) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.order = rs.order[:0]
	rs.results = make(map[string]MatchResult, len(results))
	for _, result := range results {
		id := result.Schedule.ID
		if _, seen := rs.results[id]; seen {
			continue
		}
		rs.order = append(rs.order, id)
		rs.results[id] = result
	}
}

// List returns the current results in batch order.
func (rs *ResultSet) List() []MatchResult {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := make([]MatchResult, 0, len(rs.order))
	for _, id := range rs.order {
		out = append(out, rs.results[id])
	}
	return out
}

// Get looks up one result by schedule identity.
func (rs *ResultSet) Get(scheduleID string) (MatchResult, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	result, ok := rs.results[scheduleID]
	return result, ok
}

// Len reports the number of stored results.
func (rs *ResultSet) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.order)
}

// ApplyOverride pins a schedule to an operator-chosen meeting and returns
// the stored result. The instructor name is resolved by the caller, which
// has the snapshot at hand.
func (rs *ResultSet) ApplyOverride(scheduleID string, meeting dataset.MeetingCandidate, instructor string) (MatchResult, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, ok := rs.results[scheduleID]
	if !ok {
		return MatchResult{}, fmt.Errorf("no result for schedule %q", scheduleID)
	}

	original := current.OriginalState
	if original == nil {
		// First override: snapshot the automatic verdict.
		auto := current
		auto.OriginalState = nil
		original = &auto
	}

	chosen := meeting
	overridden := MatchResult{
		Schedule:         current.Schedule,
		Status:           StatusManual,
		Reason:           "manually assigned",
		MeetingID:        chosen.MeetingID,
		FoundInstructor:  instructor,
		BestMatch:        &chosen,
		MatchedCandidate: &chosen,
		Candidates:       current.Candidates,
		ManualMode:       true,
		OriginalState:    original,
	}
	rs.results[scheduleID] = overridden
	return overridden, nil
}
