package match

import (
	"fmt"
	"log/slog"

	"lessonlink/internal/dataset"
	"lessonlink/internal/logging"
	"lessonlink/internal/normalize"
	"lessonlink/internal/scoring"
)

// Matcher drives the scoring engine and decision policy over one dataset
// snapshot. All data it needs is resident in memory, so MatchAll runs
// synchronously at full speed without yielding mid-batch.
type Matcher struct {
	norm   *normalize.Normalizer
	engine *scoring.Engine
	policy Policy
	index  *Index
	users  map[string]dataset.UserCandidate
	logger *slog.Logger
}

// NewMatcher indexes the snapshot and prepares the matcher. A nil engine
// uses the default rule set.
func NewMatcher(snapshot *dataset.Snapshot, norm *normalize.Normalizer, engine *scoring.Engine, policy Policy, logger *slog.Logger) *Matcher {
	if norm == nil {
		norm = normalize.New(nil)
	}
	if engine == nil {
		engine = scoring.NewDefaultEngine(logger)
	}
	policy = policy.normalized()

	m := &Matcher{
		norm:   norm,
		engine: engine,
		policy: policy,
		logger: logging.WithComponent(logger, "match"),
		users:  map[string]dataset.UserCandidate{},
	}
	if snapshot != nil {
		m.index = NewIndex(snapshot.Meetings, norm, policy)
		m.users = snapshot.UserIndex()
	} else {
		m.index = NewIndex(nil, norm, policy)
	}
	return m
}

// MatchAll evaluates every schedule in the batch, returning exactly one
// result per schedule in input order.
func (m *Matcher) MatchAll(schedules []Schedule) []MatchResult {
	results := make([]MatchResult, 0, len(schedules))
	for _, schedule := range schedules {
		results = append(results, m.matchOne(schedule))
	}
	return results
}

func (m *Matcher) matchOne(schedule Schedule) MatchResult {
	shortlist := m.index.Shortlist(schedule.Program)
	outcome := EvaluateMatch(schedule.Program, shortlist, m.norm, m.engine, m.policy)

	result := MatchResult{
		Schedule:   schedule,
		Candidates: shortlist,
		Confidence: outcome.Confidence,
	}

	switch outcome.Decision {
	case DecisionAssigned:
		best := outcome.Best
		result.Status = StatusAssigned
		result.Score = best.FinalScore
		result.MeetingID = best.Candidate.MeetingID
		candidate := best.Candidate
		result.BestMatch = &candidate
		result.MatchedCandidate = &candidate
		result.FoundInstructor = m.instructorFor(candidate.HostID)
		result.Reason = fmt.Sprintf("matched with %s confidence", outcome.Confidence)
		result.DetailedReason = formatPenalties(best.Penalties)

	case DecisionAmbiguous:
		best := outcome.Best
		result.Status = StatusAmbiguous
		result.Score = best.FinalScore
		candidate := best.Candidate
		result.BestMatch = &candidate
		result.AmbiguousCandidates = nearTied(outcome.Results, m.policy.AmbiguityDiff)
		result.Reason = fmt.Sprintf("%d candidates within %d points", len(result.AmbiguousCandidates), m.policy.AmbiguityDiff)
		result.DetailedReason = formatPenalties(best.Penalties)

	default:
		result.Status = StatusNotFound
		if len(shortlist) == 0 {
			result.Reason = "no candidate above retrieval floor"
		} else {
			result.Reason = "all candidates disqualified"
			result.DetailedReason = formatPenalties(outcome.Results[0].Penalties)
		}
	}

	m.logger.Debug("schedule evaluated",
		logging.String(logging.FieldScheduleID, schedule.ID),
		logging.String("status", string(result.Status)),
		logging.Int("shortlist", len(shortlist)),
		logging.Int("score", result.Score))
	return result
}

func (m *Matcher) instructorFor(hostID string) string {
	if user, ok := m.users[hostID]; ok {
		return user.InstructorName()
	}
	return ""
}

// nearTied returns every candidate whose score sits within the ambiguity
// gap of the top result, surfaced for manual resolution.
func nearTied(results []scoring.Result, gap int) []dataset.MeetingCandidate {
	if len(results) == 0 {
		return nil
	}
	top := results[0].FinalScore
	tied := make([]dataset.MeetingCandidate, 0, 2)
	for _, r := range results {
		if top-r.FinalScore < gap && !r.Disqualified {
			tied = append(tied, r.Candidate)
		}
	}
	return tied
}
