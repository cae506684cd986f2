package match

import (
	"sort"

	"lessonlink/internal/dataset"
	"lessonlink/internal/normalize"
	"lessonlink/internal/scoring"
)

// EvaluateMatch scores every candidate for one program text and picks a
// verdict.
//
// The two-threshold design is deliberate: a hard floor (disqualification)
// rejects candidates outright, while a soft gap (AmbiguityDiff) refuses to
// pick between statistically indistinguishable top scores. Weak signals are
// therefore never assigned, and clearly separated scores are never flagged
// ambiguous.
func EvaluateMatch(program string, candidates []dataset.MeetingCandidate, norm *normalize.Normalizer, engine *scoring.Engine, policy Policy) Outcome {
	policy = policy.normalized()

	if len(candidates) == 0 {
		return Outcome{Decision: DecisionNotFound, Confidence: ConfidenceNone}
	}

	results := make([]scoring.Result, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, scoring.ScoreCandidate(program, candidate, candidates, norm, engine))
	}
	// Stable: original candidate order breaks ties, keeping batches
	// deterministic for regression tests.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	top := results[0]
	if top.Disqualified {
		// Candidates existed but none is acceptable.
		return Outcome{Decision: DecisionNotFound, Confidence: ConfidenceNone, Results: results}
	}

	if len(results) > 1 && top.FinalScore-results[1].FinalScore < policy.AmbiguityDiff {
		return Outcome{Decision: DecisionAmbiguous, Confidence: ConfidenceNone, Best: &results[0], Results: results}
	}

	return Outcome{
		Decision:   DecisionAssigned,
		Confidence: confidenceFor(top.FinalScore, policy),
		Best:       &results[0],
		Results:    results,
	}
}

// confidenceFor bands an assigned score by how far it sits below the base
// score. Never none once a winner is chosen.
func confidenceFor(score int, policy Policy) Confidence {
	switch {
	case score >= policy.HighConfidenceFloor:
		return ConfidenceHigh
	case score >= policy.MediumConfidenceFloor:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
