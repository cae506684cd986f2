package match

import (
	"fmt"
	"strings"

	"lessonlink/internal/dataset"
	"lessonlink/internal/scoring"
)

// Schedule is a locally authored schedule entry, consumed read-only. The
// matching engine reads Program and keys results by ID; everything else is
// opaque metadata owned by the producer.
type Schedule struct {
	ID      string `json:"id"`
	Program string `json:"program"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
}

// Status classifies one schedule's match verdict.
type Status string

const (
	StatusAssigned Status = "assigned"
	// StatusToUpdate is reserved for the consuming application's re-sync
	// flow: a schedule whose stored link points at a different meeting than
	// the current verdict. The engine itself never emits it.
	StatusToUpdate  Status = "to_update"
	StatusNotFound  Status = "not_found"
	StatusAmbiguous Status = "ambiguous"
	StatusManual    Status = "manual"
)

// Decision is the policy verdict over a scored candidate list.
type Decision string

const (
	DecisionAssigned  Decision = "assigned"
	DecisionAmbiguous Decision = "ambiguous"
	DecisionNotFound  Decision = "not_found"
)

// Confidence tiers an assigned decision by score strength.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Outcome is the decision policy's verdict for one schedule.
type Outcome struct {
	Decision   Decision         `json:"decision"`
	Confidence Confidence       `json:"confidence"`
	Best       *scoring.Result  `json:"best_match,omitempty"`
	Results    []scoring.Result `json:"all_results"`
}

// MatchResult is the projected verdict for one schedule within a batch.
//
// A manual override replaces the verdict fields in a fresh value while
// OriginalState retains the prior automatic verdict for audit.
type MatchResult struct {
	Schedule            Schedule                   `json:"schedule"`
	Status              Status                     `json:"status"`
	Reason              string                     `json:"reason"`
	DetailedReason      string                     `json:"detailed_reason,omitempty"`
	MeetingID           string                     `json:"meeting_id,omitempty"`
	FoundInstructor     string                     `json:"found_instructor,omitempty"`
	BestMatch           *dataset.MeetingCandidate  `json:"best_match,omitempty"`
	Candidates          []dataset.MeetingCandidate `json:"candidates"`
	AmbiguousCandidates []dataset.MeetingCandidate `json:"ambiguous_candidates,omitempty"`
	MatchedCandidate    *dataset.MeetingCandidate  `json:"matched_candidate,omitempty"`
	Score               int                        `json:"score,omitempty"`
	Confidence          Confidence                 `json:"confidence,omitempty"`
	ManualMode          bool                       `json:"manual_mode,omitempty"`
	OriginalState       *MatchResult               `json:"original_state,omitempty"`
}

// formatPenalties renders a penalty trail into the human-facing detailed
// reason surfaced by the UI.
func formatPenalties(penalties []scoring.Penalty) string {
	if len(penalties) == 0 {
		return ""
	}
	parts := make([]string, 0, len(penalties))
	for _, p := range penalties {
		if p.Reason != "" {
			parts = append(parts, fmt.Sprintf("%s %d (%s)", p.Name, p.Points, p.Reason))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", p.Name, p.Points))
	}
	return strings.Join(parts, "; ")
}
