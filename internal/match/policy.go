package match

import "lessonlink/internal/config"

// Policy centralizes matching thresholds and retrieval bounds.
type Policy struct {
	// AmbiguityDiff is the score gap below which the top two candidates
	// are considered indistinguishable.
	AmbiguityDiff int
	// HighConfidenceFloor and MediumConfidenceFloor band assigned scores
	// by distance below the base score.
	HighConfidenceFloor   int
	MediumConfidenceFloor int
	// ShortlistSize bounds fuzzy retrieval per schedule.
	ShortlistSize int
	// RetrievalFloor is the minimum index similarity for shortlist entry.
	RetrievalFloor float64
}

// DefaultPolicy returns the tuned defaults.
func DefaultPolicy() Policy {
	return Policy{
		AmbiguityDiff:         5,
		HighConfidenceFloor:   85,
		MediumConfidenceFloor: 60,
		ShortlistSize:         8,
		RetrievalFloor:        0.10,
	}
}

// PolicyFromConfig maps the loaded matching configuration into a Policy.
func PolicyFromConfig(m config.Matching) Policy {
	return Policy{
		AmbiguityDiff:         m.AmbiguityDiff,
		HighConfidenceFloor:   m.HighConfidenceFloor,
		MediumConfidenceFloor: m.MediumConfidenceFloor,
		ShortlistSize:         m.ShortlistSize,
		RetrievalFloor:        m.RetrievalFloor,
	}.normalized()
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.AmbiguityDiff <= 0 {
		p.AmbiguityDiff = d.AmbiguityDiff
	}
	if p.HighConfidenceFloor <= 0 || p.HighConfidenceFloor > 100 {
		p.HighConfidenceFloor = d.HighConfidenceFloor
	}
	if p.MediumConfidenceFloor <= 0 || p.MediumConfidenceFloor >= p.HighConfidenceFloor {
		p.MediumConfidenceFloor = d.MediumConfidenceFloor
	}
	if p.ShortlistSize <= 0 {
		p.ShortlistSize = d.ShortlistSize
	}
	if p.RetrievalFloor <= 0 || p.RetrievalFloor >= 1 {
		p.RetrievalFloor = d.RetrievalFloor
	}
	return p
}
