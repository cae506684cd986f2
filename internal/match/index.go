package match

import (
	"math"
	"sort"

	"lessonlink/internal/dataset"
	"lessonlink/internal/normalize"
)

// Index is a fuzzy-searchable index over one snapshot's meeting topics.
//
// Construction is the expensive step and happens exactly once per snapshot:
// every topic is normalized, tokenized, and turned into an IDF-weighted
// term-frequency vector. Retrieval then ranks candidates by cosine
// similarity against the query vector.
type Index struct {
	norm     *normalize.Normalizer
	meetings []dataset.MeetingCandidate
	vectors  []*topicVector
	idf      map[string]float64
	floor    float64
	limit    int
}

type topicVector struct {
	terms map[string]float64
	norm  float64
}

// NewIndex builds the index for a meeting set under the given policy.
func NewIndex(meetings []dataset.MeetingCandidate, norm *normalize.Normalizer, policy Policy) *Index {
	policy = policy.normalized()
	if norm == nil {
		norm = normalize.New(nil)
	}

	ix := &Index{
		norm:     norm,
		meetings: append([]dataset.MeetingCandidate(nil), meetings...),
		floor:    policy.RetrievalFloor,
		limit:    policy.ShortlistSize,
	}

	raw := make([]map[string]float64, len(ix.meetings))
	docFreq := make(map[string]int)
	for i, meeting := range ix.meetings {
		counts := termCounts(norm.Tokens(meeting.Topic))
		raw[i] = counts
		for term := range counts {
			docFreq[term]++
		}
	}

	ix.idf = make(map[string]float64, len(docFreq))
	n := float64(len(ix.meetings))
	for term, df := range docFreq {
		ix.idf[term] = math.Log((n + 1) / (1 + float64(df)))
	}

	ix.vectors = make([]*topicVector, len(ix.meetings))
	for i, counts := range raw {
		ix.vectors[i] = newVector(counts, ix.idf)
	}
	return ix
}

// Size reports the number of indexed meetings.
func (ix *Index) Size() int {
	if ix == nil {
		return 0
	}
	return len(ix.meetings)
}

// Shortlist retrieves the bounded candidate list for a program text,
// best-first. Candidates below the similarity floor are excluded; an empty
// shortlist is the caller's signal that no neighbor exists.
func (ix *Index) Shortlist(program string) []dataset.MeetingCandidate {
	if ix == nil || len(ix.meetings) == 0 {
		return nil
	}
	query := newVector(termCounts(ix.norm.Tokens(program)), ix.idf)
	if query == nil {
		return nil
	}

	type scored struct {
		pos   int
		score float64
	}
	hits := make([]scored, 0, len(ix.vectors))
	for i, vec := range ix.vectors {
		score := cosine(query, vec)
		if score < ix.floor {
			continue
		}
		hits = append(hits, scored{pos: i, score: score})
	}
	// Stable on similarity, snapshot order breaks ties: retrieval stays
	// deterministic across runs of the same snapshot.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})
	if len(hits) > ix.limit {
		hits = hits[:ix.limit]
	}

	shortlist := make([]dataset.MeetingCandidate, 0, len(hits))
	for _, hit := range hits {
		shortlist = append(shortlist, ix.meetings[hit.pos])
	}
	return shortlist
}

func termCounts(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

func newVector(counts map[string]float64, idf map[string]float64) *topicVector {
	if len(counts) == 0 {
		return nil
	}
	terms := make(map[string]float64, len(counts))
	var norm float64
	for term, count := range counts {
		weight := count
		if idfWeight, ok := idf[term]; ok && idfWeight > 0 {
			weight *= idfWeight
		}
		if weight == 0 {
			continue
		}
		terms[term] = weight
		norm += weight * weight
	}
	if len(terms) == 0 {
		return nil
	}
	return &topicVector{terms: terms, norm: math.Sqrt(norm)}
}

func cosine(a, b *topicVector) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for term, weight := range a.terms {
		if other, ok := b.terms[term]; ok {
			dot += weight * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}
