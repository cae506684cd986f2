package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	// maxLexicalPoints is the worst-case lexical distance penalty.
	maxLexicalPoints = 60
	// missingTokenPoints is charged per program token absent from the topic.
	missingTokenPoints = 12
	// missingTokenCap bounds the total token coverage penalty.
	missingTokenCap = 48
	// duplicateTopicPoints nudges near-duplicate siblings into the ambiguity gap.
	duplicateTopicPoints = 5
)

// groupSizeMarkers maps mutually-exclusive group-size tokens to their
// canonical form. A session is exactly one of these; a DUO schedule can
// never match a TRIO meeting.
var groupSizeMarkers = map[string]string{
	"ind":        "ind",
	"individual": "ind",
	"duo":        "duo",
	"trio":       "trio",
	"quad":       "quad",
}

// levelPattern matches program level markers such as L4 or L12.
var levelPattern = regexp.MustCompile(`^l\d{1,2}$`)

// DefaultRules returns the standard rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		RuleFunc{RuleName: "critical_token_mismatch", Fn: criticalTokenMismatch},
		RuleFunc{RuleName: "lexical_distance", Fn: lexicalDistance},
		RuleFunc{RuleName: "token_coverage", Fn: tokenCoverage},
		RuleFunc{RuleName: "duplicate_topic", Fn: duplicateTopic},
	}
}

// criticalTokenMismatch is the hard veto: when a group-size or level marker
// is present on both sides and contradicts, the candidate is disqualified
// outright via an extreme penalty rather than a separate boolean channel.
func criticalTokenMismatch(ctx Context) (*Penalty, error) {
	if ctx.Norm == nil {
		return nil, fmt.Errorf("normalizer unavailable")
	}
	programTokens := ctx.Norm.Tokens(ctx.Program)
	topicTokens := ctx.Norm.Tokens(ctx.Topic)

	if pg, tg := findGroupSize(programTokens), findGroupSize(topicTokens); pg != "" && tg != "" && pg != tg {
		return &Penalty{
			Name:   "critical_token_mismatch",
			Points: VetoPoints,
			Reason: fmt.Sprintf("group size %s vs %s", pg, tg),
		}, nil
	}
	if pl, tl := findLevel(programTokens), findLevel(topicTokens); pl != "" && tl != "" && pl != tl {
		return &Penalty{
			Name:   "critical_token_mismatch",
			Points: VetoPoints,
			Reason: fmt.Sprintf("level %s vs %s", pl, tl),
		}, nil
	}
	return nil, nil
}

// lexicalDistance charges the Levenshtein edit ratio between the normalized
// program and topic, scaled to maxLexicalPoints.
func lexicalDistance(ctx Context) (*Penalty, error) {
	program, topic := ctx.NormalizedProgram, ctx.NormalizedTopic
	if program == "" && topic == "" {
		return nil, nil
	}
	longest := max(len(program), len(topic))
	if longest == 0 {
		return nil, nil
	}
	dist := levenshtein(program, topic)
	if dist == 0 {
		return nil, nil
	}
	points := int(math.Round(float64(dist) / float64(longest) * maxLexicalPoints))
	if points == 0 {
		return nil, nil
	}
	return &Penalty{
		Name:   "lexical_distance",
		Points: -points,
		Reason: fmt.Sprintf("edit distance %d over %d characters", dist, longest),
	}, nil
}

// tokenCoverage charges program tokens that never appear in the topic.
func tokenCoverage(ctx Context) (*Penalty, error) {
	if ctx.Norm == nil {
		return nil, fmt.Errorf("normalizer unavailable")
	}
	programTokens := ctx.Norm.Tokens(ctx.Program)
	if len(programTokens) == 0 {
		return nil, nil
	}
	topicSet := make(map[string]struct{})
	for _, token := range ctx.Norm.Tokens(ctx.Topic) {
		topicSet[token] = struct{}{}
	}

	var missing []string
	for _, token := range programTokens {
		if _, ok := topicSet[token]; !ok {
			missing = append(missing, token)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	points := len(missing) * missingTokenPoints
	if points > missingTokenCap {
		points = missingTokenCap
	}
	return &Penalty{
		Name:   "token_coverage",
		Points: -points,
		Reason: "missing tokens: " + strings.Join(missing, ", "),
	}, nil
}

// duplicateTopic flags candidates whose canonical topic is shared by a
// sibling in the same consideration set. Twins receive the same penalty, so
// genuinely indistinguishable candidates land inside the ambiguity gap and
// get routed to manual resolution instead of an arbitrary assignment.
func duplicateTopic(ctx Context) (*Penalty, error) {
	if ctx.Norm == nil {
		return nil, fmt.Errorf("normalizer unavailable")
	}
	own := ctx.Norm.Canonical(ctx.Topic)
	if own == "" {
		return nil, nil
	}
	for _, sibling := range ctx.Candidates {
		if sibling.MeetingID == ctx.Candidate.MeetingID {
			continue
		}
		if ctx.Norm.Canonical(sibling.Topic) == own {
			return &Penalty{
				Name:   "duplicate_topic",
				Points: -duplicateTopicPoints,
				Reason: "another candidate shares this topic",
			}, nil
		}
	}
	return nil, nil
}

func findGroupSize(tokens []string) string {
	for _, token := range tokens {
		if canonical, ok := groupSizeMarkers[token]; ok {
			return canonical
		}
	}
	return ""
}

func findLevel(tokens []string) string {
	for _, token := range tokens {
		if levelPattern.MatchString(token) {
			return token
		}
	}
	return ""
}
