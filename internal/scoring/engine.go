package scoring

import (
	"fmt"
	"log/slog"

	"lessonlink/internal/dataset"
	"lessonlink/internal/logging"
	"lessonlink/internal/normalize"
)

// BaseScore is the starting score for every candidate before penalties apply.
const BaseScore = 100

// VetoPoints is the penalty applied by hard-veto rules. Its magnitude
// exceeds BaseScore plus the largest sum the remaining rules can contribute
// back, so a veto guarantees disqualification on its own.
const VetoPoints = -(BaseScore + 50)

// Penalty is one rule's verdict. Points are always negative.
type Penalty struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Reason string `json:"reason,omitempty"`
}

// Context is the per-candidate evaluation input handed to every rule.
type Context struct {
	Program           string
	NormalizedProgram string
	Topic             string
	NormalizedTopic   string
	Candidate         dataset.MeetingCandidate
	// Candidates is the full set under consideration for this schedule,
	// enabling rules that reason about siblings.
	Candidates []dataset.MeetingCandidate
	Norm       *normalize.Normalizer
}

// Result is the scored outcome for one (program, candidate) pair.
//
// Invariant: FinalScore == max(0, BaseScore + sum of penalty points) and
// Disqualified is true exactly when the floor was hit.
type Result struct {
	BaseScore    int                      `json:"base_score"`
	Candidate    dataset.MeetingCandidate `json:"candidate"`
	FinalScore   int                      `json:"final_score"`
	Penalties    []Penalty                `json:"penalties"`
	Disqualified bool                     `json:"disqualified"`
}

// Rule inspects an evaluation context and returns a penalty, nil when the
// rule does not apply, or an error when it cannot evaluate.
type Rule interface {
	Name() string
	Evaluate(Context) (*Penalty, error)
}

// RuleFunc adapts a plain function into a named Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(Context) (*Penalty, error)
}

func (r RuleFunc) Name() string { return r.RuleName }

func (r RuleFunc) Evaluate(ctx Context) (*Penalty, error) { return r.Fn(ctx) }

// Engine evaluates an ordered rule list against scoring contexts.
//
// Rules may be added before a batch starts; the list is treated as immutable
// during a run so scoring stays reproducible within one batch.
type Engine struct {
	logger *slog.Logger
	rules  []Rule
}

// NewEngine constructs an engine with the given rules, in order.
func NewEngine(logger *slog.Logger, rules ...Rule) *Engine {
	return &Engine{
		logger: logging.WithComponent(logger, "scoring"),
		rules:  append([]Rule(nil), rules...),
	}
}

// NewDefaultEngine constructs an engine carrying the default rule set.
func NewDefaultEngine(logger *slog.Logger) *Engine {
	return NewEngine(logger, DefaultRules()...)
}

// AddRule appends a rule to the evaluation order.
func (e *Engine) AddRule(rule Rule) {
	if rule == nil {
		return
	}
	e.rules = append(e.rules, rule)
}

// Rules returns the rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		names = append(names, rule.Name())
	}
	return names
}

// Evaluate applies every rule in order and returns the clamped score with
// the full penalty trail. A rule error or panic counts as "no penalty".
func (e *Engine) Evaluate(ctx Context) Result {
	result := Result{
		BaseScore: BaseScore,
		Candidate: ctx.Candidate,
		Penalties: make([]Penalty, 0, len(e.rules)),
	}

	score := BaseScore
	for _, rule := range e.rules {
		penalty, err := e.applyRule(rule, ctx)
		if err != nil {
			e.logger.Warn("scoring rule failed",
				logging.String(logging.FieldRule, rule.Name()),
				logging.String("topic", ctx.Topic),
				logging.Error(err))
			continue
		}
		if penalty == nil {
			continue
		}
		score += penalty.Points
		result.Penalties = append(result.Penalties, *penalty)
	}

	if score < 0 {
		score = 0
	}
	result.FinalScore = score
	result.Disqualified = score == 0
	return result
}

// applyRule isolates rule faults: both returned errors and panics are
// converted into an error for the caller to log.
func (e *Engine) applyRule(rule Rule, ctx Context) (penalty *Penalty, err error) {
	defer func() {
		if r := recover(); r != nil {
			penalty = nil
			err = fmt.Errorf("rule panicked: %v", r)
		}
	}()
	return rule.Evaluate(ctx)
}

// ScoreCandidate normalizes inputs, builds a Context, and evaluates it.
// A nil normalizer disables filler removal; a nil engine uses the default
// rule set. Exposed independently of batch orchestration so individual
// pairs can be scored and tested in isolation.
func ScoreCandidate(program string, candidate dataset.MeetingCandidate, all []dataset.MeetingCandidate, norm *normalize.Normalizer, engine *Engine) Result {
	if norm == nil {
		norm = normalize.New(nil)
	}
	if engine == nil {
		engine = NewDefaultEngine(nil)
	}
	ctx := Context{
		Program:           program,
		NormalizedProgram: norm.Normalize(program),
		Topic:             candidate.Topic,
		NormalizedTopic:   norm.Normalize(candidate.Topic),
		Candidate:         candidate,
		Candidates:        all,
		Norm:              norm,
	}
	return engine.Evaluate(ctx)
}
