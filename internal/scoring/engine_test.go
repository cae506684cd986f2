package scoring

import (
	"errors"
	"testing"

	"lessonlink/internal/dataset"
	"lessonlink/internal/normalize"
)

func testNormalizer() *normalize.Normalizer {
	return normalize.New([]string{"online", "per", "virtual", "zoom", "class", "clase", "meeting"})
}

func testContext(program, topic string) Context {
	norm := testNormalizer()
	candidate := dataset.MeetingCandidate{MeetingID: "m-1", Topic: topic}
	return Context{
		Program:           program,
		NormalizedProgram: norm.Normalize(program),
		Topic:             topic,
		NormalizedTopic:   norm.Normalize(topic),
		Candidate:         candidate,
		Candidates:        []dataset.MeetingCandidate{candidate},
		Norm:              norm,
	}
}

func staticRule(name string, points int) Rule {
	return RuleFunc{RuleName: name, Fn: func(Context) (*Penalty, error) {
		return &Penalty{Name: name, Points: points}, nil
	}}
}

func TestEvaluateZeroRules(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Evaluate(testContext("DUO APP", "DUO APP"))

	if result.FinalScore != BaseScore {
		t.Errorf("FinalScore = %d, want %d", result.FinalScore, BaseScore)
	}
	if len(result.Penalties) != 0 {
		t.Errorf("Penalties = %v, want none", result.Penalties)
	}
	if result.Disqualified {
		t.Error("zero-rule evaluation must not disqualify")
	}
}

func TestEvaluateAccumulatesInOrder(t *testing.T) {
	engine := NewEngine(nil, staticRule("first", -10), staticRule("second", -20))
	result := engine.Evaluate(testContext("DUO APP", "DUO APP"))

	if result.FinalScore != BaseScore-30 {
		t.Errorf("FinalScore = %d, want %d", result.FinalScore, BaseScore-30)
	}
	if len(result.Penalties) != 2 {
		t.Fatalf("Penalties = %v, want 2 entries", result.Penalties)
	}
	if result.Penalties[0].Name != "first" || result.Penalties[1].Name != "second" {
		t.Errorf("penalty order = %q, %q", result.Penalties[0].Name, result.Penalties[1].Name)
	}
}

func TestEvaluateClampsToFloor(t *testing.T) {
	engine := NewEngine(nil, staticRule("heavy", -70), staticRule("heavier", -80))
	result := engine.Evaluate(testContext("DUO APP", "DUO APP"))

	if result.FinalScore != 0 {
		t.Errorf("FinalScore = %d, want 0", result.FinalScore)
	}
	if !result.Disqualified {
		t.Error("floor hit must disqualify")
	}
}

func TestEvaluateScoreNeverNegative(t *testing.T) {
	engine := NewEngine(nil, staticRule("extreme", VetoPoints))
	result := engine.Evaluate(testContext("DUO APP", "TRIO APP"))
	if result.FinalScore < 0 {
		t.Errorf("FinalScore = %d, must be >= 0", result.FinalScore)
	}
	if !result.Disqualified {
		t.Error("veto points must disqualify")
	}
}

func TestEvaluateFailingRuleIsIsolated(t *testing.T) {
	failing := RuleFunc{RuleName: "broken", Fn: func(Context) (*Penalty, error) {
		return nil, errors.New("boom")
	}}
	panicking := RuleFunc{RuleName: "panics", Fn: func(Context) (*Penalty, error) {
		panic("unexpected")
	}}

	ctx := testContext("DUO APP", "DUO APP")
	withFaults := NewEngine(nil, failing, staticRule("ok", -10), panicking).Evaluate(ctx)
	without := NewEngine(nil, staticRule("ok", -10)).Evaluate(ctx)

	if withFaults.FinalScore != without.FinalScore {
		t.Errorf("FinalScore with faulty rules = %d, want %d", withFaults.FinalScore, without.FinalScore)
	}
	if len(withFaults.Penalties) != len(without.Penalties) {
		t.Errorf("Penalties = %v, want %v", withFaults.Penalties, without.Penalties)
	}
}

func TestAddRule(t *testing.T) {
	engine := NewEngine(nil)
	engine.AddRule(staticRule("added", -1))
	engine.AddRule(nil)

	if got := engine.Rules(); len(got) != 1 || got[0] != "added" {
		t.Errorf("Rules() = %v, want [added]", got)
	}
	result := engine.Evaluate(testContext("DUO APP", "DUO APP"))
	if result.FinalScore != BaseScore-1 {
		t.Errorf("FinalScore = %d, want %d", result.FinalScore, BaseScore-1)
	}
}

func TestScoreCandidateIdenticalTopic(t *testing.T) {
	candidate := dataset.MeetingCandidate{MeetingID: "m-1", Topic: "TRIO TECHCORP L4 (ONLINE)"}
	result := ScoreCandidate("TRIO TECHCORP L4 (ONLINE)", candidate, []dataset.MeetingCandidate{candidate}, testNormalizer(), nil)

	if result.FinalScore != BaseScore {
		t.Errorf("FinalScore = %d, want %d for identical topic", result.FinalScore, BaseScore)
	}
	if result.Disqualified {
		t.Error("identical topic must not disqualify")
	}
}

func TestScoreCandidateCriticalVeto(t *testing.T) {
	candidate := dataset.MeetingCandidate{MeetingID: "m-1", Topic: "TRIO APP"}
	result := ScoreCandidate("DUO APP", candidate, []dataset.MeetingCandidate{candidate}, testNormalizer(), nil)

	if !result.Disqualified {
		t.Errorf("group-size contradiction must disqualify, got score %d", result.FinalScore)
	}
	found := false
	for _, p := range result.Penalties {
		if p.Name == "critical_token_mismatch" {
			found = true
			if p.Points != VetoPoints {
				t.Errorf("veto points = %d, want %d", p.Points, VetoPoints)
			}
		}
	}
	if !found {
		t.Errorf("expected critical_token_mismatch penalty, got %v", result.Penalties)
	}
}

func TestScoreCandidateNilDefaults(t *testing.T) {
	candidate := dataset.MeetingCandidate{MeetingID: "m-1", Topic: "DUO APP"}
	result := ScoreCandidate("DUO APP", candidate, nil, nil, nil)
	if result.FinalScore != BaseScore {
		t.Errorf("FinalScore = %d, want %d", result.FinalScore, BaseScore)
	}
}
