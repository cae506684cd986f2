// Package scoring applies an ordered list of penalty rules to candidate
// meeting topics, producing bounded, explainable scores.
//
// Every rule is independent and side-effect-free. A rule that fails is
// logged and skipped so one misbehaving rule can never abort a batch; the
// full ordered penalty list is returned for explainability.
package scoring
