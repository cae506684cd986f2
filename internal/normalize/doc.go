// Package normalize canonicalizes free text for comparison.
//
// Schedule programs and meeting topics are human-authored: they disagree on
// case, accents, separators, and filler markers while naming the same
// session. The Normalizer folds those differences away so the scoring layer
// compares content, not layout.
package normalize
