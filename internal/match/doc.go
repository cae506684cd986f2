// Package match links schedule entries to meeting candidates.
//
// It builds a fuzzy-searchable index over one dataset snapshot, retrieves a
// shortlist per schedule, scores the shortlist through the scoring engine,
// and classifies each schedule as assigned, ambiguous, or not found. Results
// are collected into an overridable, audit-preserving result set.
package match
