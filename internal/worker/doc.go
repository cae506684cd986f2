// Package worker runs matching on a dedicated goroutine and coordinates
// dataset refreshes against in-flight batches.
//
// The Unit owns the fuzzy index and matcher for one snapshot and serves
// requests from a single ordered mailbox. The Orchestrator owns the Unit's
// lifecycle, guards against overlapping batches and refreshes, and keeps the
// latest batch results available for queries and manual overrides.
package worker
