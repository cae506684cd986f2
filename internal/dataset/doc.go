// Package dataset acquires and persists the externally synced meeting and
// user records that matching runs against.
//
// A Fetcher pulls full paginated listings from the upstream Source and
// assembles them into an immutable Snapshot. The Store persists snapshots in
// SQLite so the daemon can serve matches from the last good dataset after a
// restart, and records batch and override history for audit.
package dataset
