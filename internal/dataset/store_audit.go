package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// BatchRecord is one persisted match batch.
type BatchRecord struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	ScheduleCount int       `json:"schedule_count"`
	ResultsJSON   []byte    `json:"-"`
}

// OverrideRecord is one persisted manual override.
type OverrideRecord struct {
	ScheduleID string    `json:"schedule_id"`
	MeetingID  string    `json:"meeting_id"`
	Instructor string    `json:"instructor,omitempty"`
	AppliedAt  time.Time `json:"applied_at"`
}

// RecordBatch persists a completed batch with its serialized results.
func (s *Store) RecordBatch(ctx context.Context, batchID string, scheduleCount int, resultsJSON []byte) error {
	if batchID == "" {
		return errors.New("batch has no id")
	}
	return s.execWithRetry(ctx,
		`INSERT INTO batches (id, created_at, schedule_count, results_json) VALUES (?, ?, ?, ?)`,
		batchID,
		time.Now().UTC().Format(time.RFC3339Nano),
		scheduleCount,
		string(resultsJSON),
	)
}

// RecordOverride appends a manual override to the audit trail.
func (s *Store) RecordOverride(ctx context.Context, scheduleID, meetingID, instructor string) error {
	if scheduleID == "" || meetingID == "" {
		return errors.New("override needs schedule and meeting ids")
	}
	return s.execWithRetry(ctx,
		`INSERT INTO overrides (schedule_id, meeting_id, instructor, applied_at) VALUES (?, ?, ?, ?)`,
		scheduleID,
		meetingID,
		nullableString(instructor),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
}

// Overrides lists the override audit trail for one schedule, oldest first.
func (s *Store) Overrides(ctx context.Context, scheduleID string) ([]OverrideRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT schedule_id, meeting_id, COALESCE(instructor, ''), applied_at
         FROM overrides WHERE schedule_id = ? ORDER BY id`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	var records []OverrideRecord
	for rows.Next() {
		var rec OverrideRecord
		var appliedAt string
		if err := rows.Scan(&rec.ScheduleID, &rec.MeetingID, &rec.Instructor, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, appliedAt); parseErr == nil {
			rec.AppliedAt = ts
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}
	return records, nil
}
