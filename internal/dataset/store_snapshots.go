package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// snapshotsToKeep bounds retained history. Older snapshots are pruned on
// save; the latest one is all a restart needs.
const snapshotsToKeep = 5

// SaveSnapshot persists a snapshot atomically and prunes old history.
// Either the whole snapshot lands or none of it does.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return errors.New("nil snapshot")
	}
	if snapshot.ID == "" {
		return errors.New("snapshot has no id")
	}
	ctx = ensureContext(ctx)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin snapshot tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		fetchedAt := snapshot.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (id, fetched_at, meeting_count, user_count) VALUES (?, ?, ?, ?)`,
			snapshot.ID,
			fetchedAt.Format(time.RFC3339Nano),
			len(snapshot.Meetings),
			len(snapshot.Users),
		); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}

		for _, meeting := range snapshot.Meetings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO snapshot_meetings (snapshot_id, meeting_id, topic, host_id, start_time, join_url)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				snapshot.ID,
				meeting.MeetingID,
				meeting.Topic,
				meeting.HostID,
				nullableTime(meeting.StartTime),
				nullableString(meeting.JoinURL),
			); err != nil {
				return fmt.Errorf("insert meeting %s: %w", meeting.MeetingID, err)
			}
		}

		for _, user := range snapshot.Users {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO snapshot_users (snapshot_id, user_id, email, first_name, last_name, display_name)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				snapshot.ID,
				user.ID,
				nullableString(user.Email),
				nullableString(user.FirstName),
				nullableString(user.LastName),
				nullableString(user.DisplayName),
			); err != nil {
				return fmt.Errorf("insert user %s: %w", user.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM snapshots WHERE id NOT IN (
                SELECT id FROM snapshots ORDER BY fetched_at DESC LIMIT ?
            )`, snapshotsToKeep,
		); err != nil {
			return fmt.Errorf("prune snapshots: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit snapshot: %w", err)
		}
		return nil
	})
}

// LatestSnapshot loads the most recently fetched snapshot, or nil when the
// store is empty.
func (s *Store) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	ctx = ensureContext(ctx)

	var (
		id        string
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fetched_at FROM snapshots ORDER BY fetched_at DESC LIMIT 1`,
	).Scan(&id, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	snapshot := &Snapshot{ID: id}
	if ts, parseErr := time.Parse(time.RFC3339Nano, fetchedAt); parseErr == nil {
		snapshot.FetchedAt = ts
	}

	if snapshot.Meetings, err = s.snapshotMeetings(ctx, id); err != nil {
		return nil, err
	}
	if snapshot.Users, err = s.snapshotUsers(ctx, id); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *Store) snapshotMeetings(ctx context.Context, snapshotID string) ([]MeetingCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT meeting_id, topic, host_id, start_time, join_url
         FROM snapshot_meetings WHERE snapshot_id = ? ORDER BY meeting_id`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	var meetings []MeetingCandidate
	for rows.Next() {
		var (
			m         MeetingCandidate
			startTime sql.NullString
			joinURL   sql.NullString
		)
		if err := rows.Scan(&m.MeetingID, &m.Topic, &m.HostID, &startTime, &joinURL); err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		if startTime.Valid {
			if ts, parseErr := time.Parse(time.RFC3339Nano, startTime.String); parseErr == nil {
				m.StartTime = ts
			}
		}
		m.JoinURL = stringOrEmpty(joinURL)
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meetings: %w", err)
	}
	return meetings, nil
}

func (s *Store) snapshotUsers(ctx context.Context, snapshotID string) ([]UserCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, email, first_name, last_name, display_name
         FROM snapshot_users WHERE snapshot_id = ? ORDER BY user_id`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []UserCandidate
	for rows.Next() {
		var u UserCandidate
		var email, first, last, display sql.NullString
		if err := rows.Scan(&u.ID, &email, &first, &last, &display); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Email = stringOrEmpty(email)
		u.FirstName = stringOrEmpty(first)
		u.LastName = stringOrEmpty(last)
		u.DisplayName = stringOrEmpty(display)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
