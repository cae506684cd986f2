package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"lessonlink/internal/logging"
)

// ErrFetchInProgress rejects a fetch while another one is running.
var ErrFetchInProgress = errors.New("dataset: fetch in progress")

// Source provides paginated listings from the upstream provider. Pages are
// 1-based; a short page signals the end of the listing.
type Source interface {
	ListMeetings(ctx context.Context, page, pageSize int) ([]MeetingCandidate, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]UserCandidate, error)
}

// Fetcher assembles snapshots from a Source.
//
// A fetch is all-or-nothing: a failure on any page discards everything and
// the previous snapshot stays in use. Records are deduplicated by ID with
// first occurrence winning, since upstream paginates inconsistently under
// concurrent edits.
type Fetcher struct {
	source   Source
	pageSize int
	logger   *slog.Logger
	busy     atomic.Bool
}

// NewFetcher wires a fetcher to its source.
func NewFetcher(source Source, pageSize int, logger *slog.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Fetcher{
		source:   source,
		pageSize: pageSize,
		logger:   logging.WithComponent(logger, "dataset"),
	}
}

// Fetch pulls the full meeting and user listings into a fresh snapshot.
// Only one fetch may run at a time.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return nil, ErrFetchInProgress
	}
	defer f.busy.Store(false)

	started := time.Now()
	meetings, err := f.fetchMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch meetings: %w", err)
	}
	users, err := f.fetchUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	snapshot := &Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: time.Now().UTC(),
		Meetings:  meetings,
		Users:     users,
	}
	f.logger.Info("snapshot fetched",
		logging.String(logging.FieldSnapshotID, snapshot.ID),
		logging.Int("meetings", len(meetings)),
		logging.Int("users", len(users)),
		logging.Duration("elapsed", time.Since(started)))
	return snapshot, nil
}

func (f *Fetcher) fetchMeetings(ctx context.Context) ([]MeetingCandidate, error) {
	seen := make(map[string]struct{})
	var meetings []MeetingCandidate
	for page := 1; ; page++ {
		batch, err := f.source.ListMeetings(ctx, page, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		for _, meeting := range batch {
			if meeting.MeetingID == "" {
				continue
			}
			if _, dup := seen[meeting.MeetingID]; dup {
				continue
			}
			seen[meeting.MeetingID] = struct{}{}
			meetings = append(meetings, meeting)
		}
		if len(batch) < f.pageSize {
			return meetings, nil
		}
	}
}

func (f *Fetcher) fetchUsers(ctx context.Context) ([]UserCandidate, error) {
	seen := make(map[string]struct{})
	var users []UserCandidate
	for page := 1; ; page++ {
		batch, err := f.source.ListUsers(ctx, page, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		for _, user := range batch {
			if user.ID == "" {
				continue
			}
			if _, dup := seen[user.ID]; dup {
				continue
			}
			seen[user.ID] = struct{}{}
			users = append(users, user)
		}
		if len(batch) < f.pageSize {
			return users, nil
		}
	}
}
