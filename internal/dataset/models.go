package dataset

import (
	"strings"
	"time"
)

// MeetingCandidate is an immutable snapshot record of an externally synced
// video-conference meeting. Identity is MeetingID.
type MeetingCandidate struct {
	MeetingID string    `json:"meeting_id"`
	Topic     string    `json:"topic"`
	HostID    string    `json:"host_id"`
	StartTime time.Time `json:"start_time"`
	JoinURL   string    `json:"join_url,omitempty"`
}

// UserCandidate resolves a matched meeting's host into a human-facing
// instructor reference.
type UserCandidate struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
}

// InstructorName returns the best human-facing name for the user.
func (u UserCandidate) InstructorName() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		return full
	}
	return u.Email
}

// Snapshot is one complete, deduplicated capture of the source datasets.
type Snapshot struct {
	ID        string             `json:"id"`
	FetchedAt time.Time          `json:"fetched_at"`
	Meetings  []MeetingCandidate `json:"meetings"`
	Users     []UserCandidate    `json:"users"`
}

// UserIndex returns a lookup from user ID to candidate.
func (s *Snapshot) UserIndex() map[string]UserCandidate {
	idx := make(map[string]UserCandidate, len(s.Users))
	for _, u := range s.Users {
		idx[u.ID] = u
	}
	return idx
}
