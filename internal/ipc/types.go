package ipc

import (
	"lessonlink/internal/dataset"
	"lessonlink/internal/match"
	"lessonlink/internal/worker"
)

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	DatabasePath string        `json:"database_path"`
	LockPath     string        `json:"lock_path"`
	Dataset      worker.Health `json:"dataset"`
}

// RefreshRequest triggers a dataset fetch and swap.
type RefreshRequest struct{}

// RefreshResponse reports the activated snapshot.
type RefreshResponse struct {
	SnapshotID string `json:"snapshot_id"`
	Meetings   int    `json:"meetings"`
	Users      int    `json:"users"`
}

// MatchRequest submits one batch of schedules.
type MatchRequest struct {
	Schedules []match.Schedule `json:"schedules"`
}

// MatchResponse carries the batch verdicts.
type MatchResponse struct {
	BatchID string              `json:"batch_id"`
	Results []match.MatchResult `json:"results"`
}

// ResultsRequest fetches stored results. With ScheduleID set, only that
// schedule's result is returned.
type ResultsRequest struct {
	ScheduleID string `json:"schedule_id,omitempty"`
}

// ResultsResponse lists stored results in batch order.
type ResultsResponse struct {
	Results []match.MatchResult `json:"results"`
}

// OverrideRequest pins a schedule to a meeting.
type OverrideRequest struct {
	ScheduleID string `json:"schedule_id"`
	MeetingID  string `json:"meeting_id"`
}

// OverrideResponse carries the overridden result and its audit trail.
type OverrideResponse struct {
	Result  match.MatchResult        `json:"result"`
	History []dataset.OverrideRecord `json:"history"`
}

// DatasetHealthRequest fetches dataset diagnostics.
type DatasetHealthRequest struct{}

// DatasetHealthResponse reports the active snapshot and orchestrator state.
type DatasetHealthResponse struct {
	Health worker.Health `json:"health"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
