package model

import "time"

// DefaultLockTimeoutMinutes is the heartbeat timeout after which a lock
// is considered stale. Overridable via config.
const DefaultLockTimeoutMinutes = 60

// TaskLock is stored at .chadgi/locks/issue-<n>.lock, one record per issue.
// Only LastHeartbeat is ever mutated after creation.
type TaskLock struct {
	IssueNumber   int       `json:"issue_number"`
	SessionID     string    `json:"session_id"`
	PID           int       `json:"pid"`
	Hostname      string    `json:"hostname"`
	WorkerID      string    `json:"worker_id,omitempty"`
	RepoName      string    `json:"repo_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// HeartbeatBaseline returns the timestamp liveness is measured from.
// A record that was created but never heartbeated falls back to CreatedAt,
// so a fresh lock is never reclaimable before the timeout elapses.
func (l *TaskLock) HeartbeatBaseline() time.Time {
	if l.LastHeartbeat.IsZero() {
		return l.CreatedAt
	}
	return l.LastHeartbeat
}

// HolderIdentity describes the process acquiring a lock. PID and Hostname
// are informational only; staleness is judged from heartbeats, never from
// process liveness.
type HolderIdentity struct {
	SessionID string `json:"session_id"`
	PID       int    `json:"pid"`
	Hostname  string `json:"hostname"`
	WorkerID  string `json:"worker_id,omitempty"`
	RepoName  string `json:"repo_name,omitempty"`
}

// Classification is computed at read time against the current clock and
// timeout. It is never persisted, so changing the timeout reclassifies
// existing locks without rewriting them.
type Classification struct {
	IsStale             bool  `json:"is_stale"`
	LockedSeconds       int64 `json:"locked_seconds"`
	HeartbeatAgeSeconds int64 `json:"heartbeat_age_seconds"`
}

// LockStatus pairs a persisted lock with its read-time classification.
type LockStatus struct {
	Lock           TaskLock       `json:"lock"`
	Classification Classification `json:"classification"`
}

// LockPolicy configures staleness timing.
type LockPolicy struct {
	TimeoutMinutes int `json:"timeout_minutes"`
}

// Timeout returns the staleness timeout as a duration, falling back to
// the default when unset.
func (p LockPolicy) Timeout() time.Duration {
	minutes := p.TimeoutMinutes
	if minutes <= 0 {
		minutes = DefaultLockTimeoutMinutes
	}
	return time.Duration(minutes) * time.Minute
}
