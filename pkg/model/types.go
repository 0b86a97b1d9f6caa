package model

// LockState represents the current state of a lock.
type LockState string

const (
	LockStateActive LockState = "active"
	LockStateStale  LockState = "stale"
	LockStateFree   LockState = "free"
)

// State maps a classification onto a lock state.
func (c Classification) State() LockState {
	if c.IsStale {
		return LockStateStale
	}
	return LockStateActive
}
