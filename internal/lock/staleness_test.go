package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
)

func TestClassify_Boundary(t *testing.T) {
	created := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	rec := &model.TaskLock{
		IssueNumber:   1,
		CreatedAt:     created,
		LastHeartbeat: created,
	}
	timeout := 60 * time.Minute

	// Exactly at the threshold is still active; strictly past it is stale.
	atBoundary := Classify(rec, created.Add(timeout), timeout)
	assert.False(t, atBoundary.IsStale)
	assert.Equal(t, int64(3600), atBoundary.HeartbeatAgeSeconds)

	past := Classify(rec, created.Add(timeout+time.Second), timeout)
	assert.True(t, past.IsStale)
	assert.Equal(t, int64(3601), past.HeartbeatAgeSeconds)
}

func TestClassify_FreshLockIsActive(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	rec := &model.TaskLock{IssueNumber: 1, CreatedAt: now, LastHeartbeat: now}

	c := Classify(rec, now, 60*time.Minute)
	assert.False(t, c.IsStale)
	assert.Equal(t, int64(0), c.LockedSeconds)
	assert.Equal(t, int64(0), c.HeartbeatAgeSeconds)
}

func TestClassify_MissingHeartbeatUsesCreation(t *testing.T) {
	created := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	rec := &model.TaskLock{IssueNumber: 1, CreatedAt: created}

	// Within the timeout the lock is protected despite never heartbeating.
	c := Classify(rec, created.Add(30*time.Minute), 60*time.Minute)
	assert.False(t, c.IsStale)

	c = Classify(rec, created.Add(61*time.Minute), 60*time.Minute)
	assert.True(t, c.IsStale)
}

func TestClassify_TimeoutChangeReclassifies(t *testing.T) {
	created := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	rec := &model.TaskLock{IssueNumber: 1, CreatedAt: created, LastHeartbeat: created}
	now := created.Add(45 * time.Minute)

	// Same unmodified record, different timeouts: classification flips
	// without any write.
	assert.False(t, Classify(rec, now, 60*time.Minute).IsStale)
	assert.True(t, Classify(rec, now, 30*time.Minute).IsStale)
}

func TestClassify_LockedVersusHeartbeatAge(t *testing.T) {
	created := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	rec := &model.TaskLock{
		IssueNumber:   1,
		CreatedAt:     created,
		LastHeartbeat: created.Add(40 * time.Minute),
	}

	c := Classify(rec, created.Add(50*time.Minute), 60*time.Minute)
	assert.Equal(t, int64(3000), c.LockedSeconds)
	assert.Equal(t, int64(600), c.HeartbeatAgeSeconds)
	assert.False(t, c.IsStale)
}
