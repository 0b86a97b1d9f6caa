package lock

import (
	"time"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
)

// Classify evaluates a lock record against the clock. Pure, no I/O.
//
// A lock is stale when its heartbeat age strictly exceeds the timeout;
// exactly at the boundary it is still active. A record with no recorded
// heartbeat is measured from its creation time, so a freshly created lock
// is never reclaimed before a full timeout has elapsed.
func Classify(rec *model.TaskLock, now time.Time, timeout time.Duration) model.Classification {
	heartbeatAge := now.Sub(rec.HeartbeatBaseline())
	return model.Classification{
		IsStale:             heartbeatAge > timeout,
		LockedSeconds:       int64(now.Sub(rec.CreatedAt).Seconds()),
		HeartbeatAgeSeconds: int64(heartbeatAge.Seconds()),
	}
}
