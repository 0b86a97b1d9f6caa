package lock

import (
	"context"
	"errors"
	"time"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/logging"
)

// Heartbeater renews a held lock on a fixed interval for the duration of
// processing. Scheduling the renewals is the holder's responsibility, not
// the lock manager's; this is the reference holder-side loop.
type Heartbeater struct {
	mgr      *Manager
	issue    int
	interval time.Duration
}

// NewHeartbeater creates a heartbeater for an already-acquired lock.
func NewHeartbeater(mgr *Manager, issue int, interval time.Duration) *Heartbeater {
	return &Heartbeater{mgr: mgr, issue: issue, interval: interval}
}

// Run renews the lock every interval until ctx is cancelled or the lock is
// lost. A lost lock returns errclass.ErrLockLost: the record was forcibly
// removed by another actor and the caller must stop working on the issue.
// Cancellation returns nil; releasing the lock remains the caller's job.
func (h *Heartbeater) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := h.mgr.Renew(h.issue); err != nil {
				if errors.Is(err, errclass.ErrLockLost) {
					return err
				}
				// Transient storage faults do not forfeit the lock; the
				// next tick retries while the staleness timeout is the
				// backstop.
				logging.ErrorErr("heartbeat renewal failed", err, map[string]any{
					"issue": h.issue,
				})
			}
		}
	}
}
