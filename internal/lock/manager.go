// Package lock implements mutual exclusion over work items using persisted
// lock records in a shared directory. Independent processes, potentially on
// different hosts sharing a filesystem, coordinate solely through these
// records; there is no lock server and no in-process synchronization of
// cross-process state.
package lock

import (
	"errors"
	"sort"
	"time"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/metrics"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
)

// Manager is the lifecycle layer over the store: acquire, renew, release,
// force-release, list, find-stale, cleanup-stale. It never retries and
// never blocks waiting for a lock; contention fails fast and the caller
// decides what to do with it.
type Manager struct {
	store  *Store
	policy model.LockPolicy
	now    func() time.Time
}

// NewManager creates a manager over the given lock directory.
func NewManager(lockDir string, policy model.LockPolicy) *Manager {
	return NewManagerWithClock(lockDir, policy, time.Now)
}

// NewManagerWithClock creates a manager with an injected clock.
func NewManagerWithClock(lockDir string, policy model.LockPolicy, now func() time.Time) *Manager {
	return &Manager{
		store:  NewStore(lockDir),
		policy: policy,
		now:    now,
	}
}

// Store exposes the underlying record store.
func (m *Manager) Store() *Store {
	return m.store
}

// AcquireResult reports the outcome of an acquire attempt. When Acquired is
// false, Holder describes the existing lock and its staleness so the caller
// can decide whether to force-claim.
type AcquireResult struct {
	Acquired bool              `json:"acquired"`
	Lock     *model.TaskLock   `json:"lock,omitempty"`
	Holder   *model.LockStatus `json:"holder,omitempty"`
}

// Acquire attempts to claim the issue for the given identity. Exactly one
// of any number of concurrent callers wins; the rest get the holder's info.
func (m *Manager) Acquire(issue int, id model.HolderIdentity) (*AcquireResult, error) {
	for {
		now := m.now().UTC()
		rec := &model.TaskLock{
			IssueNumber:   issue,
			SessionID:     id.SessionID,
			PID:           id.PID,
			Hostname:      id.Hostname,
			WorkerID:      id.WorkerID,
			RepoName:      id.RepoName,
			CreatedAt:     now,
			LastHeartbeat: now,
		}

		err := m.store.Create(rec)
		if err == nil {
			metrics.RecordAcquire(metrics.OutcomeAcquired)
			return &AcquireResult{Acquired: true, Lock: rec}, nil
		}
		if !errors.Is(err, errclass.ErrAlreadyLocked) {
			return nil, err
		}

		holder, readErr := m.store.Read(issue)
		if readErr != nil {
			if errors.Is(readErr, errclass.ErrNotLocked) {
				// Holder released between our create and read; try again.
				continue
			}
			return nil, readErr
		}

		metrics.RecordAcquire(metrics.OutcomeContended)
		return &AcquireResult{
			Acquired: false,
			Holder: &model.LockStatus{
				Lock:           *holder,
				Classification: Classify(holder, m.now(), m.policy.Timeout()),
			},
		}, nil
	}
}

// Renew updates the lock's heartbeat, proving the holder is still working.
// errclass.ErrLockLost means the record was forcibly removed by another
// actor; the holder must abort processing the issue, since continuing
// risks duplicate work.
func (m *Manager) Renew(issue int) (*model.TaskLock, error) {
	rec, err := m.store.Read(issue)
	if err != nil {
		if errors.Is(err, errclass.ErrNotLocked) {
			return nil, errclass.ErrLockLost.WithMessagef("lock for issue %d vanished", issue)
		}
		return nil, err
	}

	rec.LastHeartbeat = m.now().UTC()
	if err := m.store.Update(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Release relinquishes the lock at end of processing. The holder is trusted
// to call it only for its own issue; there is no ownership token check.
// Returns false without error when no lock was held.
func (m *Manager) Release(issue int) (bool, error) {
	removed, err := m.store.Delete(issue)
	if err != nil {
		return false, err
	}
	if removed {
		metrics.RecordRelease(metrics.ModeNormal)
	}
	return removed, nil
}

// ForceRelease removes the record unconditionally, regardless of staleness.
// Justifying the override is the caller's responsibility.
func (m *Manager) ForceRelease(issue int) (bool, error) {
	removed, err := m.store.Delete(issue)
	if err != nil {
		return false, err
	}
	if removed {
		metrics.RecordRelease(metrics.ModeForce)
	}
	return removed, nil
}

// Status returns the lock for issue with its classification, or nil if the
// issue is free.
func (m *Manager) Status(issue int) (*model.LockStatus, error) {
	rec, err := m.store.Read(issue)
	if err != nil {
		if errors.Is(err, errclass.ErrNotLocked) {
			return nil, nil
		}
		return nil, err
	}
	return &model.LockStatus{
		Lock:           *rec,
		Classification: Classify(rec, m.now(), m.policy.Timeout()),
	}, nil
}

// List returns every current lock annotated with staleness, ordered by
// issue number for stable output.
func (m *Manager) List() ([]model.LockStatus, error) {
	recs, err := m.store.List()
	if err != nil {
		return nil, err
	}

	now := m.now()
	timeout := m.policy.Timeout()
	statuses := make([]model.LockStatus, 0, len(recs))
	for _, rec := range recs {
		statuses = append(statuses, model.LockStatus{
			Lock:           *rec,
			Classification: Classify(rec, now, timeout),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Lock.IssueNumber < statuses[j].Lock.IssueNumber
	})
	return statuses, nil
}

// FindStale returns the subset of List whose heartbeat timed out.
func (m *Manager) FindStale() ([]model.LockStatus, error) {
	statuses, err := m.List()
	if err != nil {
		return nil, err
	}
	var stale []model.LockStatus
	for _, st := range statuses {
		if st.Classification.IsStale {
			stale = append(stale, st)
		}
	}
	return stale, nil
}

// CleanupStale force-releases every stale lock and returns the issues whose
// records were actually removed. The scan and the deletes are not one
// transaction: a lock renewed right at the staleness boundary between them
// can be spuriously reclaimed, which is an accepted risk bounded by keeping
// the timeout generous relative to the heartbeat interval. A lock that
// disappears between scan and delete is simply not counted.
func (m *Manager) CleanupStale() ([]int, error) {
	stale, err := m.FindStale()
	if err != nil {
		return nil, err
	}

	var removed []int
	for _, st := range stale {
		ok, err := m.store.Delete(st.Lock.IssueNumber)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, st.Lock.IssueNumber)
		}
	}
	metrics.RecordStaleReclaimed(len(removed))
	return removed, nil
}
