// Package unlock implements the operator-facing release policy. It composes
// lock manager operations and never touches storage itself.
//
// The policy: a named active lock needs an explicit force override, a stale
// lock releases on staleness alone, and bulk release without force touches
// only stale locks, leaving active ones reported but intact.
package unlock

import (
	"fmt"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/lock"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
)

// Service applies the unlock policy over a lock manager.
type Service struct {
	mgr *lock.Manager
}

// NewService creates the façade.
func NewService(mgr *lock.Manager) *Service {
	return &Service{mgr: mgr}
}

// Result is the single outcome document of an unlock request, emitted
// verbatim in JSON mode. Success=false maps to a non-zero exit code.
type Result struct {
	Success  bool               `json:"success"`
	Action   string             `json:"action"`
	Released []int              `json:"released"`
	Locks    []model.LockStatus `json:"locks,omitempty"`
	Message  string             `json:"message"`
}

// Status lists all locks with their active/stale breakdown. No mutation.
func (s *Service) Status() (*Result, error) {
	statuses, err := s.mgr.List()
	if err != nil {
		return nil, err
	}

	active, stale := partition(statuses)
	return &Result{
		Success: true,
		Action:  "status",
		Locks:   statuses,
		Message: fmt.Sprintf("%d lock(s): %d active, %d stale", len(statuses), len(active), len(stale)),
	}, nil
}

// Unlock releases a single named issue. An active holder is protected:
// without force the request fails and reports the holder's session, so an
// operator never silently corrupts in-progress work. Staleness alone is
// sufficient justification, with or without force.
func (s *Service) Unlock(issue int, force bool) (*Result, error) {
	st, err := s.mgr.Status(issue)
	if err != nil {
		return nil, err
	}

	if st == nil {
		return &Result{
			Success: false,
			Action:  "unlock",
			Message: fmt.Sprintf("issue #%d is not locked", issue),
		}, nil
	}

	if !st.Classification.IsStale && !force {
		return &Result{
			Success: false,
			Action:  "unlock",
			Locks:   []model.LockStatus{*st},
			Message: fmt.Sprintf("issue #%d is held by active session %s (use --force to override)",
				issue, st.Lock.SessionID),
		}, nil
	}

	removed, err := s.mgr.ForceRelease(issue)
	if err != nil {
		return nil, err
	}
	if !removed {
		// Vanished between status and release; the end state is what the
		// operator asked for.
		return &Result{
			Success:  true,
			Action:   "unlock",
			Released: []int{},
			Message:  fmt.Sprintf("issue #%d was already released", issue),
		}, nil
	}

	return &Result{
		Success:  true,
		Action:   "unlock",
		Released: []int{issue},
		Message:  fmt.Sprintf("released lock on issue #%d", issue),
	}, nil
}

// UnlockAll releases locks in bulk. Without force only stale locks are
// released and active ones are reported untouched; with force everything
// goes.
func (s *Service) UnlockAll(force bool) (*Result, error) {
	statuses, err := s.mgr.List()
	if err != nil {
		return nil, err
	}

	active, stale := partition(statuses)
	targets := stale
	if force {
		targets = statuses
	}

	released := []int{}
	for _, st := range targets {
		removed, err := s.mgr.ForceRelease(st.Lock.IssueNumber)
		if err != nil {
			return nil, err
		}
		if removed {
			released = append(released, st.Lock.IssueNumber)
		}
	}

	res := &Result{
		Success:  true,
		Action:   "unlock-all",
		Released: released,
	}
	if force {
		res.Message = fmt.Sprintf("released %d lock(s)", len(released))
	} else {
		res.Locks = active
		res.Message = fmt.Sprintf("released %d stale lock(s), %d active lock(s) left untouched",
			len(released), len(active))
	}
	return res, nil
}

// Cleanup removes stale locks only, always. The count reflects records
// actually removed, not the size of the stale scan.
func (s *Service) Cleanup() (*Result, error) {
	removed, err := s.mgr.CleanupStale()
	if err != nil {
		return nil, err
	}
	if removed == nil {
		removed = []int{}
	}
	return &Result{
		Success:  true,
		Action:   "cleanup",
		Released: removed,
		Message:  fmt.Sprintf("removed %d stale lock(s)", len(removed)),
	}, nil
}

func partition(statuses []model.LockStatus) (active, stale []model.LockStatus) {
	for _, st := range statuses {
		if st.Classification.IsStale {
			stale = append(stale, st)
		} else {
			active = append(active, st)
		}
	}
	return active, stale
}
