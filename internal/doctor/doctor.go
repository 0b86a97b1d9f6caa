// Package doctor performs health checks over the lock state directory.
package doctor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/lock"
	"github.com/SwapLabsInc/ChadGI-sub003/internal/statedir"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/fsutil"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/pathutil"
)

// Finding represents a detected issue.
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Path        string `json:"path,omitempty"`
}

// Result contains doctor check results.
type Result struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

// Doctor performs state directory health checks.
type Doctor struct {
	state  *statedir.StateDir
	policy model.LockPolicy
}

// NewDoctor creates a new doctor.
func NewDoctor(state *statedir.StateDir, policy model.LockPolicy) *Doctor {
	return &Doctor{state: state, policy: policy}
}

// Check runs all diagnostic checks.
func (d *Doctor) Check() (*Result, error) {
	result := &Result{Healthy: true}

	d.checkLockDir(result)
	d.checkOrphanTempFiles(result)
	d.checkLockRecords(result)

	return result, nil
}

// checkLockDir verifies the lock directory exists and is writable.
func (d *Doctor) checkLockDir(result *Result) {
	dir := d.state.LockDir()
	info, err := os.Stat(dir)
	if err != nil {
		result.Healthy = false
		result.Findings = append(result.Findings, Finding{
			Category:    "lock-dir",
			Description: fmt.Sprintf("lock directory missing: %v", err),
			Severity:    "error",
			Path:        dir,
		})
		return
	}
	if !info.IsDir() {
		result.Healthy = false
		result.Findings = append(result.Findings, Finding{
			Category:    "lock-dir",
			Description: "lock directory path is not a directory",
			Severity:    "error",
			Path:        dir,
		})
		return
	}

	// A lock directory symlinked out of the state root would make workers
	// coordinate against the wrong medium.
	if err := pathutil.ValidatePathSafety(d.state.Root, dir); err != nil {
		result.Healthy = false
		result.Findings = append(result.Findings, Finding{
			Category:    "lock-dir",
			Description: fmt.Sprintf("lock directory resolves outside the state root: %v", err),
			Severity:    "error",
			Path:        dir,
		})
	}
}

// checkOrphanTempFiles reports atomic-write temp files left behind by
// crashed writers. Harmless to readers, but they accumulate.
func (d *Doctor) checkOrphanTempFiles(result *Result) {
	entries, err := os.ReadDir(d.state.LockDir())
	if err != nil {
		return // lock-dir check already reported this
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), fsutil.TempPrefix) {
			result.Findings = append(result.Findings, Finding{
				Category:    "orphan-temp",
				Description: "leftover atomic-write temp file, safe to delete",
				Severity:    "warning",
				Path:        filepath.Join(d.state.LockDir(), entry.Name()),
			})
		}
	}
}

// checkLockRecords parses every lock record individually, reporting corrupt
// ones and a census of stale locks.
func (d *Doctor) checkLockRecords(result *Result) {
	entries, err := os.ReadDir(d.state.LockDir())
	if err != nil {
		return // lock-dir check already reported this
	}

	store := lock.NewStore(d.state.LockDir())
	now := time.Now()
	stale := 0
	for _, entry := range entries {
		issue, ok := lock.ParseLockFileName(entry.Name())
		if !ok {
			continue
		}
		rec, err := store.Read(issue)
		if err != nil {
			if errors.Is(err, errclass.ErrNotLocked) {
				continue
			}
			result.Healthy = false
			result.Findings = append(result.Findings, Finding{
				Category:    "lock-records",
				Description: fmt.Sprintf("unreadable lock record: %v", err),
				Severity:    "error",
				Path:        filepath.Join(d.state.LockDir(), entry.Name()),
			})
			continue
		}
		if lock.Classify(rec, now, d.policy.Timeout()).IsStale {
			stale++
		}
	}
	if stale > 0 {
		result.Findings = append(result.Findings, Finding{
			Category:    "stale-locks",
			Description: fmt.Sprintf("%d stale lock(s) awaiting cleanup (run 'chadgi locks cleanup')", stale),
			Severity:    "warning",
		})
	}
}
