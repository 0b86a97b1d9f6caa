package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/fsutil"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/jsonutil"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
)

const (
	lockFilePrefix = "issue-"
	lockFileSuffix = ".lock"
)

// Store persists one lock record per issue in the shared lock directory.
// Every call re-reads the medium; no state is cached, because correctness
// depends on seeing the latest record written by any process on any host.
type Store struct {
	dir string
}

// NewStore creates a store over the given lock directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the lock directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(issue int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", lockFilePrefix, issue, lockFileSuffix))
}

// Create persists rec with exclusive-create semantics: when two processes
// race to claim the same issue, exactly one succeeds and the other observes
// errclass.ErrAlreadyLocked. The check and the write are a single atomic
// step in the storage medium; there is no check-then-write window, and a
// record is never visible half-written to concurrent readers.
func (s *Store) Create(rec *model.TaskLock) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	data, err := jsonutil.CanonicalMarshal(rec)
	if err != nil {
		return fmt.Errorf("marshal lock record: %w", err)
	}

	if err := fsutil.CreateExclusive(s.path(rec.IssueNumber), data, 0644); err != nil {
		if os.IsExist(err) {
			return errclass.ErrAlreadyLocked.WithMessagef("issue %d is locked", rec.IssueNumber)
		}
		return fmt.Errorf("create lock record: %w", err)
	}
	return nil
}

// Read returns the persisted record for issue, or errclass.ErrNotLocked if
// none exists. A record deleted concurrently reads as not locked rather
// than as a fault.
func (s *Store) Read(issue int) (*model.TaskLock, error) {
	data, err := os.ReadFile(s.path(issue))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrNotLocked.WithMessagef("issue %d is not locked", issue)
		}
		return nil, fmt.Errorf("read lock record: %w", err)
	}

	var rec model.TaskLock
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errclass.ErrLockCorrupt.WithMessagef("issue %d: %v", issue, err)
	}
	return &rec, nil
}

// Update overwrites the record for rec.IssueNumber. Used only for heartbeat
// renewal; only the holder writes its own record, so there is no write-write
// race across distinct holders. Returns errclass.ErrLockLost when the record
// no longer exists, which the holder must treat as a stop signal.
func (s *Store) Update(rec *model.TaskLock) error {
	path := s.path(rec.IssueNumber)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errclass.ErrLockLost.WithMessagef("lock record for issue %d vanished", rec.IssueNumber)
		}
		return fmt.Errorf("stat lock record: %w", err)
	}

	data, err := jsonutil.CanonicalMarshal(rec)
	if err != nil {
		return fmt.Errorf("marshal lock record: %w", err)
	}
	if err := fsutil.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("update lock record: %w", err)
	}
	return nil
}

// Delete removes the record for issue. Idempotent: removing an absent
// record is not an error, and the return value reports whether a record
// was actually removed.
func (s *Store) Delete(issue int) (bool, error) {
	err := os.Remove(s.path(issue))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove lock record: %w", err)
	}
	return true, nil
}

// List enumerates every persisted lock record. Order is unspecified.
// Records deleted mid-scan are skipped; corrupt records are a fault.
func (s *Store) List() ([]*model.TaskLock, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lock dir: %w", err)
	}

	var recs []*model.TaskLock
	for _, entry := range entries {
		issue, ok := ParseLockFileName(entry.Name())
		if !ok {
			continue
		}
		rec, err := s.Read(issue)
		if err != nil {
			if errors.Is(err, errclass.ErrNotLocked) {
				continue // released between readdir and read
			}
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ParseLockFileName extracts the issue number from "issue-<n>.lock".
func ParseLockFileName(name string) (int, bool) {
	if !strings.HasPrefix(name, lockFilePrefix) || !strings.HasSuffix(name, lockFileSuffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, lockFilePrefix), lockFileSuffix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
