// Package fsutil provides filesystem utilities for atomic operations and syncing.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempPrefix is the name prefix of in-flight temp files staged by
// AtomicWrite and CreateExclusive. Anything matching it that survives a
// crash is garbage; doctor reports it.
const TempPrefix = ".chadgi-tmp-"

// AtomicWrite writes data to a temporary file, fsyncs, then renames to target path.
// Concurrent readers see either the old content or the new, never a partial write.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("atomic write create tmp: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up on failure
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("atomic write chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("atomic write fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomic write close: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic write rename: %w", err)
	}
	if err := FsyncDir(dir); err != nil {
		return fmt.Errorf("atomic write fsync dir: %w", err)
	}

	success = true
	return nil
}

// CreateExclusive publishes data at path exclusively and atomically. The
// content is staged in a temp file and linked into place, so path either
// does not exist or holds the complete record; concurrent readers can never
// observe a partial write. Exactly one of any number of racing callers
// succeeds; the rest observe os.IsExist. This is the exclusion primitive
// the lock store is built on (link, like rename, is atomic on the network
// filesystems a shared lock directory may live on).
func CreateExclusive(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("exclusive create tmp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("exclusive create write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("exclusive create chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("exclusive create fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("exclusive create close: %w", err)
	}

	// The link is the single atomic check-and-publish step; losers get
	// EEXIST without disturbing the winner's record.
	if err := os.Link(tmpPath, path); err != nil {
		return err
	}
	if err := FsyncDir(dir); err != nil {
		return fmt.Errorf("exclusive create fsync dir: %w", err)
	}
	return nil
}

// FsyncDir fsyncs a directory to ensure rename visibility is durable.
func FsyncDir(dirPath string) error {
	d, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("fsync dir open: %w", err)
	}
	defer d.Close()
	return d.Sync()
}
