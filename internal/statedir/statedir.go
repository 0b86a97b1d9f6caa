// Package statedir manages the shared ChadGI state directory.
package statedir

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/fsutil"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/uuidutil"
)

const (
	FormatVersion     = 1
	StateDirName      = ".chadgi"
	LocksDirName      = "locks"
	FormatVersionFile = "format_version"
	InstanceIDFile    = "instance_id"
)

// StateDir represents an initialized ChadGI state directory. It may live on
// a network filesystem shared by workers on several hosts.
type StateDir struct {
	Root          string
	FormatVersion int
	InstanceID    string
}

// LockDir returns the directory holding lock records.
func (s *StateDir) LockDir() string {
	return filepath.Join(s.Root, StateDirName, LocksDirName)
}

// Init creates the state directory structure at path.
func Init(path string) (*StateDir, error) {
	chadgiDir := filepath.Join(path, StateDirName)
	dirs := []string{
		chadgiDir,
		filepath.Join(chadgiDir, LocksDirName),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	// Write format_version
	if err := os.WriteFile(filepath.Join(chadgiDir, FormatVersionFile), []byte("1\n"), 0644); err != nil {
		return nil, fmt.Errorf("write format_version: %w", err)
	}

	// Write instance_id
	instanceID := uuidutil.NewV4()
	if err := os.WriteFile(filepath.Join(chadgiDir, InstanceIDFile), []byte(instanceID+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write instance_id: %w", err)
	}

	// Fsync parent to ensure durability
	if err := fsutil.FsyncDir(path); err != nil {
		return nil, fmt.Errorf("fsync state root: %w", err)
	}

	return &StateDir{
		Root:          path,
		FormatVersion: FormatVersion,
		InstanceID:    instanceID,
	}, nil
}

// Discover walks up from cwd to find the state root (directory containing .chadgi/).
func Discover(cwd string) (*StateDir, error) {
	path := cwd
	for {
		chadgiDir := filepath.Join(path, StateDirName)
		if info, err := os.Stat(chadgiDir); err == nil && info.IsDir() {
			version, err := readFormatVersion(chadgiDir)
			if err != nil {
				return nil, err
			}
			if version > FormatVersion {
				return nil, errclass.ErrFormatUnsupported.WithMessagef(
					"format version %d > supported %d", version, FormatVersion)
			}
			instanceID, _ := readInstanceID(chadgiDir)
			return &StateDir{
				Root:          path,
				FormatVersion: version,
				InstanceID:    instanceID,
			}, nil
		}

		parent := filepath.Dir(path)
		if parent == path {
			// Reached root without finding .chadgi/
			return nil, fmt.Errorf("no ChadGI state directory found (no .chadgi/ in parent directories)")
		}
		path = parent
	}
}

func readFormatVersion(chadgiDir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(chadgiDir, FormatVersionFile))
	if err != nil {
		return 0, fmt.Errorf("read format_version: %w", err)
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse format_version: %w", err)
	}
	return version, nil
}

func readInstanceID(chadgiDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(chadgiDir, InstanceIDFile))
	if err != nil {
		return "", fmt.Errorf("read instance_id: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
