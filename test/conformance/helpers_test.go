//go:build conformance

package conformance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

var chadgiBinary string

func init() {
	// Find the chadgi binary
	cwd, _ := os.Getwd()
	// Walk up to find bin/chadgi
	for {
		binPath := filepath.Join(cwd, "bin", "chadgi")
		if _, err := os.Stat(binPath); err == nil {
			chadgiBinary = binPath
			return
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	// Fallback to PATH
	chadgiBinary = "chadgi"
}

// initTestState creates a temp directory with an initialized .chadgi state
// and returns its path.
func initTestState(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	_, stderr, code := runChadgi(t, dir, "init")
	if code != 0 {
		t.Fatalf("init failed: %s", stderr)
	}
	return dir
}

// runChadgi executes the chadgi binary with args in the given working
// directory.
func runChadgi(t *testing.T, cwd string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(chadgiBinary, args...)
	cmd.Dir = cwd
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	} else {
		exitCode = 0
	}
	return
}

// writeStaleLock forges a lock record whose heartbeat is far past the
// default timeout, as if its worker died hours ago.
func writeStaleLock(t *testing.T, dir string, issue int) {
	t.Helper()
	rec := map[string]any{
		"issue_number":   issue,
		"session_id":     "dead-session",
		"pid":            999999,
		"hostname":       "ghost",
		"created_at":     time.Now().UTC().Add(-4 * time.Hour).Format(time.RFC3339),
		"last_heartbeat": time.Now().UTC().Add(-3 * time.Hour).Format(time.RFC3339),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal lock record: %v", err)
	}
	path := filepath.Join(dir, ".chadgi", "locks", lockFileName(issue))
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write stale lock: %v", err)
	}
}

func lockFileName(issue int) string {
	return fmt.Sprintf("issue-%d.lock", issue)
}

func lockFileExists(t *testing.T, dir string, issue int) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, ".chadgi", "locks", lockFileName(issue)))
	return err == nil
}
