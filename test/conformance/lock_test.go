//go:build conformance

package conformance

import (
	"strings"
	"testing"
)

// Test 1: Lock acquire succeeds
func TestLock_Acquire(t *testing.T) {
	dir := initTestState(t)

	stdout, stderr, code := runChadgi(t, dir, "locks", "acquire", "42")
	if code != 0 {
		t.Fatalf("lock acquire failed: %s", stderr)
	}
	if !strings.Contains(stdout, "Acquired lock on issue") {
		t.Errorf("expected acquire message, got: %s", stdout)
	}
	if !lockFileExists(t, dir, 42) {
		t.Error("expected lock file to exist after acquire")
	}
}

// Test 2: Lock conflict on double acquire
func TestLock_ConflictOnDoubleAcquire(t *testing.T) {
	dir := initTestState(t)

	_, _, code := runChadgi(t, dir, "locks", "acquire", "42")
	if code != 0 {
		t.Fatalf("first lock acquire failed")
	}

	// Second acquire should fail and name the holder
	_, stderr, code := runChadgi(t, dir, "locks", "acquire", "42")
	if code == 0 {
		t.Error("second lock acquire should have failed")
	}
	if !strings.Contains(stderr, "is locked by") {
		t.Errorf("expected holder in error output, got: %s", stderr)
	}
}

// Test 3: Lock release and reacquire
func TestLock_Release(t *testing.T) {
	dir := initTestState(t)

	runChadgi(t, dir, "locks", "acquire", "7")

	stdout, stderr, code := runChadgi(t, dir, "locks", "release", "7")
	if code != 0 {
		t.Fatalf("lock release failed: %s", stderr)
	}
	if !strings.Contains(stdout, "Released lock on issue #7") {
		t.Errorf("expected release message, got: %s", stdout)
	}

	// Should be able to acquire again
	_, _, code = runChadgi(t, dir, "locks", "acquire", "7")
	if code != 0 {
		t.Error("should be able to acquire after release")
	}
}

// Test 4: Release is idempotent
func TestLock_ReleaseNotLocked(t *testing.T) {
	dir := initTestState(t)

	stdout, stderr, code := runChadgi(t, dir, "locks", "release", "99")
	if code != 0 {
		t.Fatalf("release of free issue must succeed: %s", stderr)
	}
	if !strings.Contains(stdout, "was not locked") {
		t.Errorf("expected not-locked message, got: %s", stdout)
	}
}

// Test 5: Unlock refuses an active lock without --force
func TestUnlock_ActiveNeedsForce(t *testing.T) {
	dir := initTestState(t)

	runChadgi(t, dir, "locks", "acquire", "5")

	_, _, code := runChadgi(t, dir, "locks", "unlock", "5")
	if code == 0 {
		t.Error("unlock of an active lock without --force should fail")
	}
	if !lockFileExists(t, dir, 5) {
		t.Error("active lock must survive a refused unlock")
	}

	_, stderr, code := runChadgi(t, dir, "locks", "unlock", "5", "--force")
	if code != 0 {
		t.Fatalf("forced unlock failed: %s", stderr)
	}
	if lockFileExists(t, dir, 5) {
		t.Error("forced unlock must remove the lock file")
	}
}

// Test 6: Unlock releases a stale lock without --force
func TestUnlock_StaleReleasesWithoutForce(t *testing.T) {
	dir := initTestState(t)
	writeStaleLock(t, dir, 8)

	_, stderr, code := runChadgi(t, dir, "locks", "unlock", "8")
	if code != 0 {
		t.Fatalf("unlock of stale lock failed: %s", stderr)
	}
	if lockFileExists(t, dir, 8) {
		t.Error("stale lock must be removed")
	}
}

// Test 7: Cleanup removes stale locks only
func TestCleanup_StaleOnly(t *testing.T) {
	dir := initTestState(t)

	runChadgi(t, dir, "locks", "acquire", "1")
	writeStaleLock(t, dir, 2)

	_, stderr, code := runChadgi(t, dir, "locks", "cleanup")
	if code != 0 {
		t.Fatalf("cleanup failed: %s", stderr)
	}
	if !lockFileExists(t, dir, 1) {
		t.Error("active lock must survive cleanup")
	}
	if lockFileExists(t, dir, 2) {
		t.Error("stale lock must be removed by cleanup")
	}
}

// Test 8: Unlock --all without --force spares active locks
func TestUnlockAll_SparesActive(t *testing.T) {
	dir := initTestState(t)

	runChadgi(t, dir, "locks", "acquire", "1")
	writeStaleLock(t, dir, 2)
	writeStaleLock(t, dir, 3)

	_, stderr, code := runChadgi(t, dir, "locks", "unlock", "--all")
	if code != 0 {
		t.Fatalf("unlock --all failed: %s", stderr)
	}
	if !lockFileExists(t, dir, 1) {
		t.Error("active lock must survive unlock --all without --force")
	}
	if lockFileExists(t, dir, 2) || lockFileExists(t, dir, 3) {
		t.Error("stale locks must be removed by unlock --all")
	}

	_, _, code = runChadgi(t, dir, "locks", "unlock", "--all", "--force")
	if code != 0 {
		t.Fatal("unlock --all --force failed")
	}
	if lockFileExists(t, dir, 1) {
		t.Error("unlock --all --force must remove active locks")
	}
}

// Test 9: List reports both states via --json
func TestList_JSON(t *testing.T) {
	dir := initTestState(t)

	runChadgi(t, dir, "locks", "acquire", "10")
	writeStaleLock(t, dir, 11)

	stdout, stderr, code := runChadgi(t, dir, "locks", "list", "--json")
	if code != 0 {
		t.Fatalf("list failed: %s", stderr)
	}
	if !strings.Contains(stdout, `"issue_number": 10`) && !strings.Contains(stdout, `"issue_number":10`) {
		t.Errorf("expected issue 10 in JSON output, got: %s", stdout)
	}
	if !strings.Contains(stdout, "dead-session") {
		t.Errorf("expected stale holder session in JSON output, got: %s", stdout)
	}
}

// Test 10: Commands outside a state directory fail cleanly
func TestLock_NoStateDir(t *testing.T) {
	dir := t.TempDir()

	_, stderr, code := runChadgi(t, dir, "locks", "acquire", "1")
	if code == 0 {
		t.Error("acquire outside a state directory should fail")
	}
	if stderr == "" {
		t.Error("expected an error message on stderr")
	}
}
