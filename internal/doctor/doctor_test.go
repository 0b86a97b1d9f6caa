package doctor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwapLabsInc/ChadGI-sub003/internal/lock"
	"github.com/SwapLabsInc/ChadGI-sub003/internal/statedir"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
)

func setupState(t *testing.T) *statedir.StateDir {
	t.Helper()
	state, err := statedir.Init(t.TempDir())
	require.NoError(t, err)
	return state
}

func findCategory(result *Result, category string) *Finding {
	for i := range result.Findings {
		if result.Findings[i].Category == category {
			return &result.Findings[i]
		}
	}
	return nil
}

func TestCheck_Healthy(t *testing.T) {
	state := setupState(t)
	doc := NewDoctor(state, model.LockPolicy{})

	result, err := doc.Check()
	require.NoError(t, err)
	assert.True(t, result.Healthy)
	assert.Empty(t, result.Findings)
}

func TestCheck_MissingLockDir(t *testing.T) {
	state := setupState(t)
	require.NoError(t, os.RemoveAll(state.LockDir()))

	result, err := NewDoctor(state, model.LockPolicy{}).Check()
	require.NoError(t, err)
	assert.False(t, result.Healthy)
	require.NotNil(t, findCategory(result, "lock-dir"))
}

func TestCheck_LockDirSymlinkedOutsideRoot(t *testing.T) {
	state := setupState(t)
	outside := t.TempDir()
	require.NoError(t, os.RemoveAll(state.LockDir()))
	require.NoError(t, os.Symlink(outside, state.LockDir()))

	result, err := NewDoctor(state, model.LockPolicy{}).Check()
	require.NoError(t, err)
	assert.False(t, result.Healthy)
	f := findCategory(result, "lock-dir")
	require.NotNil(t, f)
	assert.Contains(t, f.Description, "state root")
}

func TestCheck_OrphanTempFiles(t *testing.T) {
	state := setupState(t)
	orphan := filepath.Join(state.LockDir(), ".chadgi-tmp-123456")
	require.NoError(t, os.WriteFile(orphan, []byte("partial"), 0644))

	result, err := NewDoctor(state, model.LockPolicy{}).Check()
	require.NoError(t, err)
	assert.True(t, result.Healthy) // warning only
	f := findCategory(result, "orphan-temp")
	require.NotNil(t, f)
	assert.Equal(t, "warning", f.Severity)
	assert.Equal(t, orphan, f.Path)
}

func TestCheck_CorruptLockRecord(t *testing.T) {
	state := setupState(t)
	corrupt := filepath.Join(state.LockDir(), "issue-9.lock")
	require.NoError(t, os.WriteFile(corrupt, []byte("{broken"), 0644))

	result, err := NewDoctor(state, model.LockPolicy{}).Check()
	require.NoError(t, err)
	assert.False(t, result.Healthy)
	f := findCategory(result, "lock-records")
	require.NotNil(t, f)
	assert.Equal(t, corrupt, f.Path)
}

func TestCheck_StaleCensus(t *testing.T) {
	state := setupState(t)
	store := lock.NewStore(state.LockDir())
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, store.Create(&model.TaskLock{
		IssueNumber:   1,
		SessionID:     "s1",
		CreatedAt:     old,
		LastHeartbeat: old,
	}))

	result, err := NewDoctor(state, model.LockPolicy{TimeoutMinutes: 60}).Check()
	require.NoError(t, err)
	assert.True(t, result.Healthy)
	f := findCategory(result, "stale-locks")
	require.NotNil(t, f)
	assert.Contains(t, f.Description, "1 stale")
}
