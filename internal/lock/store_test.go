package lock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
	"github.com/SwapLabsInc/ChadGI-sub003/pkg/model"
)

func testRecord(issue int) *model.TaskLock {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	return &model.TaskLock{
		IssueNumber:   issue,
		SessionID:     "sess-1",
		PID:           1234,
		Hostname:      "worker-a",
		CreatedAt:     now,
		LastHeartbeat: now,
	}
}

func TestStore_CreateAndRead(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Create(testRecord(42)))

	rec, err := store.Read(42)
	require.NoError(t, err)
	assert.Equal(t, 42, rec.IssueNumber)
	assert.Equal(t, "sess-1", rec.SessionID)
	assert.Equal(t, "worker-a", rec.Hostname)
}

func TestStore_Create_Conflict(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Create(testRecord(42)))

	err := store.Create(testRecord(42))
	require.ErrorIs(t, err, errclass.ErrAlreadyLocked)
}

func TestStore_Read_NotLocked(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Read(99)
	require.ErrorIs(t, err, errclass.ErrNotLocked)
}

func TestStore_Read_Corrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "issue-7.lock"), []byte("not json"), 0644))

	_, err := store.Read(7)
	require.ErrorIs(t, err, errclass.ErrLockCorrupt)
}

func TestStore_Update(t *testing.T) {
	store := NewStore(t.TempDir())
	rec := testRecord(42)
	require.NoError(t, store.Create(rec))

	rec.LastHeartbeat = rec.LastHeartbeat.Add(time.Minute)
	require.NoError(t, store.Update(rec))

	got, err := store.Read(42)
	require.NoError(t, err)
	assert.True(t, got.LastHeartbeat.Equal(rec.LastHeartbeat))
	assert.True(t, got.CreatedAt.Equal(rec.CreatedAt))
}

func TestStore_Update_Vanished(t *testing.T) {
	store := NewStore(t.TempDir())

	err := store.Update(testRecord(42))
	require.ErrorIs(t, err, errclass.ErrLockLost)
}

func TestStore_Delete_Idempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Create(testRecord(42)))

	removed, err := store.Delete(42)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(42)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Create(testRecord(1)))
	require.NoError(t, store.Create(testRecord(2)))
	require.NoError(t, store.Create(testRecord(3)))

	// Non-lock files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "issue-x.lock"), []byte("x"), 0644))

	recs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestStore_List_EmptyAndMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))

	recs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseLockFileName(t *testing.T) {
	tests := []struct {
		name  string
		issue int
		ok    bool
	}{
		{"issue-42.lock", 42, true},
		{"issue-0.lock", 0, true},
		{"issue-.lock", 0, false},
		{"issue-12.json", 0, false},
		{"other-12.lock", 0, false},
		{"issue--5.lock", 0, false},
		{".chadgi-tmp-123", 0, false},
	}
	for _, tt := range tests {
		issue, ok := ParseLockFileName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.issue, issue, tt.name)
		}
	}
}
