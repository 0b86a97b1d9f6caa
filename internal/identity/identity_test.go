package identity

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
)

func TestCurrent(t *testing.T) {
	id, err := Current("w1", "acme-widgets")
	require.NoError(t, err)
	assert.Equal(t, "w1", id.WorkerID)
	assert.Equal(t, "acme-widgets", id.RepoName)
	assert.Equal(t, os.Getpid(), id.PID)
	assert.NotEmpty(t, id.SessionID)
	assert.NotEmpty(t, id.Hostname)
}

func TestCurrent_FreshSessionPerCall(t *testing.T) {
	a, err := Current("", "")
	require.NoError(t, err)
	b, err := Current("", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestCurrent_EnvOverridesWorkerID(t *testing.T) {
	t.Setenv(WorkerIDEnv, "env-worker")

	id, err := Current("cfg-worker", "")
	require.NoError(t, err)
	assert.Equal(t, "env-worker", id.WorkerID)
}

func TestCurrent_InvalidRepoName(t *testing.T) {
	_, err := Current("w1", "acme/widgets")
	require.ErrorIs(t, err, errclass.ErrNameInvalid)
}

func TestCurrent_InvalidWorkerID(t *testing.T) {
	t.Setenv(WorkerIDEnv, "../escape")

	_, err := Current("", "")
	require.ErrorIs(t, err, errclass.ErrNameInvalid)
}
