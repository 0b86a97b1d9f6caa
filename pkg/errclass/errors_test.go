package errclass

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	assert.Equal(t, "E_ALREADY_LOCKED", ErrAlreadyLocked.Error())

	withMsg := ErrAlreadyLocked.WithMessage("issue 42 is locked")
	assert.Equal(t, "E_ALREADY_LOCKED: issue 42 is locked", withMsg.Error())
}

func TestIs_MatchesByCode(t *testing.T) {
	err := ErrLockLost.WithMessagef("lock for issue %d vanished", 7)
	assert.True(t, errors.Is(err, ErrLockLost))
	assert.False(t, errors.Is(err, ErrNotLocked))
}

func TestIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("renew: %w", ErrLockLost.WithMessage("gone"))
	assert.True(t, errors.Is(err, ErrLockLost))
}
