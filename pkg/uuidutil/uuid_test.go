package uuidutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewV4(t *testing.T) {
	a := NewV4()
	b := NewV4()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
