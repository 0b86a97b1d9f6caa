package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/errclass"
)

func TestValidateName(t *testing.T) {
	valid := []string{"w1", "worker-01", "acme.widgets", "repo_a"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}

	invalid := []string{
		"",
		"..",
		"a..b",
		"a/b",
		"a\\b",
		"a b",
		"worker\x00",
		"héllo",
	}
	for _, name := range invalid {
		err := ValidateName(name)
		assert.ErrorIs(t, err, errclass.ErrNameInvalid, name)
	}
}

func TestValidatePathSafety(t *testing.T) {
	root := t.TempDir()

	assert.NoError(t, ValidatePathSafety(root, root+"/locks/issue-1.lock"))
	assert.ErrorIs(t, ValidatePathSafety(root, root+"/../outside"), errclass.ErrPathEscape)
}
