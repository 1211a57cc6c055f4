package gitlib_test

import (
	"testing"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/linestat/internal/gitlib"
)

const sampleHex = "0123456789abcdef0123456789abcdef01234567"

func TestHash_OidRoundTrip(t *testing.T) {
	t.Parallel()

	oid, err := git2go.NewOid(sampleHex)
	require.NoError(t, err)

	hash := gitlib.HashFromOid(oid)
	assert.Equal(t, sampleHex, hash.String())
	assert.Equal(t, oid, hash.ToOid())
}

func TestHash_ZeroString(t *testing.T) {
	t.Parallel()

	var hash gitlib.Hash

	assert.Equal(t, "0000000000000000000000000000000000000000", hash.String())
}

func TestChangeAction_String(t *testing.T) {
	t.Parallel()

	cases := map[gitlib.ChangeAction]string{
		gitlib.Insert:            "insert",
		gitlib.Modify:            "modify",
		gitlib.Delete:            "delete",
		gitlib.Rename:            "rename",
		gitlib.Copy:              "copy",
		gitlib.ChangeAction(999): "unknown",
	}

	for action, want := range cases {
		assert.Equal(t, want, action.String())
	}
}

func TestChangeEntry_IsSubmodule(t *testing.T) {
	t.Parallel()

	blob := gitlib.ChangeEntry{Name: "main.go", Mode: 0o100644}
	assert.False(t, blob.IsSubmodule())

	submodule := gitlib.ChangeEntry{Name: "vendor/lib", Mode: 0o160000}
	assert.True(t, submodule.IsSubmodule())
}
