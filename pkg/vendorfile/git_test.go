package vendorfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectToken(t *testing.T) {
	assert.Equal(t, "https://secret@github.com/example/repo.git",
		injectToken("https://github.com/example/repo.git", "secret"))
	assert.Equal(t, "https://secret@github.com/example/repo.git",
		injectToken("https://github.com/example/repo", "secret"))

	// non-github URLs and empty tokens pass through unchanged
	assert.Equal(t, "https://gitlab.com/example/repo.git",
		injectToken("https://gitlab.com/example/repo.git", "secret"))
	assert.Equal(t, "https://github.com/example/repo.git",
		injectToken("https://github.com/example/repo.git", ""))
}

func TestPickVersion(t *testing.T) {
	tags := []string{"v1.0.0", "v1.2.0", "v1.2.3", "v2.0.0", "nightly", "v2.1.0-rc1"}

	constraint, err := semver.NewConstraint("^1.0")
	require.NoError(t, err)

	tag, err := pickVersion(tags, constraint)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", tag)

	constraint, err = semver.NewConstraint(">= 2.0")
	require.NoError(t, err)

	tag, err = pickVersion(tags, constraint)
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", tag)

	constraint, err = semver.NewConstraint("^3.0")
	require.NoError(t, err)

	_, err = pickVersion(tags, constraint)
	assert.Error(t, err)
}

func commitFixture(t *testing.T, path string) (*git.Repository, plumbing.Hash) {
	t.Helper()

	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(path, "main.tf"), []byte("module {}\n"), 0o600))

	tree, err := repo.Worktree()
	require.NoError(t, err)

	_, err = tree.Add("main.tf")
	require.NoError(t, err)

	hash, err := tree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return repo, hash
}

func TestHasVersionTag(t *testing.T) {
	path := t.TempDir()
	repo, hash := commitFixture(t, path)

	_, err := repo.CreateTag("v1.0.0", hash, nil)
	require.NoError(t, err)

	assert.True(t, hasVersionTag(path, "v1.0.0"))
	assert.False(t, hasVersionTag(path, "v2.0.0"))
	assert.False(t, hasVersionTag(t.TempDir(), "v1.0.0"))
}

func TestHasVersionTagAnnotated(t *testing.T) {
	path := t.TempDir()
	repo, hash := commitFixture(t, path)

	_, err := repo.CreateTag("v1.0.0", hash, &git.CreateTagOptions{
		Message: "release",
		Tagger:  &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	assert.True(t, hasVersionTag(path, "v1.0.0"))
}

func TestResolveVersionExact(t *testing.T) {
	syncer := &Syncer{}

	version, err := syncer.resolveVersion(t.Context(), Entry{Version: "v1.2.3"})
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", version)

	version, err = syncer.resolveVersion(t.Context(), Entry{Version: "1.2.3"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)
}

func TestResolveVersionBranch(t *testing.T) {
	syncer := &Syncer{}

	version, err := syncer.resolveVersion(t.Context(), Entry{Version: "main"})
	require.NoError(t, err)
	assert.Equal(t, "main", version)

	version, err = syncer.resolveVersion(t.Context(), Entry{Version: ""})
	require.NoError(t, err)
	assert.Equal(t, "", version)
}
