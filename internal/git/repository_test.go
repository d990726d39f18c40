package git

import (
	"os"
	"path/filepath"
	"testing"

	gitc "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a temporary git repository on "main" with one commit per content.
func initTestRepo(t *testing.T, path string, contents ...string) (*Repository, string) {
	t.Helper()

	dir := t.TempDir()

	_, err := gitc.PlainInitWithOptions(dir, &gitc.PlainInitOptions{
		InitOptions: gitc.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName("main"),
		},
	})
	require.NoError(t, err)

	r, err := NewLocalRepository(dir)
	require.NoError(t, err)
	require.False(t, r.IsNil())

	wt, err := r.repo.Worktree()
	require.NoError(t, err)

	for i, content := range contents {
		full := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))

		_, err = wt.Add(path)
		require.NoError(t, err)

		_, err = wt.Commit("commit "+string(rune('a'+i)), &gitc.CommitOptions{
			Author: &object.Signature{
				Name:  "test",
				Email: "test@test.com",
			},
		})
		require.NoError(t, err)
	}

	return r, dir
}

func TestNewLocalRepository_NoRepo(t *testing.T) {
	t.Parallel()

	r, err := NewLocalRepository(t.TempDir())
	require.NoError(t, err)
	assert.True(t, r.IsNil())
	assert.Empty(t, r.Root())

	_, err = r.ReadFileAtRevision("HEAD", "foo.changes")
	assert.ErrorIs(t, err, ErrNoRepository)

	_, err = r.RelPath("foo.changes")
	assert.ErrorIs(t, err, ErrNoRepository)
}

func TestNewLocalRepository_DetectsParent(t *testing.T) {
	t.Parallel()

	_, dir := initTestRepo(t, "pkg/foo.changes", "first\n")

	r, err := NewLocalRepository(filepath.Join(dir, "pkg"))
	require.NoError(t, err)
	require.False(t, r.IsNil())

	rel, err := r.RelPath(filepath.Join(dir, "pkg", "foo.changes"))
	require.NoError(t, err)
	assert.Equal(t, "pkg/foo.changes", rel)

	_, err = r.RelPath(filepath.Join(t.TempDir(), "other.changes"))
	assert.Error(t, err)
}

func TestReadFileAtRevision(t *testing.T) {
	t.Parallel()

	r, _ := initTestRepo(t, "pkg/foo.changes", "first\n", "second\n")

	got, err := r.ReadFileAtRevision("HEAD", "pkg/foo.changes")
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(got))

	got, err = r.ReadFileAtRevision("HEAD~1", "pkg/foo.changes")
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(got))

	_, err = r.ReadFileAtRevision("HEAD", "pkg/missing.changes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist at HEAD")

	_, err = r.ReadFileAtRevision("nope", "pkg/foo.changes")
	assert.Error(t, err)
}

func TestMergeDriver_RoundTrip(t *testing.T) {
	t.Parallel()

	r, dir := initTestRepo(t, "foo.changes", "first\n")

	got, err := r.GetMergeDriver("rpm-changes")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := MergeDriver{
		Name:        "rpm-changes",
		Description: "RPM changelog merge driver",
		Driver:      "rpm-changes-merger merge --base %O --incoming %A --incoming %B --out %A",
	}
	require.NoError(t, r.SetMergeDriver(want))

	reopened, err := NewLocalRepository(dir)
	require.NoError(t, err)

	got, err = reopened.GetMergeDriver("rpm-changes")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}
