package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aaptel/rpm-changes-merger/internal/changes"
	gitc "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initGitRepo creates a repository in a temporary directory and commits files to it.
func initGitRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gitc.PlainInitWithOptions(dir, &gitc.PlainInitOptions{
		InitOptions: gitc.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName("main"),
		},
	})
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		writeFile(t, dir, name, content)
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("initial commit", &gitc.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@test.com",
		},
	})
	require.NoError(t, err)

	return dir
}

func TestCheck_Valid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.changes", changelogText(entryMar13, entryMar15, entryMar14))
	b := writeFile(t, dir, "b.changes", "")

	stdout, _, err := execute(t, "check", "--file", a, "--file", b, "--format", "json")
	require.NoError(t, err)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Changelogs, 2)

	assert.Equal(t, a, report.Changelogs[0].Path)
	assert.Equal(t, 3, report.Changelogs[0].Entries)
	require.NotNil(t, report.Changelogs[0].Newest)
	assert.Equal(t, 15, report.Changelogs[0].Newest.Day())
	assert.Equal(t, len(changelogText(entryMar13, entryMar15, entryMar14)), report.Changelogs[0].Size)

	assert.Equal(t, 0, report.Changelogs[1].Entries)
	assert.Nil(t, report.Changelogs[1].Newest)
}

func TestCheck_Text(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.changes", changelogText(entryMar13))

	stdout, _, err := execute(t, "check", "-f", a)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 entry")
	assert.Contains(t, stdout, "2019-03-13")
}

func TestCheck_AggregatesFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.changes", changelogText(entryMar13))
	badDate := writeFile(t, dir, "bad-date.changes", changelogText("Wed Foo 13 10:00:00 UTC 2019 - a@b.c\n\n- x\n"))
	badHeader := writeFile(t, dir, "bad-header.changes", changelogText("no header here\n"))

	stdout, stderr, err := execute(t, "check", "--file", good, "--file", badDate, "--file", badHeader, "--format", "json")
	require.Error(t, err)

	assert.Equal(t, "2 changelogs of 3 failed validation", err.Error())
	assert.ErrorIs(t, err, changes.ErrDateParse)
	assert.ErrorIs(t, err, changes.ErrStructural)
	assert.Contains(t, stderr, badDate)
	assert.Contains(t, stderr, badHeader)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Changelogs, 1)
	assert.Equal(t, good, report.Changelogs[0].Path)
}

func TestCheck_Revision(t *testing.T) {
	dir := initGitRepo(t, map[string]string{
		"pkg/foo.changes": changelogText(entryMar13),
	})
	chdir(t, dir)

	// the worktree copy is broken, the committed one is not
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "foo.changes"), []byte("garbage\n"), 0o644))

	_, _, err := execute(t, "check", "--file", "pkg/foo.changes")
	require.ErrorIs(t, err, changes.ErrStructural)

	stdout, _, err := execute(t, "check", "--file", "pkg/foo.changes", "--rev", "HEAD", "--format", "json")
	require.NoError(t, err)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Changelogs, 1)
	assert.Equal(t, 1, report.Changelogs[0].Entries)

	_, _, err = execute(t, "check", "--file", "pkg/missing.changes", "--rev", "HEAD")
	require.Error(t, err)
}

func TestCheck_RevisionOutsideRepository(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := execute(t, "check", "--file", "foo.changes", "--rev", "HEAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--rev requires a git repository")
}
