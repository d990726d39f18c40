package cmd

import (
	"encoding/json"
	"testing"

	"github.com/aaptel/rpm-changes-merger/internal/merging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDiff_Added(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := writeFile(t, dir, "base.changes", changelogText(entryMar13))
	ours := writeFile(t, dir, "ours.changes", changelogText(entryMar15, entryMar14, entryMar13))

	stdout, _, err := execute(t, "diff", "--base", base, "--incoming", ours, "--format", "json")
	require.NoError(t, err)

	var report diffReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.Equal(t, base, report.Base)
	assert.Equal(t, ours, report.Incoming)
	require.Len(t, report.Added, 2)
	assert.Equal(t, "Fri Mar 15 10:00:00 UTC 2019 - john@example.com", report.Added[0].Header)
	assert.Equal(t, 15, report.Added[0].Date.Day())
	assert.Empty(t, report.Missing)
}

func TestDiff_Text(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := writeFile(t, dir, "base.changes", changelogText(entryMar13))
	ours := writeFile(t, dir, "ours.changes", changelogText(entryMar14, entryMar13))

	stdout, _, err := execute(t, "diff", "--base", base, "--incoming", ours)
	require.NoError(t, err)
	assert.Contains(t, stdout, "+ Thu Mar 14 10:00:00 UTC 2019 - Jane Doe <jdoe@example.com>")

	stdout, _, err = execute(t, "diff", "--base", base, "--incoming", base)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no changes")
}

func TestDiff_Conflict(t *testing.T) {
	t.Parallel()

	edited := "Thu Mar 14 10:00:00 UTC 2019 - Jane Doe <jdoe@example.com>\n\n- Fix build on s390x\n\n"

	dir := t.TempDir()
	base := writeFile(t, dir, "base.changes", changelogText(entryMar14, entryMar13))
	theirs := writeFile(t, dir, "theirs.changes", changelogText(entryMar15, edited))

	stdout, _, err := execute(t, "diff", "-b", base, "-i", theirs, "-f", "yaml")
	require.ErrorIs(t, err, merging.ErrConflict)

	var report diffReport
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &report))

	assert.Empty(t, report.Added)
	require.Len(t, report.Missing, 2)
	assert.Equal(t, "edited", report.Missing[0].Kind)
	assert.Contains(t, report.Missing[0].Diff, "+ - Fix build on s390x")
	assert.Equal(t, "deleted", report.Missing[1].Kind)
	assert.Empty(t, report.Missing[1].Diff)
}
