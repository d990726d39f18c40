package merging

import (
	"strings"
	"testing"

	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	entryMar13 = "Wed Mar 13 10:00:00 UTC 2019 - Aurelien Aptel <aaptel@suse.com>\n\n- Update to 4.9.5\n\n"
	entryMar14 = "Thu Mar 14 10:00:00 UTC 2019 - Jane Doe <jdoe@example.com>\n\n- Fix build on ppc64le\n\n"
	entryMar15 = "Fri Mar 15 10:00:00 UTC 2019 - john@example.com\n\n- Add patch for bsc#1234\n\n"
	entryMar16 = "Sat Mar 16 10:00:00 UTC 2019 - john@example.com\n\n- Drop obsolete patch\n\n"
)

func load(t *testing.T, source string, entries ...string) *changes.Changelog {
	t.Helper()

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(changes.DefaultSeparator)
		sb.WriteString(e)
	}

	c, err := changes.Load(source, sb.String())
	require.NoError(t, err)
	return c
}

func entryTexts(entries []changes.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text())
	}
	return out
}

func TestDiff_Superset(t *testing.T) {
	t.Parallel()

	base := load(t, "base", entryMar14, entryMar13)
	incoming := load(t, "ours", entryMar16, entryMar15, entryMar14, entryMar13)

	novel, err := Diff(base, incoming)
	require.NoError(t, err)
	assert.Equal(t, []string{entryMar16, entryMar15}, entryTexts(novel))
}

func TestDiff_Identical(t *testing.T) {
	t.Parallel()

	base := load(t, "base", entryMar14, entryMar13)

	novel, err := Diff(base, load(t, "ours", entryMar14, entryMar13))
	require.NoError(t, err)
	assert.Empty(t, novel)
}

func TestDiff_ReorderedIsNotAConflict(t *testing.T) {
	t.Parallel()

	base := load(t, "base", entryMar14, entryMar13)

	novel, err := Diff(base, load(t, "ours", entryMar13, entryMar15, entryMar14))
	require.NoError(t, err)
	assert.Equal(t, []string{entryMar15}, entryTexts(novel))
}

func TestDiff_DuplicateNovelEntriesCollapse(t *testing.T) {
	t.Parallel()

	base := load(t, "base", entryMar13)

	novel, err := Diff(base, load(t, "ours", entryMar14, entryMar14, entryMar13))
	require.NoError(t, err)
	assert.Equal(t, []string{entryMar14}, entryTexts(novel))
}

func TestDiff_Conflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		incoming    []string
		wantMissing []string
	}{
		{
			name:        "entry deleted",
			incoming:    []string{entryMar15, entryMar13},
			wantMissing: []string{entryMar14},
		},
		{
			name:        "entry deleted while others added",
			incoming:    []string{entryMar16, entryMar15, entryMar13},
			wantMissing: []string{entryMar14},
		},
		{
			name:        "entry edited",
			incoming:    []string{strings.Replace(entryMar14, "ppc64le", "s390x", 1), entryMar13},
			wantMissing: []string{entryMar14},
		},
		{
			name:        "everything dropped",
			incoming:    nil,
			wantMissing: []string{entryMar14, entryMar13},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := load(t, "base.changes", entryMar14, entryMar13)
			incoming := load(t, "theirs.changes", tt.incoming...)

			novel, err := Diff(base, incoming)
			require.Error(t, err)
			assert.Nil(t, novel)
			assert.ErrorIs(t, err, ErrConflict)

			cErr := GetConflictError(err)
			require.NotNil(t, cErr)
			assert.Equal(t, "theirs.changes", cErr.Incoming)
			assert.Equal(t, "base.changes", cErr.Base)
			assert.Equal(t, tt.wantMissing, entryTexts(cErr.Missing))
			assert.Equal(t, MergeStatusConflict, cErr.Status())
			assert.Contains(t, err.Error(), "theirs.changes")
			assert.Contains(t, err.Error(), "base.changes")
		})
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	edited := strings.Replace(entryMar14, "ppc64le", "s390x", 1)
	base := load(t, "base", entryMar14, entryMar13)
	incoming := load(t, "theirs", edited)

	_, err := Diff(base, incoming)
	cErr := GetConflictError(err)
	require.NotNil(t, cErr)

	explanations := cErr.Explain()
	require.Len(t, explanations, 2)

	assert.Equal(t, ChangeEdited, explanations[0].Kind)
	assert.Equal(t, edited, explanations[0].Replacement.Text())
	assert.Contains(t, explanations[0].Diff, "- - Fix build on ppc64le\n")
	assert.Contains(t, explanations[0].Diff, "+ - Fix build on s390x\n")
	assert.Contains(t, explanations[0].Diff, "  Thu Mar 14 10:00:00 UTC 2019 - Jane Doe <jdoe@example.com>\n")

	assert.Equal(t, ChangeDeleted, explanations[1].Kind)
	assert.Equal(t, entryMar13, explanations[1].Missing.Text())
	assert.Empty(t, explanations[1].Diff)
}
