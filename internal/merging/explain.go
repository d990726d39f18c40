package merging

import (
	"strings"

	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type ChangeKind string

const (
	ChangeDeleted ChangeKind = "deleted"
	ChangeEdited  ChangeKind = "edited"
)

// Explanation describes what became of one base entry missing from an incoming changelog.
type Explanation struct {
	Missing changes.Entry
	Kind    ChangeKind
	// Replacement is the incoming entry sharing the missing entry's header, when edited.
	Replacement changes.Entry
	// Diff is a line diff from the missing entry to its replacement, when edited.
	Diff string
}

// Explain pairs each missing entry with an incoming entry carrying the same header.
// It only helps a human resolve the conflict; an edit is still a conflict.
func (e *ConflictError) Explain() []Explanation {
	explanations := make([]Explanation, 0, len(e.Missing))

	for _, missing := range e.Missing {
		ex := Explanation{Missing: missing, Kind: ChangeDeleted}

		for _, candidate := range e.incoming {
			if changes.SameEvent(missing, candidate) {
				ex.Kind = ChangeEdited
				ex.Replacement = candidate
				ex.Diff = lineDiff(missing.Text(), candidate.Text())
				break
			}
		}

		explanations = append(explanations, ex)
	}

	return explanations
}

func lineDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
