package merging

import (
	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type Engine struct {
	sortWholeFile bool
}

type Option func(*Engine)

// WithSortWholeFile re-sorts the whole merged changelog by date instead of placing the
// added entries on top of the untouched base entries.
func WithSortWholeFile(sortWholeFile bool) Option {
	return func(e *Engine) {
		e.sortWholeFile = sortWholeFile
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge merges every incoming changelog into a copy of base. It stops at the first
// incoming changelog that conflicts with base; base itself is never modified.
func (e *Engine) Merge(base *changes.Changelog, incoming ...*changes.Changelog) (*MergeResult, error) {
	if len(incoming) == 0 {
		return nil, errors.New("at least one incoming changelog is required")
	}

	var added []changes.Entry
	seen := make(map[string]struct{})

	for _, in := range incoming {
		novel, err := Diff(base, in)
		if err != nil {
			return nil, err
		}

		for _, entry := range novel {
			if _, ok := seen[entry.Text()]; ok {
				continue
			}
			seen[entry.Text()] = struct{}{}
			added = append(added, entry)
		}
	}

	merged := base.Clone()
	merged.Insert(added, e.sortWholeFile)

	status := MergeStatusClean
	if len(added) == 0 {
		status = MergeStatusFastForward
	}

	return &MergeResult{
		Base: base.Source,
		Sources: lo.Map(incoming, func(c *changes.Changelog, _ int) string {
			return c.Source
		}),
		Content: merged.Bytes(),
		Status:  status,
		Added:   added,
	}, nil
}
