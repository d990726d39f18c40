package merging

import (
	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/samber/lo"
)

// Diff returns the entries incoming has and base lacks, in incoming order and without
// duplicates. If base has any entry incoming lacks, it returns a ConflictError instead;
// the result is never partial.
func Diff(base, incoming *changes.Changelog) ([]changes.Entry, error) {
	baseTexts := base.Texts()
	incomingTexts := incoming.Texts()

	missing := lo.Filter(base.Entries(), func(e changes.Entry, _ int) bool {
		_, ok := incomingTexts[e.Text()]
		return !ok
	})
	if len(missing) > 0 {
		return nil, &ConflictError{
			Incoming: incoming.Source,
			Base:     base.Source,
			Missing:  lo.UniqBy(missing, entryText),
			incoming: incoming.Entries(),
		}
	}

	novel := lo.Filter(incoming.Entries(), func(e changes.Entry, _ int) bool {
		_, ok := baseTexts[e.Text()]
		return !ok
	})

	return lo.UniqBy(novel, entryText), nil
}

func entryText(e changes.Entry) string {
	return e.Text()
}
