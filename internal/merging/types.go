package merging

import (
	"fmt"

	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/pkg/errors"
)

// MergeStatus represents the outcome of a changelog merge.
type MergeStatus string

const (
	MergeStatusClean       MergeStatus = "CLEAN"
	MergeStatusConflict    MergeStatus = "CONFLICT"
	MergeStatusFastForward MergeStatus = "FAST_FORWARD" // No branch added anything
)

// ErrConflict is matched by every ConflictError.
var ErrConflict = errors.New("merge conflict")

// MergeResult holds the merged changelog.
type MergeResult struct {
	Base    string
	Sources []string
	Content []byte
	Status  MergeStatus
	// Added lists the entries taken from the incoming changelogs, in first-seen order.
	Added []changes.Entry
}

// ConflictError reports an incoming changelog that lacks entries of the base. Such a
// branch either deleted or edited history, which cannot be merged automatically.
type ConflictError struct {
	Incoming string
	Base     string
	Missing  []changes.Entry

	incoming []changes.Entry
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is missing %d %s present in base %s", sourceName(e.Incoming), len(e.Missing), pluralEntries(len(e.Missing)), sourceName(e.Base))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Status() MergeStatus {
	return MergeStatusConflict
}

// GetConflictError returns the ConflictError wrapped in err, if any.
func GetConflictError(err error) *ConflictError {
	var cErr *ConflictError
	if errors.As(err, &cErr) {
		return cErr
	}
	return nil
}

func sourceName(s string) string {
	if s == "" {
		return "<input>"
	}
	return s
}

func pluralEntries(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}
