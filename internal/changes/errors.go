package changes

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrStructural is returned when the text is not a sequence of separator-delimited
	// entries each starting with a "<date> - <author>@<domain>" header.
	ErrStructural = errors.New("malformed changelog")
	// ErrDateParse is returned when an entry header carries a date that cannot be parsed.
	ErrDateParse = errors.New("unparseable date")
)

// ParseError locates a structural or date failure inside a changelog.
type ParseError struct {
	Source string
	// Entry is the 1-based index of the offending entry, 0 when the failure precedes
	// the first entry.
	Entry int
	// Line is the 1-based line number in the source text.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	source := e.Source
	if source == "" {
		source = "<input>"
	}

	if e.Entry == 0 {
		return fmt.Sprintf("%s:%d: %v", source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: entry %d: %v", source, e.Line, e.Entry, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// GetParseError returns the ParseError wrapped in err, if any.
func GetParseError(err error) *ParseError {
	var pErr *ParseError
	if errors.As(err, &pErr) {
		return pErr
	}
	return nil
}
