package changes

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// separatorPattern matches a line made of five or more dashes, including its line
	// terminator.
	separatorPattern = regexp.MustCompile(`(?m)^-{5,}[ \t]*(?:\r?\n|\z)`)
	// headerPattern matches the first line of an entry: "<date> - <author>@<domain>".
	headerPattern = regexp.MustCompile(`^(.+?) - (.*@.*)$`)
)

// Block is one raw entry as found between two separators.
type Block struct {
	// Separator is the separator line preceding the entry, line terminator included.
	Separator string
	// Text is everything up to the next separator, header and trailing newlines included.
	Text string
	// Line is the 1-based line number of the entry header in the source text.
	Line int

	date string
}

// Date returns the date segment of the block header.
func (b Block) Date() string {
	return b.date
}

// Split cuts text into raw entry blocks and validates each header.
// An empty text holds no entries and is valid.
func Split(text string) ([]Block, error) {
	if text == "" {
		return nil, nil
	}

	seps := separatorPattern.FindAllStringIndex(text, -1)
	if len(seps) == 0 || seps[0][0] != 0 {
		return nil, &ParseError{Line: 1, Err: errors.Wrap(ErrStructural, "text does not start with a separator line")}
	}

	blocks := make([]Block, 0, len(seps))
	line := 1
	for i, sep := range seps {
		end := len(text)
		if i+1 < len(seps) {
			end = seps[i+1][0]
		}

		separator := text[sep[0]:sep[1]]
		line += strings.Count(separator, "\n")

		block := Block{
			Separator: separator,
			Text:      text[sep[1]:end],
			Line:      line,
		}

		if strings.TrimSpace(block.Text) == "" {
			return nil, &ParseError{Entry: i + 1, Line: line, Err: errors.Wrap(ErrStructural, "empty entry")}
		}

		m := headerPattern.FindStringSubmatch(headerLine(block.Text))
		if m == nil {
			return nil, &ParseError{Entry: i + 1, Line: line, Err: errors.Wrapf(ErrStructural, "header %q does not match \"<date> - <author>@<domain>\"", headerLine(block.Text))}
		}
		block.date = m[1]

		blocks = append(blocks, block)
		line += strings.Count(block.Text, "\n")
	}

	return blocks, nil
}

// headerLine returns the first line of an entry without its line terminator.
func headerLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}
