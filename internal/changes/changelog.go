package changes

import (
	"slices"
	"strings"
	"time"

	"github.com/aaptel/rpm-changes-merger/internal/fs"
	"github.com/pkg/errors"
)

// DefaultSeparator is the separator line written by RPM tooling.
const DefaultSeparator = "-------------------------------------------------------------------\n"

// Entry is one changelog record. Two entries are the same entry only when their texts
// are byte-identical; the timestamp is derived from the header and only used for ordering.
type Entry struct {
	timestamp time.Time
	text      string
	separator string
}

// NewEntry builds an entry from its raw text, parsing the header date.
func NewEntry(text string) (Entry, error) {
	blocks, err := Split(DefaultSeparator + text)
	if err != nil {
		return Entry{}, err
	}
	if len(blocks) != 1 {
		return Entry{}, errors.Wrap(ErrStructural, "text holds more than one entry")
	}

	return entryFromBlock(blocks[0])
}

func entryFromBlock(b Block) (Entry, error) {
	ts, err := ParseDate(b.Date())
	if err != nil {
		return Entry{}, err
	}

	return Entry{timestamp: ts, text: b.Text, separator: b.Separator}, nil
}

func (e Entry) Timestamp() time.Time {
	return e.timestamp
}

// Text is the raw entry, header and trailing whitespace included.
func (e Entry) Text() string {
	return e.text
}

// Separator is the separator line that preceded the entry in its source.
func (e Entry) Separator() string {
	if e.separator == "" {
		return DefaultSeparator
	}
	return e.separator
}

// Header is the first line of the entry.
func (e Entry) Header() string {
	return headerLine(e.text)
}

// SameEvent reports whether two entries describe the same event, i.e. share their
// header line. Merge identity never uses it.
func SameEvent(a, b Entry) bool {
	return a.Header() == b.Header()
}

// Changelog is an ordered list of entries. Loading never reorders or deduplicates.
type Changelog struct {
	// Source names where the changelog was read from, used in error reports.
	Source  string
	entries []Entry
}

// Load parses a whole changelog. Any structural or date error fails the load.
func Load(source, text string) (*Changelog, error) {
	blocks, err := Split(text)
	if err != nil {
		if pErr := GetParseError(err); pErr != nil {
			pErr.Source = source
		}
		return nil, err
	}

	c := &Changelog{Source: source, entries: make([]Entry, 0, len(blocks))}
	for i, b := range blocks {
		entry, err := entryFromBlock(b)
		if err != nil {
			return nil, &ParseError{Source: source, Entry: i + 1, Line: b.Line, Err: err}
		}
		c.entries = append(c.entries, entry)
	}

	return c, nil
}

// LoadFile reads and parses the changelog at path.
func LoadFile(fsys *fs.FileSystem, path string) (*Changelog, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read changelog %s", path)
	}

	return Load(path, string(data))
}

// Render writes every entry preceded by its separator. Without intervening Sort or
// Insert calls it reproduces the loaded text exactly.
func (c *Changelog) Render() string {
	var sb strings.Builder
	for _, e := range c.entries {
		sb.WriteString(e.Separator())
		sb.WriteString(e.text)
	}
	return sb.String()
}

func (c *Changelog) Bytes() []byte {
	return []byte(c.Render())
}

func (c *Changelog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in their current order.
func (c *Changelog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Texts returns the set of entry texts.
func (c *Changelog) Texts() map[string]struct{} {
	set := make(map[string]struct{}, len(c.entries))
	for _, e := range c.entries {
		set[e.text] = struct{}{}
	}
	return set
}

// Clone returns an independent copy of the changelog.
func (c *Changelog) Clone() *Changelog {
	return &Changelog{Source: c.Source, entries: slices.Clone(c.entries)}
}

// Newest returns the most recent entry.
func (c *Changelog) Newest() (Entry, bool) {
	if len(c.entries) == 0 {
		return Entry{}, false
	}

	newest := c.entries[0]
	for _, e := range c.entries[1:] {
		if e.timestamp.After(newest.timestamp) {
			newest = e
		}
	}
	return newest, true
}

// SortDescending orders entries most recent first. Entries with equal timestamps keep
// their relative order.
func (c *Changelog) SortDescending() {
	slices.SortStableFunc(c.entries, func(a, b Entry) int {
		return b.timestamp.Compare(a.timestamp)
	})
}

// Insert adds entries to the changelog.
//
// With sortWholeFile the entries are appended and the whole changelog is re-sorted,
// which may move existing entries. Otherwise existing entries are left untouched and
// the new ones are placed on top, newest first.
func (c *Changelog) Insert(entries []Entry, sortWholeFile bool) {
	if sortWholeFile {
		c.entries = append(c.entries, entries...)
		c.SortDescending()
		return
	}

	ascending := slices.Clone(entries)
	slices.SortStableFunc(ascending, func(a, b Entry) int {
		return a.timestamp.Compare(b.timestamp)
	})

	for _, e := range ascending {
		c.entries = slices.Insert(c.entries, 0, e)
	}
}
