package changes

import (
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// dateLayouts are tried in order. Whitespace in the input is collapsed to single
// spaces before matching, so padded days ("Mar  6") parse with the "2" layouts.
var dateLayouts = []string{
	"Mon Jan 2 15:04:05 MST 2006",
	"Mon Jan 2 15:04:05 -0700 2006",
	"Mon Jan 2 15:04:05 2006 MST",
	"Mon Jan 2 15:04:05 2006 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"02 Jan 06 15:04 -0700",
	"02 Jan 06 15:04 MST",
	time.RFC850,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	time.RFC3339,
}

// zoneOffsets maps the zone abbreviations found in changelogs to their UTC offset in
// seconds. time.Parse only knows the offset of the local zone's abbreviations, every
// other name would silently parse as +0000.
var zoneOffsets = map[string]int{
	"UTC": 0, "UT": 0, "GMT": 0, "Z": 0,
	"WET": 0, "WEST": 1 * 3600, "BST": 1 * 3600,
	"CET": 1 * 3600, "CEST": 2 * 3600,
	"EET": 2 * 3600, "EEST": 3 * 3600,
	"MSK": 3 * 3600, "IST": 5*3600 + 1800,
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
	"AKST": -9 * 3600, "AKDT": -8 * 3600,
	"HST": -10 * 3600,
	"JST": 9 * 3600, "KST": 9 * 3600,
	"AWST": 8 * 3600,
	"ACST": 9*3600 + 1800, "ACDT": 10*3600 + 1800,
	"AEST": 10 * 3600, "AEDT": 11 * 3600,
	"NZST": 12 * 3600, "NZDT": 13 * 3600,
}

// leapSecondPattern matches a HH:MM:60 time of day.
var leapSecondPattern = regexp.MustCompile(`\b(\d{1,2}:\d{2}):60\b`)

// ParseDate parses the date part of an entry header into a zone-aware instant.
//
// Some RPM tooling writes a seconds field of 60. That single value is clamped to 59
// so those files load; no other leap-second handling is attempted.
func ParseDate(s string) (time.Time, error) {
	value := strings.Join(strings.Fields(s), " ")
	if value == "" {
		return time.Time{}, errors.Wrap(ErrDateParse, "empty date")
	}

	value = leapSecondPattern.ReplaceAllString(value, "${1}:59")

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}

		return resolveZone(t, value)
	}

	return time.Time{}, errors.Wrapf(ErrDateParse, "unrecognized date %q", s)
}

// resolveZone replaces the fabricated zero-offset location time.Parse uses for
// unknown abbreviations with the real offset.
func resolveZone(t time.Time, value string) (time.Time, error) {
	name, offset := t.Zone()
	if name == "" {
		return t, nil
	}

	known, ok := zoneOffsets[strings.ToUpper(name)]
	if !ok {
		// abbreviations of the local zone already carry their real offset
		if t.Location() == time.Local {
			return t, nil
		}
		return time.Time{}, errors.Wrapf(ErrDateParse, "unknown time zone %q in %q", name, value)
	}

	if known == offset {
		return t, nil
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone(name, known)), nil
}
