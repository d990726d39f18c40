package changes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantUTC    time.Time
		wantOffset int
	}{
		{
			name:    "rpm changes UTC",
			input:   "Wed Mar 13 10:32:59 UTC 2019",
			wantUTC: time.Date(2019, time.March, 13, 10, 32, 59, 0, time.UTC),
		},
		{
			name:    "padded day",
			input:   "Wed Mar  6 08:00:00 UTC 2019",
			wantUTC: time.Date(2019, time.March, 6, 8, 0, 0, 0, time.UTC),
		},
		{
			name:       "named zone",
			input:      "Thu Jan 10 12:00:00 CET 2019",
			wantUTC:    time.Date(2019, time.January, 10, 11, 0, 0, 0, time.UTC),
			wantOffset: 3600,
		},
		{
			name:       "summer zone",
			input:      "Mon Jul  1 12:00:00 CEST 2019",
			wantUTC:    time.Date(2019, time.July, 1, 10, 0, 0, 0, time.UTC),
			wantOffset: 7200,
		},
		{
			name:       "numeric zone",
			input:      "Mon Jul  1 12:00:00 -0500 2019",
			wantUTC:    time.Date(2019, time.July, 1, 17, 0, 0, 0, time.UTC),
			wantOffset: -5 * 3600,
		},
		{
			name:       "rfc 2822",
			input:      "Tue, 12 Mar 2019 09:15:00 +0100",
			wantUTC:    time.Date(2019, time.March, 12, 8, 15, 0, 0, time.UTC),
			wantOffset: 3600,
		},
		{
			name:    "leap second is clamped",
			input:   "Mon Dec 31 23:59:60 UTC 2018",
			wantUTC: time.Date(2018, time.December, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.wantUTC.Equal(got), "got %s, want %s", got, tt.wantUTC)

			_, offset := got.Zone()
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"",
		"yesterday",
		"Wed Mar 13 25:00:00 UTC 2019",
		"Wed Mar 13 10:00:61 UTC 2019",
		"Wed Mar 13 10:00:00 XYZT 2019",
	} {
		_, err := ParseDate(input)
		assert.ErrorIs(t, err, ErrDateParse, "input %q", input)
	}
}
