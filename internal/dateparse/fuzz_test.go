package dateparse

import (
	"testing"
	"time"
)

// FuzzParseFrom checks that ParseFrom never panics and that every
// successful result is a date or a timestamp.
func FuzzParseFrom(f *testing.F) {
	seeds := []string{
		"today", "tomorrow", "yesterday",
		"monday", "mon", "last friday", "next sunday",
		"sow", "som", "eom", "last week", "last month",
		"+1", "-7", "+-1", "7 days ago", "2 weeks ago", "in 3 days",
		"2024-01-15", "2024-02-30", "2024-03-05T09:30:00Z",
		"", " ", "invalid", "next", "in", "ago",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	ref := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, input string) {
		got, err := ParseFrom(input, ref)
		if err != nil || got == "" {
			return
		}
		if datePattern.MatchString(got) {
			return
		}
		if _, perr := time.Parse(time.RFC3339, got); perr != nil {
			t.Errorf("ParseFrom(%q) = %q, neither a date nor a timestamp", input, got)
		}
	})
}
