// Package dateparse turns natural language date filters into YYYY-MM-DD strings.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ringlify/ringlify-cli/internal/output"
)

// Parse resolves input relative to the current local time.
// Supported formats:
//   - today, tomorrow, yesterday
//   - monday, tue, ... (most recent, today included)
//   - last monday (strictly before today), next monday (strictly after)
//   - sow / start of week (Monday), som / start of month, eom / end of month
//   - last week, last month (same day one week/month back)
//   - N days ago, N weeks ago, -N, +N, in N days, in N weeks
//   - YYYY-MM-DD and RFC 3339 timestamps (passed through)
func Parse(input string) (string, error) {
	return ParseFrom(input, time.Now())
}

// ParseFrom resolves input relative to now.
func ParseFrom(input string, now time.Time) (string, error) {
	raw := strings.TrimSpace(input)
	in := strings.ToLower(raw)

	switch in {
	case "":
		return "", nil
	case "today":
		return formatDate(now), nil
	case "tomorrow":
		return formatDate(now.AddDate(0, 0, 1)), nil
	case "yesterday":
		return formatDate(now.AddDate(0, 0, -1)), nil
	case "last week", "lastweek":
		return formatDate(now.AddDate(0, 0, -7)), nil
	case "last month", "lastmonth":
		return formatDate(now.AddDate(0, -1, 0)), nil
	case "start of week", "sow":
		return formatDate(previousWeekday(now, time.Monday, true)), nil
	case "start of month", "som":
		y, m, _ := now.Date()
		return formatDate(time.Date(y, m, 1, 0, 0, 0, 0, now.Location())), nil
	case "end of month", "eom":
		return formatDate(endOfMonth(now)), nil
	}

	if rest, ok := strings.CutPrefix(in, "next "); ok {
		if day, ok := parseWeekday(rest); ok {
			return formatDate(nextWeekday(now, day)), nil
		}
	}
	if rest, ok := strings.CutPrefix(in, "last "); ok {
		if day, ok := parseWeekday(rest); ok {
			return formatDate(previousWeekday(now, day, false)), nil
		}
	}
	if day, ok := parseWeekday(in); ok {
		return formatDate(previousWeekday(now, day, true)), nil
	}

	if m := relativePattern.FindStringSubmatch(in); m != nil {
		n, err := strconv.Atoi(m[2])
		if err == nil {
			if m[1] == "-" {
				n = -n
			}
			return formatDate(now.AddDate(0, 0, n)), nil
		}
	}
	if m := agoPattern.FindStringSubmatch(in); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return formatDate(now.AddDate(0, 0, -n*unitDays(m[2]))), nil
		}
	}
	if m := inPattern.FindStringSubmatch(in); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return formatDate(now.AddDate(0, 0, n*unitDays(m[2]))), nil
		}
	}

	if datePattern.MatchString(in) {
		if _, err := time.Parse("2006-01-02", in); err == nil {
			return in, nil
		}
	}
	if _, err := time.Parse(time.RFC3339, raw); err == nil {
		return raw, nil
	}

	return "", output.ErrUsageHint(
		fmt.Sprintf("Unrecognized date %q", raw),
		"Use YYYY-MM-DD, today, yesterday, monday, 7 days ago, ...",
	)
}

// TodayWindow returns today's and tomorrow's calendar dates in UTC.
func TodayWindow(now time.Time) (today, tomorrow string) {
	now = now.UTC()
	return formatDate(now), formatDate(now.AddDate(0, 0, 1))
}

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	relativePattern = regexp.MustCompile(`^([+-])(\d{1,5})$`)
	agoPattern      = regexp.MustCompile(`^(\d{1,5}) (days?|weeks?) ago$`)
	inPattern       = regexp.MustCompile(`^in (\d{1,5}) (days?|weeks?)$`)
)

func unitDays(unit string) int {
	if strings.HasPrefix(unit, "week") {
		return 7
	}
	return 1
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseWeekday(input string) (time.Weekday, bool) {
	switch input {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return 0, false
}

// previousWeekday returns the latest target weekday before now,
// or on now when includeToday is set.
func previousWeekday(now time.Time, target time.Weekday, includeToday bool) time.Time {
	back := int(now.Weekday()-target+7) % 7
	if back == 0 && !includeToday {
		back = 7
	}
	return now.AddDate(0, 0, -back)
}

// nextWeekday returns the first target weekday strictly after now.
func nextWeekday(now time.Time, target time.Weekday) time.Time {
	ahead := int(target-now.Weekday()+7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return now.AddDate(0, 0, ahead)
}

// endOfMonth returns the last day of the current month.
func endOfMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
}
