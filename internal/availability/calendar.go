package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minWeekNumber = 1
	maxWeekNumber = 53
)

var (
	weekNumberPattern = regexp.MustCompile(`^\d+$`)
	datePattern       = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{4}|\d{2})?)?$`)
)

// ResolveWeekStart interprets free-text week input relative to now.
// It accepts a week number (1-53) of now's year or a D.M[.YYYY] date and
// returns the Monday of that week at local midnight. The boolean is false
// when the input is empty or cannot be interpreted.
func ResolveWeekStart(input string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}

	if weekNumberPattern.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil || n < minWeekNumber || n > maxWeekNumber {
			return time.Time{}, false
		}
		jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return WeekStartOf(jan1).AddDate(0, 0, (n-1)*7), true
	}

	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}
	date, ok := calendarDate(year, month, day, now.Location())
	if !ok {
		return time.Time{}, false
	}
	return WeekStartOf(date), true
}

// calendarDate rejects dates that time.Date would silently normalise, such as 31.2.
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// WeekStartOf returns the Monday of t's week at midnight in t's location.
func WeekStartOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDate renders t as "day.month.year" without zero padding.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d", t.Day(), int(t.Month()), t.Year())
}

// ISOWeekNumber returns the ISO-8601 week number of t.
func ISOWeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// WeekLabel renders the heading shown above a week grid.
func WeekLabel(start time.Time) string {
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("Nädal %d • %s – %s", ISOWeekNumber(start), FormatDate(start), FormatDate(end))
}

// WeekTimestamp is the bucket identifier under which a week's state is stored:
// Unix milliseconds of the week start.
func WeekTimestamp(start time.Time) int64 {
	return start.UnixMilli()
}

// WeekFromTimestamp converts a stored bucket identifier back into a week start in loc.
func WeekFromTimestamp(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return WeekStartOf(time.UnixMilli(ms).In(loc))
}
