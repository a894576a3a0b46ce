package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"table-reservation-backend/internal/clock"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	// 9:05, 09:05 and 09:05:00 (seconds from <input type=time step=1>) are accepted.
	timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
)

// TimeOfDay is a parsed HH:MM value.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats t as a zero-padded HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Name trims a client name and collapses inner whitespace.
func Name(raw string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
}

// Time parses a 24-hour time-of-day string.
func Time(raw string) (TimeOfDay, error) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("unable to parse time: %q", raw)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return TimeOfDay{}, fmt.Errorf("time out of range: %q", raw)
	}
	return TimeOfDay{Hour: h, Minute: mm}, nil
}

// Date parses a YYYY-MM-DD calendar date at midnight in loc.
func Date(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(clock.DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
	}
	return d, nil
}

// People parses a party size. Empty input parses to 0 so that callers can
// report it the same way as a non-positive count.
func People(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unable to parse people: %q", raw)
	}
	return n, nil
}
