package valueobjects

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// WeekID is the bucketing key of the interaction ledger, formatted
// "<year>-W<week>". The week number is
//
//	ceil((daysSinceJan1 + weekday(Jan1) + 1) / 7)
//
// with fractional days and Sunday = 0, evaluated in the instant's own
// location. It is not an ISO-8601 week and is only comparable to itself.
type WeekID string

// WeekIDAt returns the week bucket containing t
func WeekIDAt(t time.Time) WeekID {
	t = t.Truncate(time.Millisecond)
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := float64(t.Sub(yearStart)) / float64(24*time.Hour)
	week := int(math.Ceil((days + float64(yearStart.Weekday()) + 1) / 7))
	return WeekID(fmt.Sprintf("%d-W%d", t.Year(), week))
}

// RetentionWeeks returns the week buckets of now and of each 7-day step back,
// n entries in total. Each step recomputes the bucket independently, so near
// a year boundary the set can skip a calendar bucket.
func RetentionWeeks(now time.Time, n int) []WeekID {
	weeks := make([]WeekID, 0, n)
	for i := 0; i < n; i++ {
		weeks = append(weeks, WeekIDAt(now.Add(-time.Duration(i)*7*24*time.Hour)))
	}
	return weeks
}

// String returns the wire form of the week
func (w WeekID) String() string {
	return string(w)
}

// Parts splits the week into year and week number
func (w WeekID) Parts() (year, week int, err error) {
	y, n, ok := strings.Cut(string(w), "-W")
	if !ok {
		return 0, 0, fmt.Errorf("malformed week id %q", string(w))
	}
	if year, err = strconv.Atoi(y); err != nil {
		return 0, 0, fmt.Errorf("malformed week year %q: %w", y, err)
	}
	if week, err = strconv.Atoi(n); err != nil {
		return 0, 0, fmt.Errorf("malformed week number %q: %w", n, err)
	}
	return year, week, nil
}

// Label formats the week for display, e.g. "Week 10, 2024"
func (w WeekID) Label() string {
	y, n, ok := strings.Cut(string(w), "-W")
	if !ok {
		return string(w)
	}
	return fmt.Sprintf("Week %s, %s", n, y)
}
