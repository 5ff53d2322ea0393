// Package schedule turns the free-text day and time fields of a course into
// something that can be placed on a weekly grid.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultDurationMinutes is assumed whenever a class has no usable end time.
	DefaultDurationMinutes = 120

	minutesPerDay   = 24 * 60
	halfDayMinutes  = 12 * 60
	maxSpanMinutes  = 8 * 60
	defaultStartMin = 18*60 + 30
)

// Clock is a wall-clock time in 24-hour form.
type Clock struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (c Clock) minuteOfDay() int {
	return c.Hours*60 + c.Minutes
}

func clockAt(minute int) Clock {
	m := ((minute % minutesPerDay) + minutesPerDay) % minutesPerDay
	return Clock{Hours: m / 60, Minutes: m % 60}
}

type TimeRange struct {
	Start          Clock `json:"start"`
	End            Clock `json:"end"`
	HasExplicitEnd bool  `json:"hasExplicitEnd"`
}

// StartMinute and EndMinute give the range in minutes since midnight. The end
// is pushed past the start in 12 hour steps so the pair is always increasing.
func (r TimeRange) StartMinute() int {
	return r.Start.minuteOfDay()
}

func (r TimeRange) EndMinute() int {
	start, end := r.StartMinute(), r.End.minuteOfDay()
	for end <= start {
		end += halfDayMinutes
	}
	return end
}

// hour, optional :MM, optional a.m./p.m. in any of its usual spellings
var timeToken = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?(?:\s*([ap])\.?\s*m\b\.?)?`)

type token struct {
	hours   int
	minutes int
	period  byte
}

func scanTokens(s string) []token {
	var tokens []token
	for _, m := range timeToken.FindAllStringSubmatch(s, 2) {
		t := token{}
		t.hours, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			t.minutes, _ = strconv.Atoi(m[2])
		}
		if m[3] != "" {
			t.period = strings.ToLower(m[3])[0]
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func to24h(hours int, period byte) int {
	switch {
	case period == 'p' && hours != 12:
		return hours + 12
	case period == 'a' && hours == 12:
		return 0
	}
	return hours
}

func (t token) minute(period byte) int {
	return to24h(t.hours, period)*60 + t.minutes
}

func defaultRange(start int) TimeRange {
	return TimeRange{
		Start: clockAt(start),
		End:   clockAt(start + DefaultDurationMinutes),
	}
}

// ParseTimeRange reads strings like "6:30 p.m. - 8:30 p.m." and never fails.
// Missing pieces are filled with an 18:30 start and a two hour duration.
func ParseTimeRange(s string) TimeRange {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	tokens := scanTokens(cleaned)

	switch len(tokens) {
	case 0:
		return defaultRange(defaultStartMin)
	case 1:
		return defaultRange(tokens[0].minute(tokens[0].period))
	}

	first, second := tokens[0], tokens[1]
	startPeriod, endPeriod := first.period, second.period
	if startPeriod == 0 {
		startPeriod = endPeriod
	}
	if endPeriod == 0 {
		endPeriod = startPeriod
	}

	start := clockAt(first.minute(startPeriod)).minuteOfDay()
	end := clockAt(second.minute(endPeriod)).minuteOfDay()
	for end <= start {
		end += halfDayMinutes
	}
	if end-start > maxSpanMinutes {
		return defaultRange(start)
	}

	return TimeRange{
		Start:          clockAt(start),
		End:            clockAt(end),
		HasExplicitEnd: true,
	}
}

// ParseTime is the start of ParseTimeRange.
func ParseTime(s string) Clock {
	return ParseTimeRange(s).Start
}

func period(hours int) string {
	if hours >= 12 {
		return "PM"
	}
	return "AM"
}

func clock12(c Clock) string {
	h := c.Hours % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d", h, c.Minutes)
}

// FormatTime renders c on a 12 hour clock, e.g. "6:30 PM".
func FormatTime(c Clock) string {
	return clock12(c) + " " + period(c.Hours)
}

// FormatRange drops the first period marker when both ends share it.
func FormatRange(start, end Clock) string {
	if period(start.Hours) == period(end.Hours) {
		return fmt.Sprintf("%s - %s %s", clock12(start), clock12(end), period(end.Hours))
	}
	return FormatTime(start) + " - " + FormatTime(end)
}

func (r TimeRange) String() string {
	return FormatRange(r.Start, r.End)
}
