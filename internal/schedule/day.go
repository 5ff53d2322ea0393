package schedule

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownDayOrder sorts unrecognised days after every real weekday.
const UnknownDayOrder = 99

var dayOrder = map[string]int{
	"domingo":   0,
	"lunes":     1,
	"martes":    2,
	"miercoles": 3,
	"jueves":    4,
	"viernes":   5,
	"sabado":    6,
}

var dayLabels = map[string]string{
	"domingo":   "Sunday",
	"lunes":     "Monday",
	"martes":    "Tuesday",
	"miercoles": "Wednesday",
	"jueves":    "Thursday",
	"viernes":   "Friday",
	"sabado":    "Saturday",
}

var weekdayKeys = [7]string{"domingo", "lunes", "martes", "miercoles", "jueves", "viernes", "sabado"}

// NormalizeDay folds "Miércoles " into "miercoles". The result is only a
// canonical key when the input was a Spanish weekday.
func NormalizeDay(day string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, day)
	if err != nil {
		folded = day
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

func DayOrder(day string) int {
	if order, ok := dayOrder[NormalizeDay(day)]; ok {
		return order
	}
	return UnknownDayOrder
}

// DayLabel returns the English name, or the trimmed input if it is not a weekday.
func DayLabel(day string) string {
	if label, ok := dayLabels[NormalizeDay(day)]; ok {
		return label
	}
	return strings.TrimSpace(day)
}

func Weekday(day string) (time.Weekday, bool) {
	order, ok := dayOrder[NormalizeDay(day)]
	return time.Weekday(order), ok
}

// DayKey is the canonical key for a weekday.
func DayKey(w time.Weekday) string {
	return weekdayKeys[w]
}

// NextOccurrence returns the first date on or after today that falls on day.
// Unknown days resolve to today.
func NextOccurrence(day string, today time.Time) time.Time {
	target, ok := Weekday(day)
	if !ok {
		return today
	}
	diff := (int(target) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, diff)
}

// SortDays orders normalized day keys chronologically, unknown keys last.
func SortDays(days []string) {
	sort.SliceStable(days, func(i, j int) bool {
		return DayOrder(days[i]) < DayOrder(days[j])
	})
}
