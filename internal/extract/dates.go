package extract

import (
	"fmt"
	"strings"
	"time"
)

// Day-first layouts. Single-digit layout elements also accept two digits.
var dateLayouts = []string{
	"2-1-2006",
	"2-1-06",
	"2/1/2006",
	"2/1/06",
	"2006-1-2",
}

var relativeDays = map[string]int{
	"today":                  0,
	"tonight":                0,
	"tomorrow":               1,
	"day after tomorrow":     2,
	"the day after tomorrow": 2,
}

// ResolveDate turns a model-provided date into midnight of that day in today's location.
// Relative words are counted from today.
func ResolveDate(s string, today time.Time) (time.Time, error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if offset, ok := relativeDays[s]; ok {
		return today.AddDate(0, 0, offset), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, today.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
