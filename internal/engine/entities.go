package engine

import (
	"regexp"
	"strings"
)

// Defaults substituted when no pattern matches; the pipeline never reports
// "unknown" to the user.
const (
	DefaultDay  = "Tuesday"
	DefaultTime = "2:00 PM"
)

var (
	timePattern = regexp.MustCompile(`(\d{1,2})\s*(pm|am|o'clock)`)
	dayPattern  = regexp.MustCompile(`(monday|tuesday|wednesday|thursday|friday|saturday|sunday|tomorrow|next week)`)
)

// Entities are the day and time tokens pulled out of an appointment
// request. Both fields are always non-empty.
type Entities struct {
	Day  string
	Time string
}

// ExtractEntities scans the lower-cased message for the first day and time
// tokens. Matched tokens are therefore lower-case ("tuesday", "2 pm");
// absent matches fall back to the defaults. Values are never validated
// against a calendar or business hours.
func ExtractEntities(message string) Entities {
	lower := strings.ToLower(message)
	e := Entities{Day: DefaultDay, Time: DefaultTime}
	if m := timePattern.FindStringSubmatch(lower); m != nil {
		e.Time = m[1] + " " + m[2]
	}
	if m := dayPattern.FindStringSubmatch(lower); m != nil {
		e.Day = m[1]
	}
	return e
}
