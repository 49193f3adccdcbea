package deadline

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// layouts accepted for deadlines without an explicit zone. Both a space and
// an ISO "T" separate the date from the time.
var localLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// Parse reads a deadline string. Values without a zone are interpreted in
// loc (time.Local when nil).
func Parse(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty deadline")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized deadline %q", raw)
}

// Status is a rendered countdown.
type Status struct {
	Label  string
	Failed bool
	Bad    bool
	Soon   bool
}

const soonHours = 6

// Countdown renders the remaining time to a deadline the way the task list
// shows it: "FAILED" once past, whole days when a day or more remains,
// otherwise whole hours with Soon set at six hours or fewer.
func Countdown(raw string, now time.Time, loc *time.Location) Status {
	due, err := Parse(raw, loc)
	if err != nil {
		return Status{Label: "BAD DATE", Bad: true}
	}
	left := due.Sub(now)
	if left < 0 {
		return Status{Label: "FAILED", Failed: true}
	}
	hours := int(math.Floor(left.Hours()))
	if hours >= 24 {
		return Status{Label: fmt.Sprintf("%dd left", hours/24)}
	}
	return Status{Label: fmt.Sprintf("%dh left", hours), Soon: hours <= soonHours}
}
