package audit

import (
	"strconv"
	"time"
)

const day = 24 * time.Hour

// Age is the elapsed time of a credential event in whole days, or Never when
// no event was recorded. Never is not a number and is always stale.
type Age struct {
	days  int
	never bool
}

// Never is the age of a credential that has no usage (or change) timestamp.
var Never = Age{never: true}

// Days returns an Age of n whole days.
func Days(n int) Age {
	return Age{days: n}
}

// IsNever returns true for the Never sentinel.
func (a Age) IsNever() bool {
	return a.never
}

// Days returns the number of days; it is 0 for Never.
func (a Age) Days() int {
	return a.days
}

// Exceeds reports whether the age is stale against threshold.
func (a Age) Exceeds(threshold int) bool {
	return a.never || a.days > threshold
}

func (a Age) String() string {
	if a.never {
		return "Never"
	}
	return strconv.Itoa(a.days)
}

// DaysBetween returns the whole days elapsed from event to reference,
// truncated toward zero. Events after reference count as 0 days.
func DaysBetween(reference, event time.Time) int {
	elapsed := reference.Sub(event)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / day)
}

// AgeSince returns the age of event at now, or Never if event is nil or zero.
func AgeSince(now time.Time, event *time.Time) Age {
	if event == nil || event.IsZero() {
		return Never
	}
	return Days(DaysBetween(now, *event))
}
