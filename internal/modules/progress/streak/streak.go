// Package streak computes daily-activity streak transitions. It is pure: the
// caller supplies "today" and persists the returned state.
package streak

import (
	"time"

	"github.com/yungbote/prepstack-backend/internal/domain/user"
)

type Action string

const (
	ActionNoChange    Action = "no_change"
	ActionStarted     Action = "started"
	ActionIncremented Action = "incremented"
	ActionReset       Action = "reset"
)

// Mutates reports whether the action changes stored state.
func (a Action) Mutates() bool { return a != ActionNoChange }

// Next applies one activity on the calendar day today to state.
//
// A state with no recorded date (or a zero length) starts a new streak. A
// stored date that cannot be parsed, lies more than one day back, or lies in
// the future resets the streak to 1.
func Next(today time.Time, state user.StreakState) (user.StreakState, Action) {
	day := CalendarDay(today)
	stamp := day.Format(user.DateLayout)

	if state.LastUpdate == "" || state.Length <= 0 {
		return user.StreakState{LastUpdate: stamp, Length: 1}, ActionStarted
	}

	last, err := ParseDay(state.LastUpdate)
	if err != nil {
		return user.StreakState{LastUpdate: stamp, Length: 1}, ActionReset
	}

	switch {
	case last.Equal(day):
		return state, ActionNoChange
	case last.Equal(day.AddDate(0, 0, -1)):
		return user.StreakState{LastUpdate: stamp, Length: state.Length + 1}, ActionIncremented
	default:
		return user.StreakState{LastUpdate: stamp, Length: 1}, ActionReset
	}
}

// CalendarDay drops the clock part of t, keeping the date as seen in t's own
// location. The result is midnight UTC so dates compare with Equal.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(user.DateLayout, s, time.UTC)
}

// Clock yields the current time in the configured timezone.
type Clock func() time.Time

func LocalClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}
