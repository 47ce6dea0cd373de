// Package streak maintains the consecutive-day workout counters. Day
// comparison is calendar-day granularity in the time's own location, not
// elapsed hours: a 23:50 workout followed by a 00:10 workout counts as two
// consecutive days.
package streak

import (
	"time"

	"github.com/claude/hybridtrack/internal/models"
)

// Update applies one logging event at time now to the user's streak
// counters and returns the updated user. Rules:
//
//   - now on the same calendar day as the last workout: no change. Logging
//     several workouts in one day does not inflate the streak.
//   - now on the day after the last workout, or no prior workout: the
//     streak grows by one (a first-ever workout starts it at 1).
//   - a gap of two or more days: the streak resets to 1.
//
// LongestStreak tracks the maximum CurrentStreak has ever reached.
// Workouts are assumed to be logged as they happen; Update has no defined
// behavior for back-dated times earlier than the last workout beyond
// treating them as a gap.
func Update(user models.User, now time.Time) models.User {
	last := user.LastWorkoutDate

	if last != nil && sameDay(*last, now) {
		return user
	}

	if last == nil || nextDay(*last, now) {
		user.CurrentStreak++
	} else {
		user.CurrentStreak = 1
	}

	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}

	t := now
	user.LastWorkoutDate = &t
	return user
}

// midnight truncates t to the start of its calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return midnight(a).Equal(midnight(b.In(a.Location())))
}

// nextDay reports whether b falls on the calendar day immediately after a.
func nextDay(a, b time.Time) bool {
	return midnight(a).AddDate(0, 0, 1).Equal(midnight(b.In(a.Location())))
}
