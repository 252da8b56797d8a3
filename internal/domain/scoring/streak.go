package scoring

import "time"

// Streak is the consecutive-day state kept on a user.
type Streak struct {
	Current       int
	Longest       int
	LastWorkoutOn *time.Time
}

// Advance applies a workout on the UTC day containing at.
// Same day keeps the count, the next day extends it, any gap restarts at 1.
func (s Streak) Advance(at time.Time) Streak {
	day := truncateDay(at)
	next := s
	next.LastWorkoutOn = &day

	switch {
	case s.LastWorkoutOn == nil || s.Current == 0:
		next.Current = 1
	default:
		last := truncateDay(*s.LastWorkoutOn)
		switch gap := daysBetween(last, day); {
		case gap <= 0:
			// Same day, or a clock that moved backwards: nothing to extend.
			next.LastWorkoutOn = &last
		case gap == 1:
			next.Current = s.Current + 1
		default:
			next.Current = 1
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
