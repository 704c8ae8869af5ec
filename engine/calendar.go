package engine

// =============================================================================
// CALENDAR - 30-day months over an absolute day counter
// =============================================================================
//
// The game calendar is not calendar-accurate: every month has exactly 30
// days, days within a month are 1-indexed, months are 0-indexed.
//
//   day:    1 ... 30 | 31 ... 60 | 61 ...
//   month:  0        | 1         | 2
//   dom:    1 ... 30 | 1  ... 30 | 1  ...

const DaysPerMonth = 30

// DefaultPaydays are the day-of-month values on which the player is paid.
var DefaultPaydays = []int{1, 15}

// DayOfMonth returns the 1-based day within the month.
func DayOfMonth(d Day) int { return int(d-1)%DaysPerMonth + 1 }

// MonthIndex returns the zero-based month containing d.
func MonthIndex(d Day) int { return int(d-1) / DaysPerMonth }

// StartOfMonth returns the absolute day of day-of-month 1 in the given month.
func StartOfMonth(month int) Day { return Day(month*DaysPerMonth + 1) }

// DueDayAfter returns the first absolute day strictly after from whose
// day-of-month equals dom.
func DueDayAfter(dom int, from Day) Day {
	month := MonthIndex(from)
	if dom <= DayOfMonth(from) {
		month++
	}
	return StartOfMonth(month) + Day(dom-1)
}

// NextPayday returns the smallest day strictly after from that falls on one
// of the paydays. An empty payday list falls back to DefaultPaydays.
func NextPayday(from Day, paydays []int) Day {
	if len(paydays) == 0 {
		paydays = DefaultPaydays
	}
	next := Day(0)
	for _, p := range paydays {
		candidate := DueDayAfter(p, from)
		if next == 0 || candidate < next {
			next = candidate
		}
	}
	return next
}

// NextDueDate returns the nearest due date strictly after from among the
// accounts that still carry a balance, or from+30 when none do.
func NextDueDate(accounts []Account, from Day) Day {
	next := Day(0)
	for _, a := range accounts {
		if !a.HasBalance() {
			continue
		}
		candidate := DueDayAfter(a.DueDay, from)
		if next == 0 || candidate < next {
			next = candidate
		}
	}
	if next == 0 {
		return from + DaysPerMonth
	}
	return next
}

// DaysBetween returns to - from.
func DaysBetween(from, to Day) int { return int(to - from) }
