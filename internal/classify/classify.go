package classify

import "time"

// Section is the time bucket a tab is displayed under and the input to
// archive eligibility.
type Section int

const (
	// All is a filter wildcard. Classify never returns it.
	All Section = iota
	Pinned
	Today
	Yesterday
	LastWeek
	LastMonth
	Older
)

func (s Section) String() string {
	switch s {
	case All:
		return "all"
	case Pinned:
		return "pinned"
	case Today:
		return "today"
	case Yesterday:
		return "yesterday"
	case LastWeek:
		return "last-week"
	case LastMonth:
		return "last-month"
	case Older:
		return "older"
	default:
		return "unknown"
	}
}

// Matches reports whether a tab classified as s passes the given filter.
// All matches every section.
func (s Section) Matches(filter Section) bool {
	return filter == All || filter == s
}

// Classify maps pin state and last-execution time to a section. Pinned wins
// unconditionally. Timestamps in the future (clock set forward then back)
// classify as Today so the tab does not vanish into Older.
//
// Pure function of its arguments; boundaries are local-calendar days.
func Classify(pinned bool, lastExecuted, now time.Time) Section {
	if pinned {
		return Pinned
	}

	day := startOfDay(lastExecuted)
	today := startOfDay(now)

	if !day.Before(today) {
		return Today
	}
	if day.Equal(today.AddDate(0, 0, -1)) {
		return Yesterday
	}
	if !day.Before(today.AddDate(0, 0, -7)) {
		return LastWeek
	}
	if !day.Before(today.AddDate(0, 0, -30)) {
		return LastMonth
	}
	return Older
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
