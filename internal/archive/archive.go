package archive

import (
	"fmt"
	"time"

	"github.com/lotas/tabwart/internal/classify"
)

// Retention is the user-configured duration after which inactive tabs are
// archived.
type Retention int

const (
	Week Retention = iota
	Month
	Forever
)

func (r Retention) String() string {
	switch r {
	case Week:
		return "7d"
	case Month:
		return "30d"
	case Forever:
		return "forever"
	default:
		return "unknown"
	}
}

// ParseRetention parses the config representation of a retention setting.
func ParseRetention(s string) (Retention, error) {
	switch s {
	case "7d":
		return Week, nil
	case "30d":
		return Month, nil
	case "forever":
		return Forever, nil
	default:
		return Forever, fmt.Errorf("invalid retention %q (want 7d, 30d or forever)", s)
	}
}

// ShouldArchive decides whether a tab has aged out of the active set. The
// caller is responsible for the exemptions that are not a function of age:
// incognito tabs, the selected tab (exempted by refreshing its timestamp
// before this call) — pinned tabs fall out naturally via the classifier.
func ShouldArchive(pinned bool, lastExecuted, now time.Time, r Retention) bool {
	if r == Forever {
		return false
	}
	switch classify.Classify(pinned, lastExecuted, now) {
	case classify.Pinned, classify.Today, classify.Yesterday, classify.LastWeek:
		return false
	case classify.LastMonth:
		return r == Week
	default:
		return true
	}
}
