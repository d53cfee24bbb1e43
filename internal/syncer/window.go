package syncer

import (
	"fmt"
	"time"
)

const (
	monthLayout = "2006-01"
	dateFormat  = "2006-01-02"
)

// Window is the inclusive date range of a sync run. Only the calendar
// dates matter downstream; the bank API receives YYYY-MM-DD.
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow picks the run's date range. A positive days wins: the
// last days calendar days ending at now. Otherwise month ("2006-01",
// empty meaning now's month) selects the first through last calendar
// day of that month at UTC midnight.
func ResolveWindow(days int, month string, now time.Time) (Window, error) {
	if days > 0 {
		return Window{Start: now.AddDate(0, 0, -days), End: now}, nil
	}

	if month == "" {
		month = now.UTC().Format(monthLayout)
	}
	m, err := time.ParseInLocation(monthLayout, month, time.UTC)
	if err != nil {
		return Window{}, fmt.Errorf("parsing month %q: %w", month, err)
	}

	start := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Window{Start: start, End: end}, nil
}
