package reports

import (
	"time"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

// Params carries the period filters of a report request.
type Params struct {
	Month int
	Year  int
	Start core.Date
	End   core.Date
}

// DefaultParams is the period used when a request names none: the current
// month and year, and the range from January 1st to today.
func DefaultParams(now time.Time) Params {
	today := core.DateOf(now)
	return Params{
		Month: today.Month(),
		Year:  today.Year(),
		Start: core.NewDate(today.Year(), 1, 1),
		End:   today,
	}
}
