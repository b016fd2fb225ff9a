package domain

import (
	"fmt"
	"time"
)

// DateLayout is the layout used for week labels and date ranges in reports
const DateLayout = "2006-01-02"

// ISOWeek identifies an ISO-8601 calendar week
type ISOWeek struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

func (w ISOWeek) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

// DateRange is an inclusive Monday..Sunday range
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

// Label is the date label upstream exports use to identify the week (its Monday)
func (r DateRange) Label() string {
	return r.Start.Format(DateLayout)
}

// YearEquivalent is the week used as the YoY comparison point for a target week.
// Substituted is set when the target week number does not exist in the prior year.
type YearEquivalent struct {
	Week        ISOWeek `json:"week"`
	Substituted bool    `json:"substituted"`
}
