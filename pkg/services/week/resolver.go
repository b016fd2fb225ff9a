package week

import (
	"time"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// WeeksInYear returns 52 or 53. December 28th always falls in the last ISO week.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// Validate checks the week number against the ISO range of its year
func Validate(w domain.ISOWeek) error {
	max := WeeksInYear(w.Year)
	if w.Week < 1 || w.Week > max {
		return &domain.InvalidWeekError{Year: w.Year, Week: w.Week, MaxWeek: max}
	}
	return nil
}

// Resolve returns the Monday..Sunday range of an ISO week, in UTC
func Resolve(year, week int) (domain.DateRange, error) {
	if err := Validate(domain.ISOWeek{Year: year, Week: week}); err != nil {
		return domain.DateRange{}, err
	}

	// January 4th is always in week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	return domain.DateRange{
		Start: monday,
		End:   monday.AddDate(0, 0, 6),
	}, nil
}

// Of returns the ISO week containing t
func Of(t time.Time) domain.ISOWeek {
	y, w := t.ISOWeek()
	return domain.ISOWeek{Year: y, Week: w}
}

// PreviousYearEquivalent returns the same week number one year earlier.
// Week 53 falls back to week 52 when the prior year has no week 53.
func PreviousYearEquivalent(w domain.ISOWeek) domain.YearEquivalent {
	prev := domain.ISOWeek{Year: w.Year - 1, Week: w.Week}
	if max := WeeksInYear(prev.Year); prev.Week > max {
		return domain.YearEquivalent{
			Week:        domain.ISOWeek{Year: prev.Year, Week: max},
			Substituted: true,
		}
	}
	return domain.YearEquivalent{Week: prev}
}

// Previous returns the ISO week immediately before w
func Previous(w domain.ISOWeek) (domain.ISOWeek, error) {
	r, err := Resolve(w.Year, w.Week)
	if err != nil {
		return domain.ISOWeek{}, err
	}
	return Of(r.Start.AddDate(0, 0, -7)), nil
}

// CurrentWeek resolves the last full week: the week before the one containing now
func CurrentWeek(now time.Time) domain.ISOWeek {
	return Of(now.AddDate(0, 0, -7))
}

// ResolveTarget returns the requested week, or CurrentWeek(now) when none is given
func ResolveTarget(requested *domain.ISOWeek, now time.Time) (domain.ISOWeek, error) {
	if requested == nil {
		return CurrentWeek(now), nil
	}
	if err := Validate(*requested); err != nil {
		return domain.ISOWeek{}, err
	}
	return *requested, nil
}
