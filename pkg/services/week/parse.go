package week

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// Parse accepts "2025-W29", "2025W29" and "2025-29"
func Parse(s string) (domain.ISOWeek, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	var yearPart, weekPart string
	switch {
	case strings.Contains(s, "-W"):
		yearPart, weekPart, _ = strings.Cut(s, "-W")
	case strings.Contains(s, "W"):
		yearPart, weekPart, _ = strings.Cut(s, "W")
	case strings.Contains(s, "-"):
		yearPart, weekPart, _ = strings.Cut(s, "-")
	default:
		return domain.ISOWeek{}, fmt.Errorf("invalid week %q: expected YYYY-Www", s)
	}

	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return domain.ISOWeek{}, fmt.Errorf("invalid year in week %q: %w", s, err)
	}
	wk, err := strconv.Atoi(weekPart)
	if err != nil {
		return domain.ISOWeek{}, fmt.Errorf("invalid week number in week %q: %w", s, err)
	}

	w := domain.ISOWeek{Year: year, Week: wk}
	if err := Validate(w); err != nil {
		return domain.ISOWeek{}, err
	}
	return w, nil
}
