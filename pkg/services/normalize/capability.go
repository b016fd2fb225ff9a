package normalize

import "fmt"

// ComparisonCapability describes how a source delivers prior-year values
type ComparisonCapability string

const (
	// NativeComparison sources return current and previous values on the same row
	NativeComparison ComparisonCapability = "native"
	// ManualComparison sources export separate current-year and previous-year feeds
	// that must be aligned by date label
	ManualComparison ComparisonCapability = "manual"
)

func ParseCapability(s string) (ComparisonCapability, error) {
	switch c := ComparisonCapability(s); c {
	case NativeComparison, ManualComparison:
		return c, nil
	}
	return "", fmt.Errorf("unknown comparison capability %q", s)
}
