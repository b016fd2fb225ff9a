package summary

import (
	"math"
	"strings"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/yoy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoData is rendered wherever a value is absent or its computation failed
const NoData = "no data"

// printers and casers carry state and are created per call
func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

// FormatValue renders a metric value with one decimal place; rate values carry a % suffix
func FormatValue(n domain.Number, kind domain.MetricKind) string {
	if !n.Valid {
		return NoData
	}
	s := printer().Sprintf("%.1f", yoy.Round1(n.Value))
	if kind == domain.KindRate {
		s += "%"
	}
	return s
}

// FormatNumber renders a plain value with one decimal place
func FormatNumber(n domain.Number) string {
	return FormatValue(n, domain.KindVolume)
}

// FormatDelta renders a YoY delta with an explicit sign: "%" for relative deltas,
// "ppts" (or "ppt" for exactly one point) for rate deltas
func FormatDelta(n domain.Number, kind domain.MetricKind) string {
	if !n.Valid {
		return NoData
	}
	r := yoy.Round1(n.Value)
	s := signed(r)
	if kind != domain.KindRate {
		return s + "%"
	}
	if math.Abs(r) == 1 {
		return s + " ppt"
	}
	return s + " ppts"
}

// FormatPercent renders a relative difference such as a reconciliation diff_pct
func FormatPercent(n domain.Number) string {
	return FormatDelta(n, domain.KindVolume)
}

// FormatSigned renders an absolute difference with an explicit sign
func FormatSigned(n domain.Number) string {
	if !n.Valid {
		return NoData
	}
	return signed(yoy.Round1(n.Value))
}

func signed(r float64) string {
	switch {
	case r > 0:
		return printer().Sprintf("+%.1f", r)
	case r < 0:
		return printer().Sprintf("-%.1f", -r)
	default:
		return "+0.0"
	}
}

// MetricTitle turns a metric key such as session_conversion into "Session Conversion"
func MetricTitle(metric string) string {
	return title(strings.ReplaceAll(metric, "_", " "))
}

func PlatformTitle(p domain.Platform) string {
	return title(string(p))
}
