package summary

import (
	"testing"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name string
		n    domain.Number
		kind domain.MetricKind
		want string
	}{
		{"volume decline", domain.Some(-5.6717), domain.KindVolume, "-5.7%"},
		{"volume growth", domain.Some(12.04), domain.KindVolume, "+12.0%"},
		{"ratio", domain.Some(3.333), domain.KindRatio, "+3.3%"},
		{"rate plural", domain.Some(2), domain.KindRate, "+2.0 ppts"},
		{"rate singular", domain.Some(-1), domain.KindRate, "-1.0 ppt"},
		{"rate rounding to singular", domain.Some(0.96), domain.KindRate, "+1.0 ppt"},
		{"rate fraction", domain.Some(-0.34), domain.KindRate, "-0.3 ppts"},
		{"zero", domain.Some(0.01), domain.KindVolume, "+0.0%"},
		{"negative zero", domain.Some(-0.04), domain.KindVolume, "+0.0%"},
		{"zero rate", domain.Some(0), domain.KindRate, "+0.0 ppts"},
		{"large", domain.Some(1234.56), domain.KindVolume, "+1,234.6%"},
		{"absent", domain.None(), domain.KindVolume, NoData},
		{"absent rate", domain.None(), domain.KindRate, NoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDelta(tt.n, tt.kind))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "203,269.0", FormatValue(domain.Some(203269), domain.KindVolume))
	assert.Equal(t, "3.4%", FormatValue(domain.Some(3.44), domain.KindRate))
	assert.Equal(t, "1.5", FormatValue(domain.Some(1.46), domain.KindRatio))
	assert.Equal(t, "0.0", FormatValue(domain.Some(0), domain.KindVolume))
	assert.Equal(t, NoData, FormatValue(domain.None(), domain.KindVolume))
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "-565.0", FormatSigned(domain.Some(-565)))
	assert.Equal(t, "+1,200.0", FormatSigned(domain.Some(1200)))
	assert.Equal(t, NoData, FormatSigned(domain.None()))
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "Session Conversion", MetricTitle("session_conversion"))
	assert.Equal(t, "Sessions", MetricTitle("sessions"))
	assert.Equal(t, "Combined", PlatformTitle(domain.PlatformCombined))
}
