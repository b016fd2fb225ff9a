package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/summary"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
	DeltaWidth int
	TrendWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  24,
		ValueWidth: 16,
		DeltaWidth: 12,
		TrendWidth: 10,
	}
}

// Reporter renders a WeeklyReport as fixed-width console tables
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type metricRow struct {
	Platform string
	Current  string
	Previous string
	Delta    string
	Trend    string
}

type metricTable struct {
	Title string
	Error string
	Rows  []metricRow
}

type channelRow struct {
	Channel  string
	A        string
	B        string
	Diff     string
	DiffPct  string
	Category string
}

type reconciliationTable struct {
	Title    string
	SourceA  string
	SourceB  string
	Error    string
	Rows     []channelRow
	Insights []string

	Recommendations []string
}

type tableView struct {
	Week            string
	Range           string
	PreviousYear    string
	Metrics         []metricTable
	Reconciliations []reconciliationTable
	Executive       domain.ExecutiveSummary
}

func trendLabel(t domain.Trend) string {
	if t == "" {
		return string(domain.TrendNoData)
	}
	return string(t)
}

func buildTableView(r *domain.WeeklyReport) tableView {
	v := tableView{
		Week:         r.Week.String(),
		Range:        r.Range.String(),
		PreviousYear: r.PreviousYear.Week.String(),
		Executive:    r.Executive,
	}
	if r.PreviousYear.Substituted {
		v.PreviousYear += " (substituted)"
	}

	for _, m := range r.Metrics {
		t := metricTable{
			Title: fmt.Sprintf("%s (%s)", summary.MetricTitle(m.Metric), m.Source),
			Error: m.Error,
		}
		for _, p := range domain.Platforms {
			s, ok := m.Breakdown[p]
			if !ok {
				continue
			}
			t.Rows = append(t.Rows, metricRow{
				Platform: summary.PlatformTitle(p),
				Current:  summary.FormatValue(s.Current, m.Kind),
				Previous: summary.FormatValue(s.Previous, m.Kind),
				Delta:    summary.FormatDelta(s.YoYChange, m.Kind),
				Trend:    trendLabel(m.Trend[p]),
			})
		}
		v.Metrics = append(v.Metrics, t)
	}

	for _, rec := range r.Reconciliations {
		t := reconciliationTable{
			Title:    fmt.Sprintf("%s: %s vs %s", rec.Name, rec.SourceA, rec.SourceB),
			SourceA:  rec.SourceA,
			SourceB:  rec.SourceB,
			Error:    rec.Error,
			Insights: rec.Insights,

			Recommendations: rec.Recommendations,
		}
		rows := append(append([]domain.ReconciliationResult{}, rec.Channels...), rec.Total)
		for _, c := range rows {
			t.Rows = append(t.Rows, channelRow{
				Channel:  c.Channel,
				A:        summary.FormatNumber(c.SourceA),
				B:        summary.FormatNumber(c.SourceB),
				Diff:     summary.FormatSigned(c.Diff),
				DiffPct:  summary.FormatPercent(c.DiffPct),
				Category: string(c.Category),
			})
		}
		v.Reconciliations = append(v.Reconciliations, t)
	}
	return v
}

func (c *Reporter) Handle(report *domain.WeeklyReport) error {
	widths := []int{c.config.NameWidth, c.config.ValueWidth, c.config.ValueWidth, c.config.DeltaWidth, c.config.TrendWidth}
	channelWidths := []int{c.config.NameWidth, c.config.ValueWidth, c.config.ValueWidth, c.config.ValueWidth, c.config.DeltaWidth}

	row := func(widths []int, cells ...string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, cell := range cells {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		return b.String()
	}
	separator := func(widths []int) string {
		var b strings.Builder
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteString("+")
		}
		return b.String()
	}

	funcMap := template.FuncMap{
		"formatRow": func(platform, current, previous, delta, trend string) string {
			return row(widths, platform, current, previous, delta, trend)
		},
		"separator": func() string {
			return separator(widths)
		},
		"formatChannel": func(channel, a, b, diff, pct string) string {
			return row(channelWidths, channel, a, b, diff, pct)
		},
		"channelSeparator": func() string {
			return separator(channelWidths)
		},
	}

	tmpl := `
Weekly Report {{.Week}} ({{.Range}})
Compared with: {{.PreviousYear}}
{{range .Metrics}}
=== {{.Title}} ===
{{if .Error}}computation failed: {{.Error}}
{{else}}{{separator}}
{{formatRow "Platform" "This Year" "Last Year" "YoY" "Trend"}}
{{separator}}
{{range .Rows}}{{formatRow .Platform .Current .Previous .Delta .Trend}}
{{end}}{{separator}}
{{end}}{{end}}{{range .Reconciliations}}
=== {{.Title}} ===
{{if .Error}}reconciliation failed: {{.Error}}
{{else}}{{channelSeparator}}
{{formatChannel "Channel" .SourceA .SourceB "Diff" "% Diff"}}
{{channelSeparator}}
{{range .Rows}}{{formatChannel .Channel .A .B .Diff .DiffPct}}
{{end}}{{channelSeparator}}
{{range .Insights}}- {{.}}
{{end}}{{range .Recommendations}}* {{.}}
{{end}}{{end}}{{end}}{{with .Executive}}{{if or .Insights .Actions}}
=== Key Insights ===
{{range .Insights}}- {{.}}
{{end}}{{range .Actions}}* {{.}}
{{end}}{{end}}{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, buildTableView(report))
}
