package summary

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/de-tools/weekly-pulse/pkg/models/domain"
)

// Format selects the summary layout
type Format string

const (
	// FormatText is the full executive summary
	FormatText Format = "text"
	// FormatSheets is one compact line per metric, suited to a spreadsheet cell
	FormatSheets Format = "sheets"
)

const textTemplate = `Week {{.Week.Week}}, {{.Week.Year}} ({{.Range}})
Compared with Week {{.PreviousYear.Week.Week}}, {{.PreviousYear.Week.Year}} ({{.PreviousRange}}){{if .PreviousYear.Substituted}}; week {{.Week.Week}} does not exist in {{.PreviousYear.Week.Year}}, week {{.PreviousYear.Week.Week}} used instead{{end}}
{{range .Metrics}}
{{.Title}} ({{.Source}})
{{- if .Error}}
- {{noData}} (computation failed: {{.Error}})
{{- else}}
{{- range .Platforms}}
- {{.Name}}: {{.Current}} vs {{.Previous}}, {{.Delta}} YoY; {{.Trend}}
{{- end}}
{{- end}}
{{end}}
{{- range .Reconciliations}}
Reconciliation: {{.Name}} ({{.SourceA}} vs {{.SourceB}})
{{- if .Error}}
- {{noData}} (reconciliation failed: {{.Error}})
{{- else}}
| Channel | {{.SourceA}} | {{.SourceB}} | Diff | % Diff |
{{- range .Rows}}
| {{.Channel}} | {{.A}} | {{.B}} | {{.Diff}} | {{.Pct}} |{{if .Unmatched}} unmatched{{end}}
{{- end}}
{{- range .Insights}}
- {{.}}
{{- end}}
{{- range .Recommendations}}
- Recommendation: {{.}}
{{- end}}
{{- end}}
{{end}}
{{- with .Executive}}{{if or .Insights .Actions}}
Key insights
{{- range .Insights}}
- {{.}}
{{- end}}
{{- range .Actions}}
- Action: {{.}}
{{- end}}
{{end}}{{end}}`

const sheetsTemplate = `Week {{.Week.Week}} ({{.Range}}):
{{- range .Metrics}}
{{.Title}}: {{if .Error}}{{noData}}{{else}}{{.Combined}} YoY{{end}}
{{- end}}
`

type platformView struct {
	Name     string
	Current  string
	Previous string
	Delta    string
	Trend    string
}

type metricView struct {
	Title     string
	Source    string
	Error     string
	Combined  string
	Platforms []platformView
}

type rowView struct {
	Channel   string
	A         string
	B         string
	Diff      string
	Pct       string
	Unmatched bool
}

type reconciliationView struct {
	Name     string
	SourceA  string
	SourceB  string
	Error    string
	Rows     []rowView
	Insights []string

	Recommendations []string
}

type reportView struct {
	Week            domain.ISOWeek
	Range           string
	PreviousYear    domain.YearEquivalent
	PreviousRange   string
	Metrics         []metricView
	Reconciliations []reconciliationView
	Executive       domain.ExecutiveSummary
}

// Composer renders a WeeklyReport into text
type Composer struct {
	text   *template.Template
	sheets *template.Template
}

func NewComposer() (*Composer, error) {
	funcs := template.FuncMap{
		"noData": func() string { return NoData },
	}
	text, err := template.New("summary").Funcs(funcs).Parse(textTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	sheets, err := template.New("sheets").Funcs(funcs).Parse(sheetsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Composer{text: text, sheets: sheets}, nil
}

// Compose renders the report. previousRange is the date range of the prior-year week.
func (c *Composer) Compose(report *domain.WeeklyReport, previousRange domain.DateRange, format Format) (string, error) {
	view := buildView(report, previousRange)

	tmpl := c.text
	if format == FormatSheets {
		tmpl = c.sheets
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func buildView(report *domain.WeeklyReport, previousRange domain.DateRange) reportView {
	view := reportView{
		Week:          report.Week,
		Range:         report.Range.String(),
		PreviousYear:  report.PreviousYear,
		PreviousRange: previousRange.String(),
		Executive:     report.Executive,
	}

	for _, m := range report.Metrics {
		mv := metricView{
			Title:    MetricTitle(m.Metric),
			Source:   m.Source,
			Error:    m.Error,
			Combined: NoData,
		}
		if combined, ok := m.Breakdown[domain.PlatformCombined]; ok {
			mv.Combined = FormatDelta(combined.YoYChange, m.Kind)
		}
		for _, p := range domain.Platforms {
			mv.Platforms = append(mv.Platforms, platformLine(m, p, report.BaselineWeek))
		}
		view.Metrics = append(view.Metrics, mv)
	}

	for _, rec := range report.Reconciliations {
		rv := reconciliationView{
			Name:     rec.Name,
			SourceA:  rec.SourceA,
			SourceB:  rec.SourceB,
			Error:    rec.Error,
			Insights: rec.Insights,

			Recommendations: rec.Recommendations,
		}
		rows := make([]domain.ReconciliationResult, 0, len(rec.Channels)+1)
		rows = append(rows, rec.Channels...)
		rows = append(rows, rec.Total)
		for _, r := range rows {
			rv.Rows = append(rv.Rows, rowView{
				Channel:   r.Channel,
				A:         FormatNumber(r.SourceA),
				B:         FormatNumber(r.SourceB),
				Diff:      FormatSigned(r.Diff),
				Pct:       FormatPercent(r.DiffPct),
				Unmatched: r.Unmatched,
			})
		}
		view.Reconciliations = append(view.Reconciliations, rv)
	}

	return view
}

func platformLine(m domain.MetricReport, p domain.Platform, baselineWeek domain.ISOWeek) platformView {
	pv := platformView{
		Name:     PlatformTitle(p),
		Current:  NoData,
		Previous: NoData,
		Delta:    NoData,
	}

	cur, ok := m.Breakdown[p]
	if ok {
		pv.Current = FormatValue(cur.Current, m.Kind)
		pv.Previous = FormatValue(cur.Previous, m.Kind)
		pv.Delta = FormatDelta(cur.YoYChange, m.Kind)
	}

	trend, hasTrend := m.Trend[p]
	base, hasBase := m.Baseline[p]
	if !ok || !hasTrend || !hasBase || trend == domain.TrendNoData {
		pv.Trend = fmt.Sprintf("YoY trend vs Week %d: %s", baselineWeek.Week, NoData)
		return pv
	}
	pv.Trend = fmt.Sprintf("YoY trend %s vs Week %d (%s)",
		trend, baselineWeek.Week, FormatDelta(base.YoYChange, m.Kind))
	return pv
}
