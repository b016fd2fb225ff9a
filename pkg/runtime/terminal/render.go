package terminal

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/de-tools/weekly-pulse/pkg/adapters"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/runtime/terminal/commands"
	"github.com/de-tools/weekly-pulse/pkg/runtime/terminal/export"
	"github.com/de-tools/weekly-pulse/pkg/services/summary"
)

const (
	FormatText   = "text"
	FormatSheets = "sheets"
	FormatTable  = "table"
	FormatJSON   = "json"
)

var Formats = []string{FormatText, FormatSheets, FormatTable, FormatJSON}

// Renderer writes a WeeklyReport to the console in one of Formats
type Renderer struct {
	writer   io.Writer
	composer commands.Composer
}

func NewRenderer(writer io.Writer, composer commands.Composer) *Renderer {
	return &Renderer{writer: writer, composer: composer}
}

func (r *Renderer) Render(report *domain.WeeklyReport, format string) error {
	switch format {
	case FormatText, "":
		_, err := fmt.Fprintln(r.writer, report.Summary)
		return err
	case FormatSheets:
		out, err := r.composer.Compose(report, summary.FormatSheets)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.writer, out)
		return err
	case FormatTable:
		return export.NewReporter(r.writer).Handle(report)
	case FormatJSON:
		res, err := adapters.MapWeeklyReportDomainToApi(report)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("unsupported format %q, expected one of %v", format, Formats)
	}
}
