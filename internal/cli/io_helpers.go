package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderReportTable renders the batch summary the human-readable way.
func renderReportTable(report model.BatchReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Slug", "Status", "Segments", "Output / Error"})

	for _, job := range report.Jobs {
		detail := job.OutputPath
		if job.Status != model.StatusCompleted {
			detail = job.LastError
		}
		name := job.Slug
		if name == "" {
			name = job.URL
		}
		tw.AppendRow(table.Row{job.Index + 1, name, job.Status, job.Segments, detail})
	}
	tw.AppendFooter(table.Row{"", "", "total", report.Total, fmt.Sprintf("%d completed, %d failed", report.Completed, report.Failed)})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}
