package cli

import (
	"strings"
	"testing"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

func TestRenderReportTable_FooterAlignsWithColumns(t *testing.T) {
	report := model.BatchReport{
		Total:     3,
		Completed: 2,
		Failed:    1,
		Jobs: []model.Job{
			{Index: 0, Slug: "alpha-1", Status: model.StatusCompleted, Segments: 12, OutputPath: "Downloads/Alpha/alpha-1-720p.mp4"},
			{Index: 1, Slug: "beta-1", Status: model.StatusCompleted, Segments: 8, OutputPath: "Downloads/Beta/beta-1-720p.mp4"},
			{Index: 2, URL: "https://hanime.tv/videos/hentai/gamma-1", Status: model.StatusFailed, LastError: "fetch failed"},
		},
	}

	rendered := strings.ToLower(renderReportTable(report))

	var footer string
	for _, line := range strings.Split(rendered, "\n") {
		if strings.Contains(line, "total") {
			footer = line
			break
		}
	}
	if footer == "" {
		t.Fatalf("no footer line in rendered table:\n%s", rendered)
	}

	// The job count follows the "total" label and sits in the segments
	// column, next to the completed/failed summary.
	labelPos := strings.Index(footer, "total")
	countPos := strings.Index(footer, "3")
	summaryPos := strings.Index(footer, "2 completed, 1 failed")
	if summaryPos < 0 {
		t.Fatalf("missing summary in footer %q", footer)
	}
	if !(labelPos < countPos && countPos < summaryPos) {
		t.Fatalf("footer cells out of order: %q", footer)
	}

	// Failed jobs without a slug fall back to their URL.
	if !strings.Contains(rendered, "gamma-1") {
		t.Fatalf("expected failed job URL in table:\n%s", rendered)
	}
}
