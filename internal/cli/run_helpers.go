package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Lysagxra/HanimeDownloader/internal/config"
	"github.com/Lysagxra/HanimeDownloader/internal/download"
	"github.com/Lysagxra/HanimeDownloader/internal/model"
	"github.com/Lysagxra/HanimeDownloader/internal/progress"
)

func newRunnerOptions(settings config.Settings, observer progress.Observer) (download.Options, error) {
	height, err := config.ParseResolution(settings.Resolution)
	if err != nil {
		return download.Options{}, err
	}
	return download.Options{
		HTTPClient: &http.Client{Timeout: time.Duration(settings.TimeoutSeconds) * time.Second},
		// Test harnesses point the resolver at a local server.
		APIBaseURL:   os.Getenv("HANIME_API_URL"),
		Workers:      settings.Workers,
		Retries:      settings.Retries,
		Resolution:   height,
		DownloadRoot: settings.DownloadDir,
		Observer:     observer,
	}, nil
}

// runJobs executes one job per URL with the display mode that fits the
// terminal: a live dashboard on a TTY, plain log lines otherwise.
func runJobs(ctx context.Context, cancel context.CancelFunc, settings config.Settings, urls []string, parallelJobs int, disableUI bool) (model.BatchReport, error) {
	useTUI := !disableUI && progress.StdoutIsTTY()

	var observer progress.Observer
	var dash *progress.Dashboard
	var live *progress.Live
	switch {
	case !useTUI:
		observer = progress.NewLogger(os.Stdout)
	case len(urls) == 1:
		live = progress.NewLive(os.Stdout)
		observer = live
	default:
		dash = progress.NewDashboard(cancel)
		observer = dash
	}

	opts, err := newRunnerOptions(settings, observer)
	if err != nil {
		return model.BatchReport{}, err
	}
	runner := download.NewRunner(opts)

	if dash != nil {
		var report model.BatchReport
		done := make(chan struct{})
		go func() {
			defer close(done)
			report = runner.RunBatch(ctx, urls, parallelJobs)
			dash.Finish()
		}()
		if err := dash.Run(); err != nil {
			// The terminal rejected the TUI; the batch still runs, so wait
			// for it without live rendering.
			fmt.Fprintln(os.Stderr, "progress UI unavailable:", err)
		}
		<-done
		return report, nil
	}

	if live != nil {
		live.Start()
		defer live.Stop()
	}
	return runner.RunBatch(ctx, urls, parallelJobs), nil
}

func reportOutcome(report model.BatchReport, jsonOut bool) error {
	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else if report.Total > 1 {
		fmt.Println(renderReportTable(report))
	} else if report.Total == 1 {
		job := report.Jobs[0]
		if job.Status == model.StatusCompleted {
			fmt.Printf("completed %s -> %s\n", job.Slug, job.OutputPath)
		} else {
			fmt.Printf("failed %s: %s\n", job.URL, job.LastError)
		}
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", report.Failed, report.Total)
	}
	return nil
}
