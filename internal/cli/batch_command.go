package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/Lysagxra/HanimeDownloader/internal/fsutil"
)

const defaultURLsFile = "URLs.txt"

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	var rf runtimeFlags
	rf.register(fs)
	file := fs.String("file", defaultURLsFile, "text file with one episode URL per line")
	parallel := fs.Int("parallel", 0, "jobs downloading at the same time")
	keepFile := fs.Bool("keep-file", false, "do not clear the URL file after the run")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("usage: hanime-downloader batch [flags]")
	}

	settings, err := rf.resolved()
	if err != nil {
		return err
	}
	parallelJobs := settings.ParallelJobs
	if *parallel > 0 {
		parallelJobs = *parallel
	}

	urls, err := fsutil.ReadURLFile(*file)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", *file)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	report, err := runJobs(ctx, cancel, settings, urls, parallelJobs, rf.disableUI)
	if err != nil {
		return err
	}

	reportPath := filepath.Join(settings.DownloadDir, "report.json")
	if err := fsutil.WriteJSON(reportPath, report); err != nil {
		return err
	}
	if !rf.jsonOut {
		fmt.Println("report written to", reportPath)
	}

	// Clear the URL file once the batch has run, so re-running does not
	// repeat finished downloads. Interrupted runs keep their list.
	if !*keepFile && ctx.Err() == nil {
		if err := fsutil.TruncateFile(*file); err != nil {
			return err
		}
	}

	return reportOutcome(report, rf.jsonOut)
}
