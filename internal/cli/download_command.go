package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/Lysagxra/HanimeDownloader/internal/download"
	"github.com/Lysagxra/HanimeDownloader/internal/progress"
)

func runDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	var rf runtimeFlags
	rf.register(fs)
	allEpisodes := fs.Bool("all-episodes", false, "download every episode of the URL's franchise")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: hanime-downloader download [flags] <url>")
	}
	pageURL := fs.Arg(0)

	settings, err := rf.resolved()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	urls := []string{pageURL}
	parallelJobs := 1
	if *allEpisodes {
		// Expansion is a metadata-only call; it runs silently before any
		// progress display starts.
		opts, err := newRunnerOptions(settings, progress.Silent{})
		if err != nil {
			return err
		}
		urls, err = download.NewRunner(opts).ExpandEpisodes(ctx, pageURL)
		if err != nil {
			return err
		}
		parallelJobs = settings.ParallelJobs
		if !rf.jsonOut {
			fmt.Printf("franchise has %d episodes\n", len(urls))
		}
	}

	report, err := runJobs(ctx, cancel, settings, urls, parallelJobs, rf.disableUI)
	if err != nil {
		return err
	}
	return reportOutcome(report, rf.jsonOut)
}
