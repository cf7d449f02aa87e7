package cli

import (
	"flag"
	"fmt"

	"github.com/Lysagxra/HanimeDownloader/internal/config"
)

func runSettings(args []string) error {
	sub := "show"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "show":
		return runSettingsShow(args)
	case "set":
		return runSettingsSet(args)
	default:
		return fmt.Errorf("unknown settings subcommand %q (expected show or set)", sub)
	}
}

func runSettingsShow(args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ContinueOnError)
	path := fs.String("settings", config.DefaultSettingsPath(), "settings file path")
	jsonOut := fs.Bool("json", false, "machine-readable output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(settings)
	}

	fmt.Println("settings file:", *path)
	fmt.Println("  workers:      ", settings.Workers)
	fmt.Println("  retries:      ", settings.Retries)
	fmt.Println("  timeout:      ", settings.TimeoutSeconds, "s")
	fmt.Println("  resolution:   ", settings.Resolution)
	fmt.Println("  download dir: ", settings.DownloadDir)
	fmt.Println("  parallel jobs:", settings.ParallelJobs)
	return nil
}

func runSettingsSet(args []string) error {
	fs := flag.NewFlagSet("settings set", flag.ContinueOnError)
	path := fs.String("settings", config.DefaultSettingsPath(), "settings file path")
	workers := fs.Int("workers", 0, "concurrent segment downloads per job")
	retries := fs.Int("retries", 0, "retry budget per segment")
	timeout := fs.Int("timeout", 0, "request timeout in seconds")
	resolution := fs.String("resolution", "", "preferred quality (360p, 480p, 720p, 1080p)")
	downloadDir := fs.String("download-dir", "", "download root directory")
	parallel := fs.Int("parallel", 0, "jobs downloading at the same time")
	jsonOut := fs.Bool("json", false, "machine-readable output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *workers > 0 {
		settings.Workers = *workers
	}
	if *retries > 0 {
		settings.Retries = *retries
	}
	if *timeout > 0 {
		settings.TimeoutSeconds = *timeout
	}
	if *resolution != "" {
		if _, err := config.ParseResolution(*resolution); err != nil {
			return err
		}
		settings.Resolution = *resolution
	}
	if *downloadDir != "" {
		settings.DownloadDir = *downloadDir
	}
	if *parallel > 0 {
		settings.ParallelJobs = *parallel
	}

	if err := config.Save(*path, settings); err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(settings)
	}
	fmt.Println("settings saved to", *path)
	return nil
}
