package cli

import (
	"flag"

	"github.com/Lysagxra/HanimeDownloader/internal/config"
)

// runtimeFlags are the knobs shared by download and batch. Zero values mean
// "not set on the command line"; the settings file fills the gaps.
type runtimeFlags struct {
	settingsPath string
	workers      int
	retries      int
	timeout      int
	resolution   string
	customPath   string
	disableUI    bool
	jsonOut      bool
}

func (rf *runtimeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&rf.settingsPath, "settings", config.DefaultSettingsPath(), "settings file path")
	fs.IntVar(&rf.workers, "workers", 0, "concurrent segment downloads per job")
	fs.IntVar(&rf.retries, "retries", 0, "retry budget per segment")
	fs.IntVar(&rf.timeout, "timeout", 0, "request timeout in seconds")
	fs.StringVar(&rf.resolution, "resolution", "", "preferred quality (360p, 480p, 720p, 1080p)")
	fs.StringVar(&rf.customPath, "custom-path", "", "download root directory override")
	fs.BoolVar(&rf.disableUI, "disable-ui", false, "plain log lines instead of live progress")
	fs.BoolVar(&rf.jsonOut, "json", false, "machine-readable output")
}

// resolved merges the settings file with any explicitly set flags.
func (rf *runtimeFlags) resolved() (config.Settings, error) {
	settings, err := config.Load(rf.settingsPath)
	if err != nil {
		return config.Settings{}, err
	}
	if rf.workers > 0 {
		settings.Workers = rf.workers
	}
	if rf.retries > 0 {
		settings.Retries = rf.retries
	}
	if rf.timeout > 0 {
		settings.TimeoutSeconds = rf.timeout
	}
	if rf.resolution != "" {
		if _, err := config.ParseResolution(rf.resolution); err != nil {
			return config.Settings{}, err
		}
		settings.Resolution = rf.resolution
	}
	if rf.customPath != "" {
		settings.DownloadDir = rf.customPath
	}
	return settings, nil
}
