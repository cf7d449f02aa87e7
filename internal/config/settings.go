// Package config holds the persisted runtime settings. Precedence is
// command-line flag, then settings file, then built-in default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Lysagxra/HanimeDownloader/internal/fsutil"
)

const (
	DefaultWorkers        = 8
	DefaultRetries        = 5
	DefaultTimeoutSeconds = 30
	DefaultResolution     = "720p"
	DefaultDownloadDir    = "Downloads"
	DefaultParallelJobs   = 1
)

// Known quality labels, best first.
var knownResolutions = []string{"1080p", "720p", "480p", "360p"}

type Settings struct {
	Workers        int    `json:"workers,omitempty"`
	Retries        int    `json:"retries,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Resolution     string `json:"resolution,omitempty"`
	DownloadDir    string `json:"download_dir,omitempty"`
	ParallelJobs   int    `json:"parallel_jobs,omitempty"`
}

func Defaults() Settings {
	return Settings{
		Workers:        DefaultWorkers,
		Retries:        DefaultRetries,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Resolution:     DefaultResolution,
		DownloadDir:    DefaultDownloadDir,
		ParallelJobs:   DefaultParallelJobs,
	}
}

func Normalize(raw Settings) Settings {
	norm := raw
	if norm.Workers <= 0 {
		norm.Workers = DefaultWorkers
	}
	if norm.Retries <= 0 {
		norm.Retries = DefaultRetries
	}
	if norm.TimeoutSeconds <= 0 {
		norm.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if _, err := ParseResolution(norm.Resolution); err != nil {
		norm.Resolution = DefaultResolution
	}
	if strings.TrimSpace(norm.DownloadDir) == "" {
		norm.DownloadDir = DefaultDownloadDir
	}
	if norm.ParallelJobs <= 0 {
		norm.ParallelJobs = DefaultParallelJobs
	}
	return norm
}

// ParseResolution maps a quality label like "720p" to its pixel height.
func ParseResolution(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		v = DefaultResolution
	}
	for _, known := range knownResolutions {
		if v == known {
			height, _ := strconv.Atoi(strings.TrimSuffix(known, "p"))
			return height, nil
		}
	}
	return 0, fmt.Errorf("invalid resolution %q (expected one of %s)", raw, strings.Join(knownResolutions, ", "))
}

// DefaultSettingsPath is ~/.config/hanime-downloader/settings.json (or the
// platform equivalent).
func DefaultSettingsPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "hanime-downloader", "settings.json")
	}
	return filepath.Join(base, "hanime-downloader", "settings.json")
}

// Load reads the settings file; a missing file yields the defaults.
func Load(path string) (Settings, error) {
	var s Settings
	if err := fsutil.ReadJSON(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return Normalize(s), nil
}

func Save(path string, s Settings) error {
	return fsutil.WriteJSON(path, Normalize(s))
}
