package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lysagxra/HanimeDownloader/internal/fsutil"
	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

// newAPIFixture serves the video API plus plaintext playlists and segments
// for the given slugs; unknown slugs 404.
func newAPIFixture(t *testing.T, slugs map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/video", func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("id")
		title, ok := slugs[slug]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{
  "hentai_video": {"name": "%s", "slug": "%s"},
  "hentai_franchise": {"title": "%s"},
  "videos_manifest": {"servers": [{"streams": [
    {"height": "720", "url": "%s/%s/index.m3u8"}
  ]}]}
}`, title, slug, title, srv.URL, slug)
	})

	for slug := range slugs {
		slug := slug
		mux.HandleFunc("/"+slug+"/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXTINF:4.0,\nseg0.ts\n#EXTINF:4.0,\nseg1.ts\n#EXT-X-ENDLIST\n")
		})
		mux.HandleFunc("/"+slug+"/seg0.ts", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "%s-part0|", slug)
		})
		mux.HandleFunc("/"+slug+"/seg1.ts", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "%s-part1", slug)
		})
	}
	return srv
}

func writeSettings(t *testing.T, dir, downloadDir string) string {
	t.Helper()
	path := filepath.Join(dir, "settings.json")
	if err := fsutil.WriteJSON(path, map[string]any{
		"workers":      2,
		"retries":      2,
		"resolution":   "720p",
		"download_dir": downloadDir,
	}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHarnessDownloadSingleEpisode(t *testing.T) {
	srv := newAPIFixture(t, map[string]string{"example-1": "Example"})
	t.Setenv("HANIME_API_URL", srv.URL)

	tmp := t.TempDir()
	downloadDir := filepath.Join(tmp, "media")
	settingsPath := writeSettings(t, tmp, downloadDir)

	err := Run([]string{
		"download",
		"--settings", settingsPath,
		"--disable-ui",
		"https://hanime.tv/videos/hentai/example-1",
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	out := filepath.Join(downloadDir, "Example", "example-1-720p.mp4")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("missing output: %v", err)
	}
	if string(data) != "example-1-part0|example-1-part1" {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestHarnessBatchReportsPerURLOutcomes(t *testing.T) {
	srv := newAPIFixture(t, map[string]string{
		"alpha-1": "Alpha",
		"beta-1":  "Beta",
	})
	t.Setenv("HANIME_API_URL", srv.URL)

	tmp := t.TempDir()
	downloadDir := filepath.Join(tmp, "media")
	settingsPath := writeSettings(t, tmp, downloadDir)

	urlsFile := filepath.Join(tmp, "URLs.txt")
	urls := "https://hanime.tv/videos/hentai/alpha-1\n" +
		"https://hanime.tv/videos/hentai/missing-1\n" +
		"https://hanime.tv/videos/hentai/beta-1\n"
	if err := os.WriteFile(urlsFile, []byte(urls), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Run([]string{
		"batch",
		"--settings", settingsPath,
		"--file", urlsFile,
		"--disable-ui",
	})
	if err == nil {
		t.Fatalf("expected batch to report the failed job")
	}

	var report model.BatchReport
	if err := fsutil.ReadJSON(filepath.Join(downloadDir, "report.json"), &report); err != nil {
		t.Fatalf("read report: %v", err)
	}
	if report.Total != 3 || report.Completed != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report counts: %+v", report)
	}

	for _, slug := range []string{"alpha-1", "beta-1"} {
		title := map[string]string{"alpha-1": "Alpha", "beta-1": "Beta"}[slug]
		out := filepath.Join(downloadDir, title, slug+"-720p.mp4")
		if _, err := os.Stat(out); err != nil {
			t.Fatalf("missing output for %s: %v", slug, err)
		}
	}

	// The failed job must leave nothing behind at its target path.
	if _, err := os.Stat(filepath.Join(downloadDir, "missing-1")); !os.IsNotExist(err) {
		t.Fatalf("failed job left output artifacts")
	}

	// The URL file is cleared after a completed batch run.
	data, err := os.ReadFile(urlsFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatalf("expected URL file to be cleared, got %q", data)
	}
}

func TestHarnessSettingsShowAndSet(t *testing.T) {
	tmp := t.TempDir()
	settingsPath := filepath.Join(tmp, "settings.json")

	if err := Run([]string{"settings", "set", "--settings", settingsPath, "--workers", "12", "--resolution", "1080p"}); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	if err := Run([]string{"settings", "show", "--settings", settingsPath}); err != nil {
		t.Fatalf("settings show: %v", err)
	}

	var got map[string]any
	if err := fsutil.ReadJSON(settingsPath, &got); err != nil {
		t.Fatal(err)
	}
	if got["workers"].(float64) != 12 || got["resolution"].(string) != "1080p" {
		t.Fatalf("unexpected persisted settings: %v", got)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := Run([]string{"frobnicate"}); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}
