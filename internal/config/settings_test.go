package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s != Defaults() {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestSaveLoad_RoundTripsNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := Save(path, Settings{Workers: 4, Resolution: "1080p", ParallelJobs: -2}); err != nil {
		t.Fatalf("save: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Workers != 4 || s.Resolution != "1080p" {
		t.Fatalf("unexpected settings: %+v", s)
	}
	if s.ParallelJobs != DefaultParallelJobs || s.Retries != DefaultRetries {
		t.Fatalf("expected normalized defaults: %+v", s)
	}
}

func TestParseResolution(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"720p", 720, false},
		{"1080P", 1080, false},
		{"  480p ", 480, false},
		{"", 720, false},
		{"4k", 0, true},
		{"720", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseResolution(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseResolution(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseResolution(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseResolution(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
