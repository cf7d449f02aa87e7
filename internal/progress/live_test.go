package progress

import (
	"io"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate_KeepsRuneBoundaries(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 24, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"abcdefghij", 8, "abcde..."},
		{strings.Repeat("あ", 10), 8, strings.Repeat("あ", 5) + "..."},
		{"日本語", 2, "日本"},
	}

	for _, tc := range cases {
		got := truncate(tc.in, tc.n)
		if got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%q, %d) produced invalid UTF-8: %q", tc.in, tc.n, got)
		}
	}
}

func TestLiveRender_TruncatesMultibyteTitle(t *testing.T) {
	l := NewLive(io.Discard)
	l.JobStarted(JobStart{
		JobID:    "job-1",
		Index:    1,
		Total:    1,
		Slug:     "example-1",
		Title:    strings.Repeat("め", 80),
		Segments: 10,
	})

	line := l.render()
	if !utf8.ValidString(line) {
		t.Fatalf("render produced invalid UTF-8: %q", line)
	}
	if !strings.Contains(line, "...") {
		t.Fatalf("expected truncated title in %q", line)
	}
}
