package download

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

func TestAssemble_ConcatenatesInIndexOrder(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "out.mp4")

	// Payloads are indexed; arrival order is irrelevant because the buffer
	// is addressed by segment index.
	results := [][]byte{
		[]byte("segment-0|"),
		[]byte("segment-1|"),
		[]byte("segment-2"),
	}

	if err := Assemble(results, finalPath); err != nil {
		t.Fatalf("assemble: %v", err)
	}

	data, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := []byte("segment-0|segment-1|segment-2")
	if !bytes.Equal(data, want) {
		t.Fatalf("output mismatch: %q", data)
	}

	if _, err := os.Stat(finalPath + ".partial"); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind")
	}
}

func TestAssemble_MissingSegmentProducesNoOutput(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "out.mp4")

	results := [][]byte{
		[]byte("segment-0"),
		nil, // failed
		[]byte("segment-2"),
	}

	err := Assemble(results, finalPath)
	var ide *model.IncompleteDownloadError
	if !errors.As(err, &ide) {
		t.Fatalf("expected IncompleteDownloadError, got %v", err)
	}
	if ide.Total != 3 || len(ide.Failed) != 1 || ide.Failed[0] != 1 {
		t.Fatalf("unexpected error detail: %+v", ide)
	}

	if _, err := os.Stat(finalPath); !os.IsNotExist(err) {
		t.Fatalf("no output file may exist at the target path")
	}
	if _, err := os.Stat(finalPath + ".partial"); !os.IsNotExist(err) {
		t.Fatalf("no partial file may exist after failure")
	}
}

func TestAssemble_EmptySegmentIsValid(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "out.mp4")

	results := [][]byte{
		[]byte("a"),
		{}, // zero-length but successful
		[]byte("b"),
	}

	if err := Assemble(results, finalPath); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	data, err := os.ReadFile(finalPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ab" {
		t.Fatalf("unexpected output %q", data)
	}
}
