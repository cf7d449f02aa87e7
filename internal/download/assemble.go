package download

import (
	"fmt"
	"os"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

// Assemble writes the ordered segment payloads to finalPath. Every index
// must carry a successful (non-nil) payload; otherwise the job fails with
// IncompleteDownloadError and nothing is left at finalPath. The bytes land
// in a sibling .partial file first and are renamed into place only after a
// clean close, so a crash mid-write never leaves a truncated output at the
// target path.
func Assemble(results [][]byte, finalPath string) error {
	var failed []int
	for i, data := range results {
		if data == nil {
			failed = append(failed, i)
		}
	}
	if len(failed) > 0 {
		return &model.IncompleteDownloadError{Total: len(results), Failed: failed}
	}

	partialPath := finalPath + ".partial"
	out, err := os.Create(partialPath)
	if err != nil {
		return fmt.Errorf("create partial file %s: %w", partialPath, err)
	}
	cleanup := func() {
		_ = os.Remove(partialPath)
	}

	for i, data := range results {
		if _, err := out.Write(data); err != nil {
			_ = out.Close()
			cleanup()
			return fmt.Errorf("write segment %d to %s: %w", i, partialPath, err)
		}
	}
	if err := out.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close partial file %s: %w", partialPath, err)
	}
	if err := os.Rename(partialPath, finalPath); err != nil {
		cleanup()
		return fmt.Errorf("finalize %s: %w", finalPath, err)
	}
	return nil
}
