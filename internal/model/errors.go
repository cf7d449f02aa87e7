package model

import (
	"fmt"
	"net/http"
	"strings"
)

// FetchError covers transport failures, timeouts and non-2xx responses.
// Retryable only for segment fetches; manifest, playlist and key fetches
// abort the job on the first FetchError.
type FetchError struct {
	URL    string
	Status int // 0 when the request never produced a response
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth another attempt: transport
// errors, server-side errors and rate limiting qualify; other client errors
// do not.
func (e *FetchError) Retryable() bool {
	if e.Status == 0 {
		return true
	}
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// ParseError covers malformed pages, API payloads and playlists. Never
// retried.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoStreamError indicates the video manifest advertised no usable variant.
type NoStreamError struct {
	Slug string
}

func (e *NoStreamError) Error() string {
	return fmt.Sprintf("no usable stream for %s", e.Slug)
}

// InvalidKeyError indicates the fetched decryption key has the wrong length
// for the declared cipher.
type InvalidKeyError struct {
	URI    string
	Length int
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key from %s: got %d bytes, want 16", e.URI, e.Length)
}

// DecryptError indicates a segment's ciphertext could not be decrypted.
// Counted as a segment failure, not a job abort.
type DecryptError struct {
	Index int
	Err   error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt segment %d: %v", e.Index, e.Err)
}

func (e *DecryptError) Unwrap() error { return e.Err }

// IncompleteDownloadError is raised at assembly time when one or more
// segments is missing or failed. The job produces no output file.
type IncompleteDownloadError struct {
	Total  int
	Failed []int
}

func (e *IncompleteDownloadError) Error() string {
	shown := e.Failed
	const maxShown = 8
	suffix := ""
	if len(shown) > maxShown {
		suffix = fmt.Sprintf(" (+%d more)", len(shown)-maxShown)
		shown = shown[:maxShown]
	}
	parts := make([]string, len(shown))
	for i, idx := range shown {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return fmt.Sprintf("incomplete download: %d/%d segments failed: %s%s",
		len(e.Failed), e.Total, strings.Join(parts, ","), suffix)
}
