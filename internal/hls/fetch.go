package hls

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

const (
	DefaultSegmentRetries = 5
	maxBackoff            = 30 * time.Second
)

// Fetcher downloads and, when a key is present, decrypts individual
// segments. Safe for concurrent use.
type Fetcher struct {
	httpClient *http.Client
	key        *EncryptionKey
	retries    int
	backoff    func(attempt int) time.Duration
}

func NewFetcher(httpClient *http.Client, key *EncryptionKey, retries int) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if retries <= 0 {
		retries = DefaultSegmentRetries
	}
	return &Fetcher{
		httpClient: httpClient,
		key:        key,
		retries:    retries,
		backoff:    defaultBackoff,
	}
}

// defaultBackoff grows exponentially with 1-3s of jitter, capped at 30s.
func defaultBackoff(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt+1))*time.Second +
		time.Duration(1000+rand.Intn(2000))*time.Millisecond
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}

// Fetch retrieves one segment's plaintext bytes, retrying transient fetch
// failures up to the configured budget. Decrypt failures are terminal.
func (f *Fetcher) Fetch(ctx context.Context, seg Segment) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &model.FetchError{URL: seg.URL, Err: ctx.Err()}
			case <-time.After(f.backoff(attempt - 1)):
			}
		}

		data, err := f.fetchOnce(ctx, seg)
		if err == nil {
			if f.key == nil {
				return data, nil
			}
			return f.key.Decrypt(seg, data)
		}

		lastErr = err
		var fe *model.FetchError
		if errors.As(err, &fe) && fe.Retryable() && ctx.Err() == nil {
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, seg Segment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, seg.URL, nil)
	if err != nil {
		return nil, &model.FetchError{URL: seg.URL, Err: err}
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: seg.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &model.FetchError{URL: seg.URL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.FetchError{URL: seg.URL, Err: err}
	}
	return data, nil
}
