// Package download orchestrates the episode pipeline: resolve the stream
// manifest, parse the playlist, resolve the key, fan out segment fetches on
// a bounded worker pool and assemble the plaintext segments in order.
package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Lysagxra/HanimeDownloader/internal/fsutil"
	"github.com/Lysagxra/HanimeDownloader/internal/hanime"
	"github.com/Lysagxra/HanimeDownloader/internal/hls"
	"github.com/Lysagxra/HanimeDownloader/internal/model"
	"github.com/Lysagxra/HanimeDownloader/internal/progress"
)

const (
	DefaultWorkers = 8
	DefaultTimeout = 30 * time.Second
)

type Options struct {
	HTTPClient   *http.Client
	APIBaseURL   string
	Workers      int
	Retries      int
	Resolution   int // wanted variant height, e.g. 720
	DownloadRoot string
	Observer     progress.Observer
}

// Runner executes download jobs. Safe for concurrent RunJob calls; each job
// owns its playlist, key and result buffer.
type Runner struct {
	opts     Options
	resolver *hanime.Client
	loader   *hls.Loader
	observer progress.Observer
}

func NewRunner(opts Options) *Runner {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Retries <= 0 {
		opts.Retries = hls.DefaultSegmentRetries
	}
	if opts.DownloadRoot == "" {
		opts.DownloadRoot = "Downloads"
	}
	observer := opts.Observer
	if observer == nil {
		observer = progress.Silent{}
	}
	return &Runner{
		opts:     opts,
		resolver: hanime.NewClient(opts.HTTPClient, opts.APIBaseURL),
		loader:   hls.NewLoader(opts.HTTPClient),
		observer: observer,
	}
}

// ExpandEpisodes resolves a page URL and returns the page URLs of every
// episode in its franchise, in site order.
func (r *Runner) ExpandEpisodes(ctx context.Context, pageURL string) ([]string, error) {
	slug, err := hanime.SlugFromURL(pageURL)
	if err != nil {
		return nil, err
	}
	desc, err := r.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(desc.Episodes) == 0 {
		return []string{pageURL}, nil
	}
	urls := make([]string, 0, len(desc.Episodes))
	for _, ep := range desc.Episodes {
		urls = append(urls, hanime.PageURL(ep.Slug))
	}
	return urls, nil
}

// RunJob drives one job to a terminal status, recording the outcome on the
// job record. The returned error is the job's failure reason; sibling jobs
// in a batch are unaffected.
func (r *Runner) RunJob(ctx context.Context, job *model.Job, batchTotal int) error {
	job.StartedAt = time.Now().UTC().Format(time.RFC3339)
	if err := r.runJob(ctx, job, batchTotal); err != nil {
		_ = model.TransitionJobStatus(job, model.StatusFailed)
		job.LastError = err.Error()
		job.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		r.observer.JobCompleted(progress.JobEnd{
			JobID:   job.JobID,
			Status:  model.StatusFailed,
			Message: err.Error(),
		})
		return err
	}
	job.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	return nil
}

func (r *Runner) runJob(ctx context.Context, job *model.Job, batchTotal int) error {
	if err := model.TransitionJobStatus(job, model.StatusResolving); err != nil {
		return err
	}

	slug, err := hanime.SlugFromURL(job.URL)
	if err != nil {
		return err
	}
	job.Slug = slug

	desc, err := r.resolver.Resolve(ctx, slug)
	if err != nil {
		return err
	}
	job.Slug = desc.Slug
	job.Title = desc.Title

	variant, err := hanime.SelectVariant(desc, r.opts.Resolution)
	if err != nil {
		return err
	}

	outDir := filepath.Join(r.opts.DownloadRoot, fsutil.SanitizeName(desc.Title))
	if err := fsutil.Mkdir(outDir); err != nil {
		return err
	}
	filename := fmt.Sprintf("%s-%dp.mp4", desc.Slug, variant.Height)
	finalPath := filepath.Join(outDir, filename)
	job.OutputPath = finalPath

	if info, err := os.Stat(finalPath); err == nil && info.Size() > 0 {
		// Already downloaded in a previous run.
		_ = model.TransitionJobStatus(job, model.StatusDownloading)
		_ = model.TransitionJobStatus(job, model.StatusAssembling)
		if err := model.TransitionJobStatus(job, model.StatusCompleted); err != nil {
			return err
		}
		r.observer.JobCompleted(progress.JobEnd{
			JobID:      job.JobID,
			Status:     model.StatusCompleted,
			OutputPath: finalPath,
			Message:    "already downloaded",
		})
		return nil
	}

	lock, err := fsutil.AcquireFileLock(outDir, filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	playlist, err := r.loader.Load(ctx, variant.URL)
	if err != nil {
		return err
	}

	var key *hls.EncryptionKey
	if playlist.Encryption != nil {
		key, err = hls.ResolveKey(ctx, r.opts.HTTPClient, playlist.Encryption)
		if err != nil {
			return err
		}
	}

	if err := model.TransitionJobStatus(job, model.StatusDownloading); err != nil {
		return err
	}
	job.Segments = len(playlist.Segments)
	r.observer.JobStarted(progress.JobStart{
		JobID:    job.JobID,
		Index:    job.Index + 1,
		Total:    batchTotal,
		Slug:     job.Slug,
		Title:    job.Title,
		Segments: len(playlist.Segments),
	})

	results, failedCount := r.fetchSegments(ctx, job.JobID, playlist, key)
	job.FailedSegments = failedCount

	if err := model.TransitionJobStatus(job, model.StatusAssembling); err != nil {
		return err
	}
	if err := Assemble(results, finalPath); err != nil {
		return err
	}

	if err := model.TransitionJobStatus(job, model.StatusCompleted); err != nil {
		return err
	}
	r.observer.JobCompleted(progress.JobEnd{
		JobID:      job.JobID,
		Status:     model.StatusCompleted,
		OutputPath: finalPath,
	})
	return nil
}

// fetchSegments fans the playlist out over the worker pool. Each segment is
// dispatched exactly once; retries happen inside the fetcher. Workers write
// to disjoint indices of the result buffer; the mutex makes the writes safe
// under the race detector and guards the failure counter.
func (r *Runner) fetchSegments(ctx context.Context, jobID string, playlist *hls.MediaPlaylist, key *hls.EncryptionKey) ([][]byte, int) {
	fetcher := hls.NewFetcher(r.opts.HTTPClient, key, r.opts.Retries)
	results := make([][]byte, len(playlist.Segments))

	segCh := make(chan hls.Segment)
	var mu sync.Mutex
	var failed int
	var wg sync.WaitGroup

	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seg := range segCh {
				data, err := fetcher.Fetch(ctx, seg)
				if err == nil && data == nil {
					data = []byte{}
				}

				mu.Lock()
				if err != nil {
					failed++
				} else {
					results[seg.Index] = data
				}
				mu.Unlock()

				r.observer.SegmentCompleted(progress.SegmentEvent{
					JobID: jobID,
					Index: seg.Index,
					OK:    err == nil,
				})
			}
		}()
	}

	for _, seg := range playlist.Segments {
		segCh <- seg
	}
	close(segCh)
	wg.Wait()

	return results, failed
}
