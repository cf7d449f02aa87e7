package download

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

// RunBatch runs one job per URL under a job-level concurrency ceiling. Jobs
// are independent: a failed job never halts its siblings, and every URL gets
// exactly one job record in the report.
func (r *Runner) RunBatch(ctx context.Context, urls []string, parallelJobs int) model.BatchReport {
	if parallelJobs <= 0 {
		parallelJobs = 1
	}
	if parallelJobs > len(urls) {
		parallelJobs = len(urls)
	}

	jobs := make([]model.Job, len(urls))
	for i, url := range urls {
		jobs[i] = model.Job{
			JobID:  uuid.NewString(),
			Index:  i,
			URL:    url,
			Status: model.StatusPending,
		}
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < parallelJobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				_ = r.RunJob(ctx, &jobs[i], len(jobs))
			}
		}()
	}
	for i := range jobs {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	report := model.BatchReport{
		SchemaVersion: 1,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Total:         len(jobs),
		Jobs:          jobs,
	}
	for _, job := range jobs {
		switch job.Status {
		case model.StatusCompleted:
			report.Completed++
		default:
			report.Failed++
		}
	}
	return report
}
