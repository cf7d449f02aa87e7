package model

import "fmt"

const (
	StatusPending     = "pending"
	StatusResolving   = "resolving"
	StatusDownloading = "downloading"
	StatusAssembling  = "assembling"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusPending: true,
	},
	StatusPending: {
		StatusPending:   true,
		StatusResolving: true,
		StatusFailed:    true,
	},
	StatusResolving: {
		StatusResolving:   true,
		StatusDownloading: true,
		StatusFailed:      true,
	},
	StatusDownloading: {
		StatusDownloading: true,
		StatusAssembling:  true,
		StatusFailed:      true,
	},
	StatusAssembling: {
		StatusAssembling: true,
		StatusCompleted:  true,
		StatusFailed:     true,
	},
	StatusCompleted: {
		StatusCompleted: true,
	},
	StatusFailed: {
		StatusFailed:  true,
		StatusPending: true, // explicit re-run of a failed URL
	},
}

func IsKnownStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionJobStatus(job *Job, toStatus string) error {
	from := job.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid job status transition: %q -> %q (job_id=%s url=%s)", from, toStatus, job.JobID, job.URL)
	}
	job.Status = toStatus
	return nil
}
