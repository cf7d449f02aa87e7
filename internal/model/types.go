package model

// BatchReport is the canonical per-batch outcome file, written to the
// download root after every batch run.
type BatchReport struct {
	SchemaVersion int    `json:"schema_version"`
	GeneratedAt   string `json:"generated_at"`
	Total         int    `json:"total"`
	Completed     int    `json:"completed"`
	Failed        int    `json:"failed"`
	Jobs          []Job  `json:"jobs"`
}

type Job struct {
	JobID          string `json:"job_id"`
	Index          int    `json:"index"`
	URL            string `json:"url"`
	Slug           string `json:"slug,omitempty"`
	Title          string `json:"title,omitempty"`
	Status         string `json:"status"`
	OutputPath     string `json:"output_path,omitempty"`
	Segments       int    `json:"segments,omitempty"`
	FailedSegments int    `json:"failed_segments,omitempty"`
	LastError      string `json:"last_error,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	CompletedAt    string `json:"completed_at,omitempty"`
}
