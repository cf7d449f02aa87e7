// Package progress decouples the download pipeline from its display. The
// orchestrator emits events through the Observer interface; terminal
// renderers, log writers and tests supply implementations.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// JobStart announces a job whose playlist has been resolved.
type JobStart struct {
	JobID    string
	Index    int // 1-based position within the batch
	Total    int // batch size
	Slug     string
	Title    string
	Segments int
}

// SegmentEvent reports one segment's terminal outcome within a job.
type SegmentEvent struct {
	JobID string
	Index int
	OK    bool
}

// JobEnd reports a job's terminal outcome.
type JobEnd struct {
	JobID      string
	Status     string
	OutputPath string
	Message    string
}

type Observer interface {
	JobStarted(JobStart)
	SegmentCompleted(SegmentEvent)
	JobCompleted(JobEnd)
}

// Silent discards all events.
type Silent struct{}

func (Silent) JobStarted(JobStart) {}

func (Silent) SegmentCompleted(SegmentEvent) {}

func (Silent) JobCompleted(JobEnd) {}

// Logger prints one plain line per job event and a line per failed segment.
// Suitable for non-TTY output and --disable-ui runs.
type Logger struct {
	mu sync.Mutex
	w  io.Writer

	jobs map[string]*loggerJobState
}

type loggerJobState struct {
	start JobStart
	done  int
}

func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w, jobs: make(map[string]*loggerJobState)}
}

func (l *Logger) JobStarted(ev JobStart) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs[ev.JobID] = &loggerJobState{start: ev}
	fmt.Fprintf(l.w, "[%d/%d] %s: downloading %d segments\n", ev.Index, ev.Total, ev.Slug, ev.Segments)
}

func (l *Logger) SegmentCompleted(ev SegmentEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	state := l.jobs[ev.JobID]
	if state == nil {
		return
	}
	state.done++
	if !ev.OK {
		fmt.Fprintf(l.w, "[%d/%d] %s: segment %d failed\n", state.start.Index, state.start.Total, state.start.Slug, ev.Index)
		return
	}
	// Log a coarse milestone every 25% instead of one line per segment.
	if state.start.Segments >= 4 && state.done%(state.start.Segments/4) == 0 && state.done < state.start.Segments {
		fmt.Fprintf(l.w, "[%d/%d] %s: %d/%d segments\n", state.start.Index, state.start.Total, state.start.Slug, state.done, state.start.Segments)
	}
}

func (l *Logger) JobCompleted(ev JobEnd) {
	l.mu.Lock()
	defer l.mu.Unlock()
	state := l.jobs[ev.JobID]
	delete(l.jobs, ev.JobID)
	prefix := ""
	if state != nil {
		prefix = fmt.Sprintf("[%d/%d] %s: ", state.start.Index, state.start.Total, state.start.Slug)
	}
	switch {
	case ev.Message != "":
		fmt.Fprintf(l.w, "%s%s (%s)\n", prefix, ev.Status, ev.Message)
	case ev.OutputPath != "":
		fmt.Fprintf(l.w, "%s%s -> %s\n", prefix, ev.Status, ev.OutputPath)
	default:
		fmt.Fprintf(l.w, "%s%s\n", prefix, ev.Status)
	}
}
