package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// StdoutIsTTY reports whether live rendering makes sense on stdout.
func StdoutIsTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Live renders a single repainted status line for one job at a time.
// Used in single-download mode on a TTY.
type Live struct {
	mu sync.Mutex
	w  io.Writer

	job     *JobStart
	done    int
	failed  int
	stop    chan struct{}
	stopped bool
}

func NewLive(w io.Writer) *Live {
	if w == nil {
		w = os.Stdout
	}
	return &Live{w: w, stop: make(chan struct{})}
}

// Start begins the repaint loop. Callers must eventually call Stop.
func (l *Live) Start() {
	go func() {
		t := time.NewTicker(200 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-t.C:
				l.mu.Lock()
				line := l.render()
				l.mu.Unlock()
				if line != "" {
					fmt.Fprintf(l.w, "\r\033[2K%s", line)
				}
			}
		}
	}()
}

// Stop ends the repaint loop, leaving the terminal on a fresh line.
func (l *Live) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.stop)
	fmt.Fprintf(l.w, "\r\033[2K")
}

func (l *Live) JobStarted(ev JobStart) {
	l.mu.Lock()
	defer l.mu.Unlock()
	job := ev
	l.job = &job
	l.done = 0
	l.failed = 0
}

func (l *Live) SegmentCompleted(ev SegmentEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.job == nil || l.job.JobID != ev.JobID {
		return
	}
	l.done++
	if !ev.OK {
		l.failed++
	}
}

func (l *Live) JobCompleted(ev JobEnd) {
	l.mu.Lock()
	line := l.render()
	l.job = nil
	l.mu.Unlock()

	if line != "" {
		fmt.Fprintf(l.w, "\r\033[2K%s\n", line)
	}
	switch {
	case ev.Message != "":
		fmt.Fprintf(l.w, "%s (%s)\n", ev.Status, ev.Message)
	case ev.OutputPath != "":
		fmt.Fprintf(l.w, "%s -> %s\n", ev.Status, ev.OutputPath)
	default:
		fmt.Fprintf(l.w, "%s\n", ev.Status)
	}
}

func (l *Live) render() string {
	if l.job == nil {
		return ""
	}
	title := truncate(l.job.Title, 52)

	parts := []string{fmt.Sprintf("[%d/%d] %s", l.job.Index, l.job.Total, l.job.Slug)}
	if l.job.Segments > 0 {
		pct := float64(l.done) / float64(l.job.Segments) * 100
		parts = append(parts, fmt.Sprintf("%d/%d segments (%.1f%%)", l.done, l.job.Segments, pct))
	}
	if l.failed > 0 {
		parts = append(parts, fmt.Sprintf("failed %d", l.failed))
	}
	parts = append(parts, "| "+title)
	return strings.Join(parts, "  ")
}
