package pipeline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Observer is notified as the driver moves through the stages.
type Observer interface {
	StageStarted(name string, index, total int)
	StageFinished(report StageReport)
}

type multiObserver []Observer

func (m multiObserver) StageStarted(name string, index, total int) {
	for _, o := range m {
		o.StageStarted(name, index, total)
	}
}

func (m multiObserver) StageFinished(report StageReport) {
	for _, o := range m {
		o.StageFinished(report)
	}
}

// ConsoleObserver prints one line per stage transition.
type ConsoleObserver struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewConsoleObserver writes progress lines to w, or to stderr when w is nil.
func NewConsoleObserver(w io.Writer) *ConsoleObserver {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleObserver{writer: w}
}

func (c *ConsoleObserver) StageStarted(name string, index, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "[%d/%d] %s ...\n", index, total, name)
}

func (c *ConsoleObserver) StageFinished(r StageReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch r.Status {
	case StatusCompleted:
		_, _ = fmt.Fprintf(c.writer, "      %s done: %d processed, %d failed, %d warnings (%s)\n",
			r.Name, r.Result.Processed, r.Result.Failed, r.Result.Warnings, r.Result.Duration.Round(time.Millisecond))
	case StatusFailed:
		_, _ = fmt.Fprintf(c.writer, "      %s failed: %s\n", r.Name, r.Error)
	default:
		_, _ = fmt.Fprintf(c.writer, "      %s %s\n", r.Name, r.Status)
	}
}
