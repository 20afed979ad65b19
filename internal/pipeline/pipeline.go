// Package pipeline wires the grading stages together and drives a run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/stage"
)

// Status is the outcome of one stage within a run.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
	StatusNotExecuted Status = "not_executed"
)

// StageReport records what happened to one stage.
type StageReport struct {
	Name   string       `json:"name"`
	Status Status       `json:"status"`
	Result stage.Result `json:"result"`
	Error  string       `json:"error,omitempty"`
}

// RunResult summarizes a whole run.
type RunResult struct {
	Stages   []StageReport `json:"stages"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Err      error         `json:"-"`
}

// Stage returns the report of the named stage.
func (r RunResult) Stage(name string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// Totals sums the per-stage counters.
func (r RunResult) Totals() stage.Result {
	var t stage.Result
	for _, s := range r.Stages {
		t.Processed += s.Result.Processed
		t.Failed += s.Result.Failed
		t.Warnings += s.Result.Warnings
		t.Errors += s.Result.Errors
		t.Duration += s.Result.Duration
	}
	return t
}

// Run executes the enabled stages in order. A stage that aborts stops the
// run; the stages after it are reported as not executed.
func Run(ctx context.Context, stages []stage.Stage, sink logsink.Sink, observers ...Observer) RunResult {
	start := time.Now()
	obs := multiObserver(observers)
	out := RunResult{Stages: make([]StageReport, 0, len(stages))}

	for i, st := range stages {
		report := StageReport{Name: st.Name}
		switch {
		case out.Err != nil:
			report.Status = StatusNotExecuted
		case !st.Enabled:
			report.Status = StatusSkipped
		default:
			obs.StageStarted(st.Name, i+1, len(stages))
			report = runStage(ctx, st, sink)
			if report.Status == StatusFailed {
				out.Err = fmt.Errorf("stage %s: %w", st.Name, report.Result.Err)
				out.Error = out.Err.Error()
			}
		}
		obs.StageFinished(report)
		out.Stages = append(out.Stages, report)
	}

	out.Duration = time.Since(start)
	if out.Err != nil {
		runsTotal.WithLabelValues("failed").Inc()
		logsink.Errorf(sink, "run aborted after %s", out.Duration.Round(time.Millisecond))
	} else {
		runsTotal.WithLabelValues("ok").Inc()
		logsink.Infof(sink, "run finished in %s", out.Duration.Round(time.Millisecond))
	}
	return out
}

func runStage(ctx context.Context, st stage.Stage, sink logsink.Sink) StageReport {
	counter := logsink.NewCounter(sink)
	start := time.Now()
	res := st.Run(ctx, counter)
	res.Duration = time.Since(start)
	res.Warnings = counter.Count(logsink.Warning)
	res.Errors = counter.Count(logsink.Error)

	stageDuration.WithLabelValues(st.Name).Observe(res.Duration.Seconds())
	stageItemsTotal.WithLabelValues(st.Name, "processed").Add(float64(res.Processed))
	stageItemsTotal.WithLabelValues(st.Name, "failed").Add(float64(res.Failed))

	report := StageReport{Name: st.Name, Status: StatusCompleted, Result: res}
	if res.Err != nil {
		report.Status = StatusFailed
		report.Error = res.Err.Error()
	}
	return report
}
