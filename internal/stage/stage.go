// Package stage defines the descriptor and result types shared by every
// processing step of a grading run.
package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
)

// Result summarizes one stage execution. Err is set only when the stage
// aborted as a whole; per-item failures are counted in Failed.
type Result struct {
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Warnings  int           `json:"warnings"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// Fatal returns a result describing a stage that could not run at all.
func Fatal(err error) Result { return Result{Err: err} }

// Fatalf logs an error entry and returns the matching fatal result.
func Fatalf(sink logsink.Sink, format string, args ...any) Result {
	err := fmt.Errorf(format, args...)
	sink.Emit(logsink.Error, err.Error())
	return Fatal(err)
}

// Func executes a stage, reporting diagnostics through sink.
type Func func(ctx context.Context, sink logsink.Sink) Result

// Stage is one named, independently skippable step.
type Stage struct {
	Name    string
	Enabled bool
	Run     Func
}

// Each applies fn to every path in order. A failing item is logged as an
// error and counted; processing continues with the next path. The loop
// stops early only when ctx is done.
func Each(ctx context.Context, paths []string, sink logsink.Sink, fn func(path string) error) Result {
	var res Result
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		if err := fn(p); err != nil {
			logsink.Errorf(sink, "%s: %v", filepath.Base(p), err)
			res.Failed++
			continue
		}
		res.Processed++
	}
	return res
}
