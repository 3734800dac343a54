// Package fanout is the external thread-pool collaborator spec.md §1
// explicitly scopes out of the synchronous, single-threaded core: it
// drives one internal/executor.Executor per unit of work (one per input
// file, or per line under --per-line) over a bounded-concurrency
// github.com/sourcegraph/conc/pool, per SPEC_FULL.md §5.1.
package fanout

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/vicut/vicut/internal/executor"
	"github.com/vicut/vicut/internal/output"
	"github.com/vicut/vicut/internal/vlog"
)

// WorkItem is one unit of fan-out work: Source identifies it for
// diagnostics and output.Unit.Source, Input seeds a fresh Executor (which
// owns its own LineBuf and, per spec.md §5's "Shared resources" rule, its
// own private registers.Store — never shared across pool workers), and Run
// drives that Executor to produce a buffer and/or captured fields.
type WorkItem struct {
	Source string
	Input  string
	Run    func(ctx context.Context, ex *executor.Executor) (buffer string, fields []string, err error)
}

// Jobs resolves a --jobs flag value (<=0 means "default to GOMAXPROCS") to
// a concrete worker count.
func Jobs(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.GOMAXPROCS(0)
}

// Run executes items over a worker pool bounded to jobs concurrent
// Executors, returning one output.Unit per item in input order. A panic
// inside a single unit's Run is recovered and converted to that unit's
// Err rather than aborting the rest of the pool, per SPEC_FULL.md §5.1.
func Run(ctx context.Context, items []WorkItem, jobs int) []output.Unit {
	p := pool.NewWithResults[output.Unit]().WithMaxGoroutines(Jobs(jobs))

	for _, item := range items {
		item := item
		p.Go(func() output.Unit {
			return runOne(ctx, item)
		})
	}

	return p.Wait()
}

func runOne(ctx context.Context, item WorkItem) (unit output.Unit) {
	unit.Source = item.Source

	defer func() {
		if r := recover(); r != nil {
			vlog.Error(vlog.CatExec, "recovered panic in fanout unit", "source", item.Source, "panic", r)
			unit.Err = fmt.Errorf("panic processing %q: %v", item.Source, r)
		}
	}()

	ex := executor.New(item.Input)
	buffer, fields, err := item.Run(ctx, ex)
	unit.Buffer = buffer
	unit.Fields = fields
	unit.Err = err
	if err != nil {
		vlog.ErrorErr(vlog.CatExec, "fanout unit failed", err, "source", item.Source)
	}
	return unit
}
