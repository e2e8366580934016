package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"paraflow/internal/diag"
	"paraflow/internal/source"
	"paraflow/internal/trace"
	"paraflow/internal/treeio"
)

// CheckOptions configures a multi-file run.
type CheckOptions struct {
	// Jobs limits parallel compilations; <= 0 means GOMAXPROCS.
	Jobs     int
	Cache    *DiskCache
	Progress ProgressSink
	Timings  bool
}

// Report is the outcome of Check. Results keep input order.
type Report struct {
	FileSet *source.FileSet
	Results []*Result
	// Bag holds one diagnostic per failed tree, sorted by position.
	Bag *diag.Bag
}

// Failed counts trees that did not pass.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Check compiles every tree dump in paths. Each tree is an independent
// compilation; up to Jobs of them run at once. The returned error is only
// set when the run itself was interrupted; per-tree failures land in the
// report.
func Check(ctx context.Context, paths []string, opts CheckOptions) (*Report, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "check", trace.ParentOf(ctx)).
		WithExtra("files", fmt.Sprint(len(paths)))
	ctx = trace.WithSpan(ctx, span)

	fileSet := source.NewFileSet()
	report := &Report{FileSet: fileSet, Results: make([]*Result, len(paths)), Bag: diag.NewBag(0)}
	if len(paths) == 0 {
		span.End("empty")
		return report, nil
	}

	// FileSet is not goroutine-safe: load everything before fanning out.
	ids := make([]source.FileID, len(paths))
	for i, path := range paths {
		notify(opts.Progress, Event{File: path, Status: StatusQueued})
		id, err := loadInput(fileSet, path)
		if err != nil {
			report.Results[i] = &Result{
				Path: path,
				Err:  diag.Errorf(diag.IOReadFailed, source.Token{Pos: source.Pos{File: path}}, "failed to read tree: %v", err),
			}
			notify(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: report.Results[i].Err})
			continue
		}
		ids[i] = id
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i := range paths {
		i := i
		if report.Results[i] != nil {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			report.Results[i] = checkOne(gctx, fileSet, ids[i], opts)
			return nil
		})
	}
	err := g.Wait()

	for i, res := range report.Results {
		if res == nil {
			res = &Result{Path: paths[i], FileID: ids[i], Err: context.Cause(gctx)}
			report.Results[i] = res
		}
		if res.Err != nil {
			report.Bag.AddError(res.Path, res.Err)
		}
	}
	report.Bag.Sort()
	span.WithExtra("failed", fmt.Sprint(report.Failed())).End("")
	if err != nil {
		return report, fmt.Errorf("check interrupted: %w", err)
	}
	return report, nil
}

func checkOne(ctx context.Context, fileSet *source.FileSet, id source.FileID, opts CheckOptions) *Result {
	file := fileSet.Get(id)
	key := KeyFor(file)
	tr := trace.FromContext(ctx)
	if v, hit, err := opts.Cache.Get(key); err != nil {
		trace.Point(tr, trace.ScopeFile, "cache", "unreadable entry: "+err.Error(), trace.ParentOf(ctx))
	} else if hit {
		res := v.replay(file.Path, id)
		status := StatusCached
		if !res.OK() {
			status = StatusError
		}
		notify(opts.Progress, Event{File: file.Path, Status: status, Err: res.Err})
		return res
	}

	res := Compile(ctx, fileSet, id, CompileOptions{Progress: opts.Progress, Timings: opts.Timings})
	// only real verdicts are cached; an interrupted run or an I/O failure is not one
	if _, isDiag := diag.AsError(res.Err); res.Err == nil || isDiag {
		if err := opts.Cache.Put(key, verdictOf(res)); err != nil {
			trace.Point(tr, trace.ScopeFile, "cache", "store failed: "+err.Error(), trace.ParentOf(ctx))
		}
	}
	return res
}

func loadInput(fileSet *source.FileSet, path string) (source.FileID, error) {
	switch treeio.FormatOf(path) {
	case treeio.FormatMsgpack:
		return fileSet.LoadRaw(path)
	case treeio.FormatYAML:
		return fileSet.Load(path)
	}
	return 0, fmt.Errorf("%s: not a tree dump (want .yaml, .yml or .pft)", path)
}
